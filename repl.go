package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/sergev/codelang/internal/console"
	"github.com/sergev/codelang/parser"
)

func runREPLCommand(ctx *cli.Context) error {
	s, err := newSession(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	if !console.IsTerminal(os.Stdin) {
		s.runBufferedREPL(bufio.NewReader(os.Stdin))
		return nil
	}
	s.runInteractiveREPL()
	return nil
}

// evalProgram parses src and runs it in a fresh evaluator. It returns false
// when src only needs more lines to become a complete program.
func (s *session) evalProgram(src string, in *bufio.Reader, final bool) bool {
	stmts, err := parser.ParseString(src, nil)
	if err != nil {
		if parser.IsIncomplete(err) && !final {
			return false
		}
		if strings.TrimSpace(src) != "" {
			s.reporter.ReportErrors(err)
		}
		return true
	}
	ev := s.newEvaluator()
	if in != nil {
		ev.SetInput(in)
	}
	if err := ev.Execute(stmts); err != nil {
		s.reporter.ReportRuntimeError(err)
	}
	return true
}

func (s *session) runBufferedREPL(reader *bufio.Reader) {
	var buffer strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			return
		}
		eof := errors.Is(err, io.EOF)
		buffer.WriteString(line)
		if buffer.Len() > 0 && s.evalProgram(buffer.String(), reader, eof) {
			buffer.Reset()
		}
		if eof {
			return
		}
	}
}

func (s *session) runInteractiveREPL() {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	historyPath := s.cfg.HistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	var buffer strings.Builder

	for {
		prompt := s.cfg.Prompt
		if buffer.Len() > 0 {
			prompt = s.cfg.ContinuationPrompt
		}
		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Println()
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Println()
				return
			default:
				fmt.Fprintf(os.Stderr, "read error: %v\n", err)
				return
			}
		}
		if buffer.Len() == 0 && strings.TrimSpace(input) == "" {
			continue
		}
		buffer.WriteString(input)
		buffer.WriteString("\n")

		src := buffer.String()
		if !s.evalProgram(src, nil, false) {
			continue
		}
		buffer.Reset()
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			state.AppendHistory(trimmed)
		}
		s.reporter.Reset()
	}
}
