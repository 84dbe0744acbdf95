package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/sergev/codelang/lang"
	"github.com/sergev/codelang/parser"
)

// Reporter receives diagnostics. Both hooks only report; they never alter
// control flow.
type Reporter interface {
	// ReportError is called for each lexical or parse diagnostic.
	ReportError(line int, msg string)
	// ReportRuntimeError is called once for a fault that aborts execution.
	ReportRuntimeError(err error)
}

type discard struct{}

func (discard) ReportError(int, string)   {}
func (discard) ReportRuntimeError(error) {}

// Discard is a Reporter that drops everything.
var Discard Reporter = discard{}

// NewEvaluator constructs an evaluator with the standard natives installed.
func NewEvaluator() *lang.Evaluator {
	ev := lang.NewEvaluator()
	installPrimitives(ev)
	return ev
}

// Parse scans and parses src, forwarding each diagnostic to rep.
func Parse(src string, rep Reporter) ([]parser.Stmt, error) {
	if rep == nil {
		rep = Discard
	}
	return parser.ParseString(src, rep.ReportError)
}

// Run parses src and, when it has no diagnostics, executes it. A program
// with diagnostics is never executed.
func Run(ev *lang.Evaluator, src string, rep Reporter) error {
	if rep == nil {
		rep = Discard
	}
	stmts, err := Parse(src, rep)
	return execute(ev, stmts, err, rep)
}

// RunReader runs the whole program read from r.
func RunReader(ev *lang.Evaluator, r io.Reader, rep Reporter) error {
	if rep == nil {
		rep = Discard
	}
	stmts, err := parser.ParseReader(r, rep.ReportError)
	if err != nil && !isDiagnostic(err) {
		return fmt.Errorf("read program: %w", err)
	}
	return execute(ev, stmts, err, rep)
}

func execute(ev *lang.Evaluator, stmts []parser.Stmt, parseErr error, rep Reporter) error {
	if parseErr != nil {
		return parseErr
	}
	if err := ev.Execute(stmts); err != nil {
		rep.ReportRuntimeError(err)
		return err
	}
	return nil
}

func isDiagnostic(err error) bool {
	var list parser.ErrorList
	return errors.As(err, &list)
}

// RunFile loads and executes a program file, allowing a #! first line.
func RunFile(ev *lang.Evaluator, path string, rep Reporter) error {
	data, err := readFileSkippingShebang(path)
	if err != nil {
		return err
	}
	return Run(ev, string(data), rep)
}

// ReadSource reads a program file, allowing a #! first line.
func ReadSource(path string) (string, error) {
	data, err := readFileSkippingShebang(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readFileSkippingShebang(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("#!")) {
		// Keep the line break so that line numbers stay right.
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			return data[idx:], nil
		}
		return []byte{}, nil
	}
	return data, nil
}

// DumpTokens writes one line per token: position, type and lexeme.
// Lexical diagnostics are returned after all tokens are written.
func DumpTokens(w io.Writer, src string) error {
	scanner := parser.NewScanner(src, nil)
	for _, tok := range scanner.ScanTokens() {
		line := fmt.Sprintf("%-7s %-18s %q", tok.Pos, tok.Type, tok.Lexeme)
		switch lit := tok.Literal.(type) {
		case nil:
		case rune:
			line += fmt.Sprintf(" %q", lit)
		default:
			line += fmt.Sprintf(" %v", lit)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return scanner.Errors().Err()
}

var astConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// DumpAST parses src and writes the statement tree.
func DumpAST(w io.Writer, src string) error {
	stmts, err := parser.ParseString(src, nil)
	if err != nil {
		return err
	}
	astConfig.Fdump(w, stmts)
	return nil
}
