// Package console renders interpreter diagnostics on a terminal.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/sergev/codelang/lang"
	"github.com/sergev/codelang/parser"
)

// Reporter prints lexical, parse and runtime diagnostics.
type Reporter struct {
	out io.Writer

	errColor  *color.Color
	lineColor *color.Color
	msgColor  *color.Color

	HadError        bool
	HadRuntimeError bool
}

// NewReporter creates a reporter writing to w. Colors are used only when
// useColor is set.
func NewReporter(w io.Writer, useColor bool) *Reporter {
	r := &Reporter{
		out:       w,
		errColor:  color.New(color.FgRed, color.Bold),
		lineColor: color.New(color.FgYellow),
		msgColor:  color.New(color.FgRed),
	}
	for _, c := range []*color.Color{r.errColor, r.lineColor, r.msgColor} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// NewStderrReporter creates a reporter on the process stderr. mode is one
// of "auto", "always" or "never".
func NewStderrReporter(mode string) *Reporter {
	return NewReporter(colorable.NewColorableStderr(), UseColor(mode, os.Stderr))
}

// UseColor decides whether to colorize output written to f.
func UseColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(f)
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ReportError prints a lexical or parse diagnostic. Parse messages already
// start with "at ...", giving "[line N] Error at 'x': msg"; lexical ones
// are printed as "[line N] Error: msg".
func (r *Reporter) ReportError(line int, msg string) {
	r.HadError = true
	sep := ": "
	if strings.HasPrefix(msg, "at ") {
		sep = " "
	}
	fmt.Fprintf(r.out, "%s %s%s%s\n",
		r.lineColor.Sprintf("[line %d]", line),
		r.errColor.Sprint("Error"),
		sep,
		msg)
}

// ReportRuntimeError prints a fault message followed by its line.
func (r *Reporter) ReportRuntimeError(err error) {
	r.HadRuntimeError = true
	var fault *lang.RuntimeFault
	if errors.As(err, &fault) {
		r.msgColor.Fprintln(r.out, fault.Message)
		if fault.Line() > 0 {
			r.lineColor.Fprintf(r.out, "[line %d]\n", fault.Line())
		}
		return
	}
	r.msgColor.Fprintln(r.out, err.Error())
}

// ReportErrors replays collected diagnostics, for callers that parsed with
// no handler attached.
func (r *Reporter) ReportErrors(err error) {
	var list parser.ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			r.ReportError(e.Line, e.Msg())
		}
		return
	}
	var single *parser.Error
	if errors.As(err, &single) {
		r.ReportError(single.Line, single.Msg())
		return
	}
	if err != nil {
		r.ReportRuntimeError(err)
	}
}

// Reset clears the error flags between REPL entries.
func (r *Reporter) Reset() {
	r.HadError = false
	r.HadRuntimeError = false
}
