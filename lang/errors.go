package lang

import (
	"fmt"

	"github.com/sergev/codelang/parser"
)

// FaultKind classifies a runtime fault. It is an error so callers can
// test for a kind with errors.Is.
type FaultKind string

func (k FaultKind) Error() string { return string(k) }

const (
	UndefinedVariable     FaultKind = "undefined variable"
	TypeMismatch          FaultKind = "type mismatch"
	ImmutableAssignment   FaultKind = "immutable assignment"
	DivisionByZero        FaultKind = "division by zero"
	ArityMismatch         FaultKind = "arity mismatch"
	NotCallable           FaultKind = "not callable"
	ReturnTypeMismatch    FaultKind = "return type mismatch"
	UnexpectedReturnValue FaultKind = "unexpected return value"
	MissingReturn         FaultKind = "missing return"
	InvalidInput          FaultKind = "invalid input"
	StackOverflow         FaultKind = "stack overflow"
)

// RuntimeFault aborts execution of the current program.
type RuntimeFault struct {
	Kind    FaultKind
	Token   parser.Token
	Message string
}

func newFault(kind FaultKind, tok parser.Token, format string, args ...interface{}) *RuntimeFault {
	return &RuntimeFault{
		Kind:    kind,
		Token:   tok,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewFault builds a fault without a source location. The evaluator fills
// in the call site when such a fault escapes a native function.
func NewFault(kind FaultKind, format string, args ...interface{}) *RuntimeFault {
	return newFault(kind, parser.Token{}, format, args...)
}

func (f *RuntimeFault) Error() string {
	if f.Token.Pos.Line > 0 {
		return fmt.Sprintf("line %d: %s", f.Token.Pos.Line, f.Message)
	}
	return f.Message
}

func (f *RuntimeFault) Unwrap() error {
	return f.Kind
}

// Line returns the source line of the fault, or 0 when unknown.
func (f *RuntimeFault) Line() int {
	return f.Token.Pos.Line
}
