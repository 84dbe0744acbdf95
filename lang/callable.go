package lang

import (
	"fmt"

	"github.com/sergev/codelang/parser"
)

// Callable is anything a call expression can invoke.
type Callable interface {
	fmt.Stringer
	Name() string
	Arity() int
	Call(ev *Evaluator, args []Value) (Value, error)
}

// Primitive represents a built-in Go function exposed to the interpreter.
type Primitive func(*Evaluator, []Value) (Value, error)

// Native is a host-provided function with a fixed arity.
type Native struct {
	name  string
	arity int
	fn    Primitive
}

// NewNative wraps fn as a callable named name.
func NewNative(name string, arity int, fn Primitive) *Native {
	return &Native{name: name, arity: arity, fn: fn}
}

func (n *Native) Name() string   { return n.name }
func (n *Native) Arity() int     { return n.arity }
func (n *Native) String() string { return "<native fn>" }

// Call runs the native. Arity is checked by the caller.
func (n *Native) Call(ev *Evaluator, args []Value) (Value, error) {
	return n.fn(ev, args)
}

// Function is a user-defined function. Its body always runs in a scope
// whose parent is the global scope of the evaluator that calls it.
type Function struct {
	Decl *parser.FuncDecl
}

func (f *Function) Name() string   { return f.Decl.Name.Lexeme }
func (f *Function) Arity() int     { return len(f.Decl.Params) }
func (f *Function) String() string { return "<fn " + f.Name() + ">" }

// Call binds the arguments and executes the body.
func (f *Function) Call(ev *Evaluator, args []Value) (Value, error) {
	return ev.callFunction(f, args)
}
