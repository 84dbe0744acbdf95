package lang

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/sergev/codelang/parser"
)

// DefaultMaxCallDepth bounds nested function calls before StackOverflow.
const DefaultMaxCallDepth = 10000

// Evaluator executes CODE programs.
type Evaluator struct {
	Global *Env

	// Logger receives Debug-level execution traces. It discards by default.
	Logger *slog.Logger

	// MaxCallDepth limits recursion; zero means DefaultMaxCallDepth.
	MaxCallDepth int

	env   *Env
	depth int
	in    *bufio.Reader
	out   io.Writer
}

// NewEvaluator constructs an evaluator rooted at a new global environment.
// Input and output default to the process stdin and stdout.
func NewEvaluator() *Evaluator {
	global := NewEnv(nil)
	return &Evaluator{
		Global: global,
		Logger: slog.New(slog.DiscardHandler),
		env:    global,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// SetInput replaces the reader used by SCAN and input natives.
func (ev *Evaluator) SetInput(r io.Reader) {
	if br, ok := r.(*bufio.Reader); ok {
		ev.in = br
		return
	}
	ev.in = bufio.NewReader(r)
}

// SetOutput replaces the writer used by DISPLAY.
func (ev *Evaluator) SetOutput(w io.Writer) {
	ev.out = w
}

// Output returns the writer used by DISPLAY.
func (ev *Evaluator) Output() io.Writer {
	return ev.out
}

// ReadLine reads one line of input without its line terminator. It returns
// io.EOF only when no characters remain.
func (ev *Evaluator) ReadLine() (string, error) {
	line, err := ev.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// DefineNative installs a host function in the global scope.
func (ev *Evaluator) DefineNative(name string, arity int, fn Primitive) {
	ev.Global.Define(name, FunctionValue(NewNative(name, arity, fn)), TypeFunction, false)
}

// Env returns the scope statements currently execute in.
func (ev *Evaluator) Env() *Env {
	return ev.env
}

// completion is the outcome of executing a statement: either normal
// completion or a RETURN travelling to the nearest call boundary.
type completion struct {
	returning bool
	value     Value
}

// Execute runs a parsed program in the global scope. A RETURN outside any
// function ends the program quietly.
func (ev *Evaluator) Execute(stmts []parser.Stmt) error {
	ev.env = ev.Global
	ev.depth = 0
	c, err := ev.execStmts(stmts)
	if err != nil {
		var fault *RuntimeFault
		if errors.As(err, &fault) {
			ev.Logger.Debug("runtime fault",
				slog.String("kind", string(fault.Kind)),
				slog.Int("line", fault.Line()))
		}
		return err
	}
	if c.returning {
		ev.Logger.Debug("top-level return")
	}
	return nil
}

// Apply invokes a function value with arguments. Faults it raises carry
// no location; call expressions fill in their own.
func (ev *Evaluator) Apply(callee Value, args []Value) (Value, error) {
	fn := callee.Callable()
	if callee.Type != TypeFunction || fn == nil {
		return Value{}, NewFault(NotCallable, "Can only call functions.")
	}
	if len(args) != fn.Arity() {
		return Value{}, NewFault(ArityMismatch,
			"Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	ev.Logger.Debug("function call",
		slog.String("function", fn.Name()),
		slog.Int("argument-count", len(args)))
	return fn.Call(ev, args)
}

func (ev *Evaluator) execStmts(stmts []parser.Stmt) (completion, error) {
	for _, stmt := range stmts {
		c, err := ev.exec(stmt)
		if err != nil || c.returning {
			return c, err
		}
	}
	return completion{}, nil
}

func (ev *Evaluator) execBlock(stmts []parser.Stmt, env *Env) (completion, error) {
	prev := ev.env
	ev.env = env
	ev.Logger.Debug("push scope", slog.Int("depth", env.Depth()))
	defer func() {
		ev.env = prev
		ev.Logger.Debug("pop scope", slog.Int("depth", prev.Depth()))
	}()
	return ev.execStmts(stmts)
}

func (ev *Evaluator) exec(stmt parser.Stmt) (completion, error) {
	switch s := stmt.(type) {
	case *parser.ExprStmt:
		_, err := ev.eval(s.Expr)
		return completion{}, err
	case *parser.DisplayStmt:
		val, err := ev.eval(s.Expr)
		if err != nil {
			return completion{}, err
		}
		fmt.Fprintln(ev.out, val.String())
		return completion{}, nil
	case *parser.ScanStmt:
		return completion{}, ev.execScan(s)
	case *parser.IfStmt:
		return ev.execIf(s)
	case *parser.WhileStmt:
		return ev.execWhile(s)
	case *parser.BlockStmt:
		return ev.execBlock(s.Stmts, NewEnv(ev.env))
	case *parser.FuncDecl:
		fn := &Function{Decl: s}
		if _, ok := ev.env.values[fn.Name()]; ok {
			ev.Logger.Debug("function replaces binding", slog.String("name", fn.Name()))
		}
		ev.env.Set(fn.Name(), FunctionValue(fn), TypeFunction, false)
		return completion{}, nil
	case *parser.ReturnStmt:
		val := Null
		if s.Value != nil {
			v, err := ev.eval(s.Value)
			if err != nil {
				return completion{}, err
			}
			val = v
		}
		return completion{returning: true, value: val}, nil
	case parser.TypedDecl:
		return completion{}, ev.execDecl(s)
	default:
		return completion{}, fmt.Errorf("unsupported statement %T", stmt)
	}
}

func (ev *Evaluator) execDecl(s parser.TypedDecl) error {
	d := s.Decl()
	typ, _ := TypeForKeyword(s.DeclaredType())
	val := Null
	if d.Init != nil {
		v, err := ev.eval(d.Init)
		if err != nil {
			return err
		}
		if v.Type != typ {
			return newFault(TypeMismatch, d.Name, "Value '%s' is not of type %s.", v, typ)
		}
		val = v
	}
	if !ev.env.Define(d.Name.Lexeme, val, typ, d.Mutable) {
		ev.Logger.Debug("ignored redefinition", slog.String("name", d.Name.Lexeme))
	}
	return nil
}

func (ev *Evaluator) execIf(s *parser.IfStmt) (completion, error) {
	cond, err := ev.eval(s.Cond)
	if err != nil {
		return completion{}, err
	}
	if IsTruthy(cond) {
		return ev.execStmts(s.Then)
	}
	for i, expr := range s.ElseIfConds {
		cond, err := ev.eval(expr)
		if err != nil {
			return completion{}, err
		}
		if IsTruthy(cond) {
			return ev.execStmts(s.ElseIfBodies[i])
		}
	}
	if s.Else != nil {
		return ev.execStmts(s.Else)
	}
	return completion{}, nil
}

func (ev *Evaluator) execWhile(s *parser.WhileStmt) (completion, error) {
	for {
		cond, err := ev.eval(s.Cond)
		if err != nil {
			return completion{}, err
		}
		if !IsTruthy(cond) {
			return completion{}, nil
		}
		c, err := ev.execStmts(s.Body)
		if err != nil || c.returning {
			return c, err
		}
	}
}

// execScan assigns the literals of one input line, taken at token
// positions 0, 2, 4, ..., to the named variables in order.
func (ev *Evaluator) execScan(s *parser.ScanStmt) error {
	line, err := ev.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return newFault(InvalidInput, s.Keyword, "No input available for SCAN.")
		}
		return fmt.Errorf("SCAN: %w", err)
	}
	tokens := parser.Scan(line)
	for i, name := range s.Names {
		idx := i * 2
		if idx >= len(tokens)-1 {
			return newFault(InvalidInput, name, "Missing input value for '%s'.", name.Lexeme)
		}
		if err := ev.env.Assign(name, FromLiteral(tokens[idx].Literal)); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) eval(expr parser.Expr) (Value, error) {
	switch e := expr.(type) {
	case *parser.LiteralExpr:
		return FromLiteral(e.Value), nil
	case *parser.GroupingExpr:
		return ev.eval(e.Expr)
	case *parser.VariableExpr:
		return ev.env.Get(e.Name)
	case *parser.AssignExpr:
		val, err := ev.eval(e.Value)
		if err != nil {
			return Value{}, err
		}
		if err := ev.env.Assign(e.Name, val); err != nil {
			return Value{}, err
		}
		return val, nil
	case *parser.UnaryExpr:
		return ev.evalUnary(e)
	case *parser.BinaryExpr:
		return ev.evalBinary(e)
	case *parser.LogicalExpr:
		left, err := ev.eval(e.Left)
		if err != nil {
			return Value{}, err
		}
		if e.Op.Type == parser.TokenOr {
			if IsTruthy(left) {
				return left, nil
			}
		} else if !IsTruthy(left) {
			return left, nil
		}
		return ev.eval(e.Right)
	case *parser.CallExpr:
		return ev.evalCall(e)
	default:
		return Value{}, fmt.Errorf("unsupported expression %T", expr)
	}
}

func (ev *Evaluator) evalUnary(e *parser.UnaryExpr) (Value, error) {
	operand, err := ev.eval(e.Operand)
	if err != nil {
		return Value{}, err
	}
	switch e.Op.Type {
	case parser.TokenNot:
		return BoolValue(!IsTruthy(operand)), nil
	case parser.TokenMinus, parser.TokenPlus:
		neg := e.Op.Type == parser.TokenMinus
		switch operand.Type {
		case TypeInt:
			if neg {
				return IntValue(-operand.Int()), nil
			}
			return operand, nil
		case TypeFloat:
			if neg {
				return FloatValue(-operand.Float()), nil
			}
			return operand, nil
		}
		return Value{}, newFault(TypeMismatch, e.Op, "Operand must be an integer or a float number.")
	}
	return Value{}, fmt.Errorf("unknown unary operator %s", e.Op.Type)
}

func (ev *Evaluator) evalBinary(e *parser.BinaryExpr) (Value, error) {
	left, err := ev.eval(e.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := ev.eval(e.Right)
	if err != nil {
		return Value{}, err
	}

	switch e.Op.Type {
	case parser.TokenAmpersand:
		return StringValue(left.String() + right.String()), nil
	case parser.TokenEqualEqual:
		return BoolValue(Equal(left, right)), nil
	case parser.TokenNotEqual:
		return BoolValue(!Equal(left, right)), nil
	}

	switch {
	case left.Type == TypeInt && right.Type == TypeInt:
		return intArith(e.Op, left.Int(), right.Int())
	case left.Type == TypeFloat && right.Type == TypeFloat:
		return floatArith(e.Op, left.Float(), right.Float())
	}
	return Value{}, newFault(TypeMismatch, e.Op,
		"Operands must both be integers or both be float numbers, got %s and %s.", left.Type, right.Type)
}

func intArith(op parser.Token, a, b int64) (Value, error) {
	switch op.Type {
	case parser.TokenPlus:
		return IntValue(a + b), nil
	case parser.TokenMinus:
		return IntValue(a - b), nil
	case parser.TokenStar:
		return IntValue(a * b), nil
	case parser.TokenSlash:
		if b == 0 {
			return Value{}, newFault(DivisionByZero, op, "Cannot divide by zero.")
		}
		return IntValue(a / b), nil
	case parser.TokenPercent:
		if b == 0 {
			return Value{}, newFault(DivisionByZero, op, "Cannot divide by zero.")
		}
		return IntValue(a % b), nil
	case parser.TokenGreater:
		return BoolValue(a > b), nil
	case parser.TokenGreaterEqual:
		return BoolValue(a >= b), nil
	case parser.TokenLess:
		return BoolValue(a < b), nil
	case parser.TokenLessEqual:
		return BoolValue(a <= b), nil
	}
	return Value{}, fmt.Errorf("unknown binary operator %s", op.Type)
}

func floatArith(op parser.Token, a, b float64) (Value, error) {
	switch op.Type {
	case parser.TokenPlus:
		return FloatValue(a + b), nil
	case parser.TokenMinus:
		return FloatValue(a - b), nil
	case parser.TokenStar:
		return FloatValue(a * b), nil
	case parser.TokenSlash:
		if b == 0 {
			return Value{}, newFault(DivisionByZero, op, "Cannot divide by zero.")
		}
		return FloatValue(a / b), nil
	case parser.TokenPercent:
		if b == 0 {
			return Value{}, newFault(DivisionByZero, op, "Cannot divide by zero.")
		}
		return FloatValue(math.Mod(a, b)), nil
	case parser.TokenGreater:
		return BoolValue(a > b), nil
	case parser.TokenGreaterEqual:
		return BoolValue(a >= b), nil
	case parser.TokenLess:
		return BoolValue(a < b), nil
	case parser.TokenLessEqual:
		return BoolValue(a <= b), nil
	}
	return Value{}, fmt.Errorf("unknown binary operator %s", op.Type)
}

func (ev *Evaluator) evalCall(e *parser.CallExpr) (Value, error) {
	callee, err := ev.eval(e.Callee)
	if err != nil {
		return Value{}, err
	}
	args := make([]Value, 0, len(e.Args))
	for _, arg := range e.Args {
		val, err := ev.eval(arg)
		if err != nil {
			return Value{}, err
		}
		args = append(args, val)
	}

	val, err := ev.Apply(callee, args)
	if err != nil {
		var fault *RuntimeFault
		if errors.As(err, &fault) && fault.Line() == 0 {
			fault.Token = e.Paren
		}
		return Value{}, err
	}
	return val, nil
}

func (ev *Evaluator) callFunction(f *Function, args []Value) (Value, error) {
	limit := ev.MaxCallDepth
	if limit <= 0 {
		limit = DefaultMaxCallDepth
	}
	if ev.depth >= limit {
		return Value{}, NewFault(StackOverflow, "Stack overflow calling '%s'.", f.Name())
	}
	ev.depth++
	defer func() { ev.depth-- }()

	decl := f.Decl
	env := NewEnv(ev.Global)
	for i, param := range decl.Params {
		typ, _ := TypeForKeyword(param.Type.Type)
		if args[i].Type != typ {
			return Value{}, NewFault(TypeMismatch,
				"Argument '%s' for parameter '%s' is not of type %s.", args[i], param.Name.Lexeme, typ)
		}
		env.Define(param.Name.Lexeme, args[i], typ, true)
	}

	c, err := ev.execBlock(decl.Body, env)
	if err != nil {
		return Value{}, err
	}

	if decl.ReturnType == nil {
		if c.returning && !c.value.IsNull() {
			return Value{}, newFault(UnexpectedReturnValue, decl.Name,
				"Function with void return type shouldn't return anything.")
		}
		return Null, nil
	}
	want, _ := TypeForKeyword(decl.ReturnType.Type)
	if !c.returning {
		return Value{}, newFault(MissingReturn, *decl.ReturnType,
			"Function must return a value of type %s or remove the return type of the function.", want)
	}
	if c.value.Type != want {
		return Value{}, newFault(ReturnTypeMismatch, decl.Name,
			"Return value must be of type %s.", want)
	}
	return c.value, nil
}
