package parser

// Node represents any AST node with a source position.
type Node interface {
	Pos() Position
}

// Expr represents an expression. The set of implementations is closed:
// only types in this package satisfy it.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement. The set of implementations is closed.
type Stmt interface {
	Node
	stmtNode()
}

// LiteralExpr holds a decoded literal: string, rune, int64, float64, bool or nil.
type LiteralExpr struct {
	Value interface{}
	Token Token
}

func (e *LiteralExpr) Pos() Position { return e.Token.Pos }
func (*LiteralExpr) exprNode()       {}

// GroupingExpr is a parenthesized expression.
type GroupingExpr struct {
	Expr Expr
	Posn Position
}

func (e *GroupingExpr) Pos() Position { return e.Posn }
func (*GroupingExpr) exprNode()       {}

// UnaryExpr represents prefix operator application.
type UnaryExpr struct {
	Op      Token
	Operand Expr
}

func (e *UnaryExpr) Pos() Position { return e.Op.Pos }
func (*UnaryExpr) exprNode()       {}

// BinaryExpr represents arithmetic, comparison, equality and concatenation.
type BinaryExpr struct {
	Left  Expr
	Op    Token
	Right Expr
}

func (e *BinaryExpr) Pos() Position { return e.Op.Pos }
func (*BinaryExpr) exprNode()       {}

// LogicalExpr is a short-circuiting AND or OR.
type LogicalExpr struct {
	Left  Expr
	Op    Token
	Right Expr
}

func (e *LogicalExpr) Pos() Position { return e.Op.Pos }
func (*LogicalExpr) exprNode()       {}

// VariableExpr refers to a variable or function name.
type VariableExpr struct {
	Name Token
}

func (e *VariableExpr) Pos() Position { return e.Name.Pos }
func (*VariableExpr) exprNode()       {}

// AssignExpr writes to an existing binding and yields the assigned value.
type AssignExpr struct {
	Name  Token
	Value Expr
}

func (e *AssignExpr) Pos() Position { return e.Name.Pos }
func (*AssignExpr) exprNode()       {}

// CallExpr invokes an expression with arguments.
type CallExpr struct {
	Callee Expr
	Paren  Token // closing parenthesis, used for fault locations
	Args   []Expr
}

func (e *CallExpr) Pos() Position { return e.Paren.Pos }
func (*CallExpr) exprNode()       {}

// ExprStmt evaluates an expression for side-effects.
type ExprStmt struct {
	Expr Expr
}

func (s *ExprStmt) Pos() Position { return s.Expr.Pos() }
func (*ExprStmt) stmtNode()       {}

// DisplayStmt writes a value and a line break to the console.
type DisplayStmt struct {
	Keyword Token
	Expr    Expr
}

func (s *DisplayStmt) Pos() Position { return s.Keyword.Pos }
func (*DisplayStmt) stmtNode()       {}

// ScanStmt reads one input line into the named variables.
type ScanStmt struct {
	Keyword Token
	Names   []Token
}

func (s *ScanStmt) Pos() Position { return s.Keyword.Pos }
func (*ScanStmt) stmtNode()       {}

// IfStmt conditionally executes one of its branches. ElseIfConds and
// ElseIfBodies have the same length. Else is nil when there is no ELSE.
type IfStmt struct {
	Keyword      Token
	Cond         Expr
	Then         []Stmt
	ElseIfConds  []Expr
	ElseIfBodies [][]Stmt
	Else         []Stmt
}

func (s *IfStmt) Pos() Position { return s.Keyword.Pos }
func (*IfStmt) stmtNode()       {}

// WhileStmt repeats its body while the condition is truthy.
type WhileStmt struct {
	Keyword Token
	Cond    Expr
	Body    []Stmt
}

func (s *WhileStmt) Pos() Position { return s.Keyword.Pos }
func (*WhileStmt) stmtNode()       {}

// BlockStmt runs its statements in a fresh nested scope.
type BlockStmt struct {
	Begin Token
	Stmts []Stmt
}

func (s *BlockStmt) Pos() Position { return s.Begin.Pos }
func (*BlockStmt) stmtNode()       {}

// Param is one typed function parameter.
type Param struct {
	Type Token
	Name Token
}

// FuncDecl introduces a named function. ReturnType is nil for functions
// that return no value.
type FuncDecl struct {
	Name       Token
	Params     []Param
	Body       []Stmt
	ReturnType *Token
}

func (d *FuncDecl) Pos() Position { return d.Name.Pos }
func (*FuncDecl) stmtNode()       {}

// ReturnStmt exits the current function, optionally with a value.
type ReturnStmt struct {
	Keyword Token
	Value   Expr // may be nil
}

func (s *ReturnStmt) Pos() Position { return s.Keyword.Pos }
func (*ReturnStmt) stmtNode()       {}

// Declaration holds the parts shared by the typed declaration statements.
type Declaration struct {
	Name    Token
	Init    Expr // may be nil
	Mutable bool
}

func (d *Declaration) Pos() Position { return d.Name.Pos }

// Decl gives access to the shared declaration fields.
func (d *Declaration) Decl() *Declaration { return d }

// TypedDecl is implemented by the five typed declaration statements.
type TypedDecl interface {
	Stmt
	Decl() *Declaration
	DeclaredType() TokenType
}

// StringDecl declares a STRING variable.
type StringDecl struct{ Declaration }

// CharDecl declares a CHAR variable.
type CharDecl struct{ Declaration }

// IntDecl declares an INT variable.
type IntDecl struct{ Declaration }

// FloatDecl declares a FLOAT variable.
type FloatDecl struct{ Declaration }

// BoolDecl declares a BOOL variable.
type BoolDecl struct{ Declaration }

func (*StringDecl) stmtNode() {}
func (*CharDecl) stmtNode()   {}
func (*IntDecl) stmtNode()    {}
func (*FloatDecl) stmtNode()  {}
func (*BoolDecl) stmtNode()   {}

func (*StringDecl) DeclaredType() TokenType { return TokenString }
func (*CharDecl) DeclaredType() TokenType   { return TokenChar }
func (*IntDecl) DeclaredType() TokenType    { return TokenInt }
func (*FloatDecl) DeclaredType() TokenType  { return TokenFloat }
func (*BoolDecl) DeclaredType() TokenType   { return TokenBool }

func newTypedDecl(typ TokenType, d Declaration) TypedDecl {
	switch typ {
	case TokenString:
		return &StringDecl{d}
	case TokenChar:
		return &CharDecl{d}
	case TokenInt:
		return &IntDecl{d}
	case TokenFloat:
		return &FloatDecl{d}
	default:
		return &BoolDecl{d}
	}
}
