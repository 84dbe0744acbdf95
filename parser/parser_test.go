package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, src string) []Stmt {
	t.Helper()
	stmts, err := ParseString(src, nil)
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	return stmts
}

func parseDiagnostics(src string) []diagnostic {
	var diags []diagnostic
	ParseString(src, func(line int, msg string) {
		diags = append(diags, diagnostic{line, msg})
	})
	return diags
}

// show renders an expression in prefix form for compact assertions.
func show(e Expr) string {
	switch e := e.(type) {
	case *LiteralExpr:
		return fmt.Sprint(e.Value)
	case *GroupingExpr:
		return "(group " + show(e.Expr) + ")"
	case *UnaryExpr:
		return fmt.Sprintf("(%s %s)", e.Op.Lexeme, show(e.Operand))
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", e.Op.Lexeme, show(e.Left), show(e.Right))
	case *LogicalExpr:
		return fmt.Sprintf("(%s %s %s)", e.Op.Lexeme, show(e.Left), show(e.Right))
	case *VariableExpr:
		return e.Name.Lexeme
	case *AssignExpr:
		return fmt.Sprintf("(= %s %s)", e.Name.Lexeme, show(e.Value))
	case *CallExpr:
		parts := []string{"call", show(e.Callee)}
		for _, arg := range e.Args {
			parts = append(parts, show(arg))
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return fmt.Sprintf("<%T>", e)
}

func program(body string) string {
	return "BEGIN CODE\n" + body + "\nEND CODE\n"
}

func TestParseExpressionPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"(1 + 2) * 3", "(* (group (+ 1 2)) 3)"},
		{"a = b = 1", "(= a (= b 1))"},
		{"NOT a AND b OR c", "(OR (AND (NOT a) b) c)"},
		{"-x * 2", "(* (- x) 2)"},
		{"10 - 4 - 3", "(- (- 10 4) 3)"},
		{"7 % 3 / 2", "(/ (% 7 3) 2)"},
		{`"A" & 1 == "A1"`, "(== (& A 1) A1)"},
		{"a < b <> c >= d", "(<> (< a b) (>= c d))"},
		{"f(1)(2, 3)", "(call (call f 1) 2 3)"},
		{"g()", "(call g)"},
		{`x = "TRUE"`, "(= x true)"},
	}
	for _, tt := range tests {
		stmts := mustParse(t, program(tt.src))
		if len(stmts) != 1 {
			t.Fatalf("%q: expected 1 statement, got %d", tt.src, len(stmts))
		}
		es, ok := stmts[0].(*ExprStmt)
		if !ok {
			t.Fatalf("%q: expected ExprStmt, got %T", tt.src, stmts[0])
		}
		if got := show(es.Expr); got != tt.want {
			t.Errorf("%q parsed as %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestParseDeclarations(t *testing.T) {
	stmts := mustParse(t, program("INT x = 1, y\nIMMUT FLOAT pi = 3.5\nCHAR c = 'q'; STRING s\nBOOL ok = \"FALSE\""))
	if len(stmts) != 6 {
		t.Fatalf("expected 6 declarations, got %d", len(stmts))
	}

	type declSummary struct {
		Type    TokenType
		Name    string
		Init    string
		Mutable bool
	}
	var got []declSummary
	for _, stmt := range stmts {
		d, ok := stmt.(TypedDecl)
		if !ok {
			t.Fatalf("expected a typed declaration, got %T", stmt)
		}
		init := ""
		if d.Decl().Init != nil {
			init = show(d.Decl().Init)
		}
		got = append(got, declSummary{d.DeclaredType(), d.Decl().Name.Lexeme, init, d.Decl().Mutable})
	}
	want := []declSummary{
		{TokenInt, "x", "1", true},
		{TokenInt, "y", "", true},
		{TokenFloat, "pi", "3.5", false},
		{TokenChar, "c", "113", true},
		{TokenString, "s", "", true},
		{TokenBool, "ok", "false", true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("declarations mismatch (-want +got):\n%s", diff)
	}
	if _, ok := stmts[2].(*FloatDecl); !ok {
		t.Fatalf("expected *FloatDecl, got %T", stmts[2])
	}
}

func TestParseFunctionDeclarations(t *testing.T) {
	src := `
FN INT add(INT a, INT b)
BEGIN FN
	INT sum = a + b
	RETURN sum
END FN
FN greet()
BEGIN FN
	DISPLAY: "hi"
	RETURN
END FN
BEGIN CODE
	DISPLAY: add(1, 2)
END CODE
`
	stmts := mustParse(t, src)
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}

	add, ok := stmts[0].(*FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %T", stmts[0])
	}
	if add.Name.Lexeme != "add" || add.ReturnType == nil || add.ReturnType.Type != TokenInt {
		t.Fatalf("unexpected add header: name=%q returnType=%v", add.Name.Lexeme, add.ReturnType)
	}
	var params []string
	for _, p := range add.Params {
		params = append(params, p.Type.Lexeme+" "+p.Name.Lexeme)
	}
	if diff := cmp.Diff([]string{"INT a", "INT b"}, params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
	if len(add.Body) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(add.Body))
	}
	if ret, ok := add.Body[1].(*ReturnStmt); !ok || ret.Value == nil || show(ret.Value) != "sum" {
		t.Fatalf("expected RETURN sum, got %#v", add.Body[1])
	}

	greet := stmts[1].(*FuncDecl)
	if greet.ReturnType != nil || len(greet.Params) != 0 {
		t.Fatalf("greet should have no return type and no params")
	}
	if ret, ok := greet.Body[1].(*ReturnStmt); !ok || ret.Value != nil {
		t.Fatalf("expected bare RETURN, got %#v", greet.Body[1])
	}
}

func TestParseNestedFunctionAndBlock(t *testing.T) {
	src := `
FN INT outer()
BEGIN FN
	INT base = 1
	FN INT inner(INT n)
	BEGIN FN
		RETURN n + 1
	END FN
	RETURN inner(base)
END FN
BEGIN CODE
	BEGIN
		INT x = 2
		DISPLAY: x
	END
END CODE
`
	stmts := mustParse(t, src)
	outer := stmts[0].(*FuncDecl)
	if _, ok := outer.Body[1].(*FuncDecl); !ok {
		t.Fatalf("expected nested FuncDecl, got %T", outer.Body[1])
	}
	block, ok := stmts[1].(*BlockStmt)
	if !ok {
		t.Fatalf("expected BlockStmt, got %T", stmts[1])
	}
	if len(block.Stmts) != 2 {
		t.Fatalf("expected 2 block statements, got %d", len(block.Stmts))
	}
}

func TestParseControlFlow(t *testing.T) {
	src := program(`
IF (x > 1)
BEGIN IF
	DISPLAY: "big"
END IF
ELSE IF (x == 1)
BEGIN IF
	DISPLAY: "one"
	DISPLAY: "still one"
END IF
ELSE IF (x == 0)
BEGIN IF
END IF
ELSE
BEGIN IF
	DISPLAY: "negative"
END IF
WHILE (x < 10)
BEGIN WHILE
	x = x + 1
END WHILE
SCAN: a, b, c
`)
	stmts := mustParse(t, src)
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}

	ifStmt, ok := stmts[0].(*IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", stmts[0])
	}
	if show(ifStmt.Cond) != "(> x 1)" || len(ifStmt.Then) != 1 {
		t.Fatalf("unexpected IF head: %s / %d", show(ifStmt.Cond), len(ifStmt.Then))
	}
	if len(ifStmt.ElseIfConds) != 2 || len(ifStmt.ElseIfBodies) != 2 {
		t.Fatalf("expected 2 ELSE IF branches, got %d/%d", len(ifStmt.ElseIfConds), len(ifStmt.ElseIfBodies))
	}
	if len(ifStmt.ElseIfBodies[0]) != 2 || len(ifStmt.ElseIfBodies[1]) != 0 {
		t.Fatalf("unexpected ELSE IF bodies: %d and %d statements",
			len(ifStmt.ElseIfBodies[0]), len(ifStmt.ElseIfBodies[1]))
	}
	if len(ifStmt.Else) != 1 {
		t.Fatalf("expected one ELSE statement, got %d", len(ifStmt.Else))
	}

	while, ok := stmts[1].(*WhileStmt)
	if !ok || show(while.Cond) != "(< x 10)" || len(while.Body) != 1 {
		t.Fatalf("unexpected WHILE: %#v", stmts[1])
	}

	scan, ok := stmts[2].(*ScanStmt)
	if !ok {
		t.Fatalf("expected ScanStmt, got %T", stmts[2])
	}
	var names []string
	for _, n := range scan.Names {
		names = append(names, n.Lexeme)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Fatalf("SCAN names mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyElseIsNotNil(t *testing.T) {
	stmts := mustParse(t, program("IF (TRUE_) BEGIN IF END IF ELSE BEGIN IF END IF"))
	ifStmt := stmts[0].(*IfStmt)
	if ifStmt.Else == nil {
		t.Fatalf("empty ELSE must be distinguishable from a missing ELSE")
	}
	stmts = mustParse(t, program("IF (TRUE_) BEGIN IF END IF"))
	if stmts[0].(*IfStmt).Else != nil {
		t.Fatalf("missing ELSE should leave Else nil")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []diagnostic
	}{
		{
			name: "missing expression",
			src:  "BEGIN CODE\nDISPLAY:\nEND CODE",
			want: []diagnostic{{3, "at 'END': Expect expression."}},
		},
		{
			name: "invalid assignment target",
			src:  "BEGIN CODE\n1 = 2\nEND CODE",
			want: []diagnostic{{2, "at '=': Invalid assignment target."}},
		},
		{
			name: "missing BEGIN CODE",
			src:  "DISPLAY: 1",
			want: []diagnostic{{1, "at 'DISPLAY': Expecting BEGIN."}},
		},
		{
			name: "input after END CODE",
			src:  "BEGIN CODE\nEND CODE\nDISPLAY: 1",
			want: []diagnostic{{3, "at 'DISPLAY': Unexpected input after END CODE."}},
		},
		{
			name: "declaration after statement",
			src:  "BEGIN CODE\nDISPLAY: 1\nINT x\nEND CODE",
			want: []diagnostic{{3, "at 'INT': Declarations must come before statements."}},
		},
		{
			name: "missing DISPLAY colon",
			src:  "BEGIN CODE\nDISPLAY 1\nEND CODE",
			want: []diagnostic{{2, "at '1': Expecting ':' after DISPLAY."}},
		},
		{
			name: "bad IF fence",
			src:  "BEGIN CODE\nIF (1) BEGIN WHILE END WHILE\nEND CODE",
			want: []diagnostic{
				{2, "at 'WHILE': Expecting IF after BEGIN."},
				{2, "at 'WHILE': Expecting 'CODE' after END."},
			},
		},
		{
			name: "recovers after each bad statement",
			src:  "BEGIN CODE\nDISPLAY: )\nDISPLAY: 2\nDISPLAY: *\nEND CODE",
			want: []diagnostic{
				{2, "at ')': Expect expression."},
				{4, "at '*': Expect expression."},
			},
		},
		{
			name: "missing parameter type",
			src:  "FN f(x)\nBEGIN FN\nEND FN\nBEGIN CODE\nEND CODE",
			want: []diagnostic{{1, "at 'x': Expect parameter type."}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseDiagnostics(tt.src)); diff != "" {
				t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseIncompleteInput(t *testing.T) {
	incomplete := []string{
		"",
		"BEGIN CODE\nDISPLAY: 1\n",
		"BEGIN CODE\nIF (x)\nBEGIN IF\n",
		"FN INT f()\nBEGIN FN\n",
		"BEGIN CODE\nDISPLAY: 1 +",
	}
	for _, src := range incomplete {
		_, err := ParseString(src, nil)
		if err == nil {
			t.Fatalf("%q: expected an error", src)
		}
		if !IsIncomplete(err) {
			t.Fatalf("%q: expected incomplete input, got %v", src, err)
		}
	}

	complete := []string{
		"BEGIN CODE\nDISPLAY: )\n",
		"BEGIN CODE\nEND CODE\nEND",
	}
	for _, src := range complete {
		_, err := ParseString(src, nil)
		if err == nil || IsIncomplete(err) {
			t.Fatalf("%q: expected a definite error, got %v", src, err)
		}
	}
}

func TestParseBareReturnEndsAtLineBreak(t *testing.T) {
	src := `
FN bump(INT n)
BEGIN FN
	RETURN
	n = n + 1
	RETURN n
END FN
BEGIN CODE
END CODE
`
	bump := mustParse(t, src)[0].(*FuncDecl)
	if len(bump.Body) != 3 {
		t.Fatalf("expected 3 body statements, got %d", len(bump.Body))
	}
	if ret, ok := bump.Body[0].(*ReturnStmt); !ok || ret.Value != nil {
		t.Fatalf("expected bare RETURN, got %#v", bump.Body[0])
	}
	if es, ok := bump.Body[1].(*ExprStmt); !ok || show(es.Expr) != "(= n (+ n 1))" {
		t.Fatalf("expected assignment statement, got %#v", bump.Body[1])
	}
	if ret, ok := bump.Body[2].(*ReturnStmt); !ok || ret.Value == nil || show(ret.Value) != "n" {
		t.Fatalf("expected RETURN n, got %#v", bump.Body[2])
	}
}
