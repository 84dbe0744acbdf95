package parser

import "fmt"

const maxArgs = 255

// Parse builds the statement list of a program from a token sequence.
// Diagnostics go to handler (which may be nil). The returned error is an
// ErrorList when anything was reported; the statements are then best effort.
func Parse(tokens []Token, handler ErrorHandler) ([]Stmt, error) {
	return NewParser(tokens, handler).Parse()
}

// Parser is a recursive-descent parser with one token of lookahead.
type Parser struct {
	tokens  []Token
	current int
	diag    diagnostics
}

// NewParser creates a parser over tokens. A trailing EOF token is added if
// the sequence does not already end with one.
func NewParser(tokens []Token, handler ErrorHandler) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenEOF {
		var pos Position
		if len(tokens) > 0 {
			pos = tokens[len(tokens)-1].Pos
		}
		tokens = append(tokens[:len(tokens):len(tokens)], Token{Type: TokenEOF, Pos: pos})
	}
	return &Parser{
		tokens: tokens,
		diag:   diagnostics{handler: handler},
	}
}

// Parse parses a complete program: function declarations followed by the
// BEGIN CODE ... END CODE body.
func (p *Parser) Parse() ([]Stmt, error) {
	stmts := p.parseProgram()
	return stmts, p.diag.errs.Err()
}

// Errors returns the diagnostics reported so far.
func (p *Parser) Errors() ErrorList {
	return p.diag.errs
}

func (p *Parser) curr() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekNext() Token {
	if p.current+1 < len(p.tokens) {
		return p.tokens[p.current+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) previous() Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) atEnd() bool {
	return p.curr().Type == TokenEOF
}

func (p *Parser) advance() Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(tt TokenType) bool {
	return p.curr().Type == tt
}

func (p *Parser) match(types ...TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(tt TokenType, msg string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, p.errorAt(p.curr(), msg)
}

func (p *Parser) errorAt(tok Token, msg string) error {
	where := fmt.Sprintf("at '%s'", tok.Lexeme)
	if tok.Type == TokenEOF {
		where = "at end"
	}
	return p.diag.report(tok.Pos, tok.Type == TokenEOF, fmt.Sprintf("%s: %s", where, msg))
}

// synchronize skips tokens until a likely statement boundary so that one
// malformed statement produces one diagnostic.
func (p *Parser) synchronize() {
	if !p.check(TokenEnd) {
		p.advance()
	}
	for !p.atEnd() {
		if p.previous().Type == TokenSemicolon {
			return
		}
		switch p.curr().Type {
		case TokenString, TokenChar, TokenInt, TokenFloat, TokenBool, TokenImmut,
			TokenDisplay, TokenScan, TokenIf, TokenWhile, TokenReturn,
			TokenFn, TokenBegin, TokenEnd:
			return
		}
		p.advance()
	}
}

// skipFunction discards the rest of a malformed function declaration,
// stopping after its END FN or before the program's BEGIN CODE.
func (p *Parser) skipFunction() {
	for !p.atEnd() {
		next := p.peekNext().Type
		if p.check(TokenBegin) && next == TokenCode {
			return
		}
		if p.check(TokenEnd) && next == TokenFn {
			p.advance()
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *Parser) parseProgram() []Stmt {
	var stmts []Stmt
	for p.match(TokenFn) {
		fn, err := p.parseFuncDecl()
		if err != nil {
			p.skipFunction()
			continue
		}
		stmts = append(stmts, fn)
	}

	if _, err := p.expect(TokenBegin, "Expecting BEGIN."); err != nil {
		return stmts
	}
	if _, err := p.expect(TokenCode, "Expecting 'CODE' after BEGIN."); err != nil {
		return stmts
	}
	stmts = append(stmts, p.parseBody(false)...)
	if _, err := p.expect(TokenEnd, "Expecting END."); err != nil {
		return stmts
	}
	if _, err := p.expect(TokenCode, "Expecting 'CODE' after END."); err != nil {
		return stmts
	}
	if !p.atEnd() {
		p.errorAt(p.curr(), "Unexpected input after END CODE.")
	}
	return stmts
}

// parseBody parses leading declarations, optional nested functions and then
// statements, stopping at END.
func (p *Parser) parseBody(allowFuncs bool) []Stmt {
	var stmts []Stmt
	for p.checkDeclStart() {
		decls, err := p.parseDeclaration()
		if err != nil {
			p.synchronize()
			continue
		}
		stmts = append(stmts, decls...)
	}
	if allowFuncs {
		for p.match(TokenFn) {
			fn, err := p.parseFuncDecl()
			if err != nil {
				p.skipFunction()
				continue
			}
			stmts = append(stmts, fn)
		}
	}
	return append(stmts, p.parseStatements()...)
}

func (p *Parser) parseStatements() []Stmt {
	var stmts []Stmt
	for !p.atEnd() && !p.check(TokenEnd) {
		if p.match(TokenSemicolon) {
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			p.synchronize()
			continue
		}
		p.match(TokenSemicolon)
		stmts = append(stmts, stmt)
	}
	return stmts
}

func (p *Parser) checkDeclStart() bool {
	return p.check(TokenImmut) || p.curr().Type.IsTypeKeyword()
}

func (p *Parser) parseDeclaration() ([]Stmt, error) {
	mutable := true
	if p.match(TokenImmut) {
		mutable = false
	}
	typeTok := p.curr()
	if !typeTok.Type.IsTypeKeyword() {
		return nil, p.errorAt(typeTok, "Expecting a variable type after 'IMMUT' keyword.")
	}
	p.advance()

	var stmts []Stmt
	for {
		name, err := p.expect(TokenIdentifier, "Expect variable name.")
		if err != nil {
			return nil, err
		}
		var init Expr
		if p.match(TokenAssign) {
			init, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		stmts = append(stmts, newTypedDecl(typeTok.Type, Declaration{
			Name:    name,
			Init:    init,
			Mutable: mutable,
		}))
		if !p.match(TokenComma) {
			break
		}
	}
	p.match(TokenSemicolon)
	return stmts, nil
}

// parseFuncDecl parses a function after its FN keyword.
func (p *Parser) parseFuncDecl() (*FuncDecl, error) {
	var returnType *Token
	if p.curr().Type.IsTypeKeyword() {
		tok := p.advance()
		returnType = &tok
	}
	name, err := p.expect(TokenIdentifier, "Expect function name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLeftParen, "Expect '(' after function name."); err != nil {
		return nil, err
	}
	var params []Param
	if !p.check(TokenRightParen) {
		for {
			if len(params) >= maxArgs {
				p.errorAt(p.curr(), "Can't have more than 255 parameters.")
			}
			typeTok := p.curr()
			if !typeTok.Type.IsTypeKeyword() {
				return nil, p.errorAt(typeTok, "Expect parameter type.")
			}
			p.advance()
			paramName, err := p.expect(TokenIdentifier, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, Param{Type: typeTok, Name: paramName})
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if _, err := p.expect(TokenRightParen, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenBegin, "Expect 'BEGIN' before function body."); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenFn, "Expect 'FN' after BEGIN."); err != nil {
		return nil, err
	}
	body := p.parseBody(true)
	if _, err := p.expect(TokenEnd, "Expect 'END' after function body."); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenFn, "Expect 'FN' after END."); err != nil {
		return nil, err
	}
	return &FuncDecl{
		Name:       name,
		Params:     params,
		Body:       body,
		ReturnType: returnType,
	}, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	switch p.curr().Type {
	case TokenDisplay:
		return p.parseDisplayStmt()
	case TokenScan:
		return p.parseScanStmt()
	case TokenReturn:
		return p.parseReturnStmt()
	case TokenIf:
		return p.parseIfStmt()
	case TokenWhile:
		return p.parseWhileStmt()
	case TokenBegin:
		return p.parseBlockStmt()
	case TokenString, TokenChar, TokenInt, TokenFloat, TokenBool, TokenImmut:
		return nil, p.errorAt(p.curr(), "Declarations must come before statements.")
	case TokenFn:
		return nil, p.errorAt(p.curr(), "Functions must be declared before statements.")
	default:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: expr}, nil
	}
}

func (p *Parser) parseDisplayStmt() (Stmt, error) {
	kw := p.advance()
	if _, err := p.expect(TokenColon, "Expecting ':' after DISPLAY."); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &DisplayStmt{Keyword: kw, Expr: expr}, nil
}

func (p *Parser) parseScanStmt() (Stmt, error) {
	kw := p.advance()
	if _, err := p.expect(TokenColon, "Expecting ':' after SCAN."); err != nil {
		return nil, err
	}
	var names []Token
	for {
		name, err := p.expect(TokenIdentifier, "Expecting identifier after 'SCAN'.")
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if !p.match(TokenComma) {
			break
		}
	}
	return &ScanStmt{Keyword: kw, Names: names}, nil
}

func (p *Parser) parseReturnStmt() (Stmt, error) {
	kw := p.advance()
	var value Expr
	if p.returnValueFollows(kw) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		value = expr
	}
	return &ReturnStmt{Keyword: kw, Value: value}, nil
}

// returnValueFollows reports whether the RETURN at kw has a value. The
// value must start on the same line as the keyword.
func (p *Parser) returnValueFollows(kw Token) bool {
	if p.curr().Pos.Line != kw.Pos.Line {
		return false
	}
	switch p.curr().Type {
	case TokenEOF, TokenEnd, TokenSemicolon, TokenElse, TokenBegin,
		TokenDisplay, TokenScan, TokenIf, TokenWhile, TokenReturn:
		return false
	}
	return true
}

func (p *Parser) parseIfStmt() (Stmt, error) {
	kw := p.advance()
	cond, err := p.parseCondition("IF")
	if err != nil {
		return nil, err
	}
	then, err := p.parseFencedBody(TokenIf)
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{
		Keyword: kw,
		Cond:    cond,
		Then:    then,
	}
	for p.check(TokenElse) && p.peekNext().Type == TokenIf {
		p.advance()
		p.advance()
		cond, err := p.parseCondition("ELSE IF")
		if err != nil {
			return nil, err
		}
		body, err := p.parseFencedBody(TokenIf)
		if err != nil {
			return nil, err
		}
		stmt.ElseIfConds = append(stmt.ElseIfConds, cond)
		stmt.ElseIfBodies = append(stmt.ElseIfBodies, body)
	}
	if p.match(TokenElse) {
		body, err := p.parseFencedBody(TokenIf)
		if err != nil {
			return nil, err
		}
		if body == nil {
			body = []Stmt{}
		}
		stmt.Else = body
	}
	return stmt, nil
}

func (p *Parser) parseWhileStmt() (Stmt, error) {
	kw := p.advance()
	cond, err := p.parseCondition("WHILE")
	if err != nil {
		return nil, err
	}
	body, err := p.parseFencedBody(TokenWhile)
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Keyword: kw, Cond: cond, Body: body}, nil
}

func (p *Parser) parseBlockStmt() (Stmt, error) {
	begin := p.advance()
	stmts := p.parseBody(true)
	if _, err := p.expect(TokenEnd, "Expect 'END' after block."); err != nil {
		return nil, err
	}
	return &BlockStmt{Begin: begin, Stmts: stmts}, nil
}

func (p *Parser) parseCondition(keyword string) (Expr, error) {
	if _, err := p.expect(TokenLeftParen, fmt.Sprintf("Expecting '(' after %s.", keyword)); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRightParen, "Expecting ')' after condition."); err != nil {
		return nil, err
	}
	return cond, nil
}

// parseFencedBody parses BEGIN <fence> statements END <fence>.
func (p *Parser) parseFencedBody(fence TokenType) ([]Stmt, error) {
	if _, err := p.expect(TokenBegin, "Expecting BEGIN after condition."); err != nil {
		return nil, err
	}
	if _, err := p.expect(fence, fmt.Sprintf("Expecting %s after BEGIN.", fence)); err != nil {
		return nil, err
	}
	body := p.parseStatements()
	if _, err := p.expect(TokenEnd, "Expecting END after statements."); err != nil {
		return nil, err
	}
	if _, err := p.expect(fence, fmt.Sprintf("Expecting %s after END.", fence)); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Parser) parseExpression() (Expr, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (Expr, error) {
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.match(TokenAssign) {
		equals := p.previous()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if v, ok := expr.(*VariableExpr); ok {
			return &AssignExpr{Name: v.Name, Value: value}, nil
		}
		// Reported without unwinding: the rest of the statement is well formed.
		p.errorAt(equals, "Invalid assignment target.")
	}
	return expr, nil
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(TokenOr) {
		op := p.previous()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &LogicalExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.match(TokenAnd) {
		op := p.previous()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &LogicalExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (Expr, error) {
	return p.parseBinary(p.parseComparison, TokenEqualEqual, TokenNotEqual)
}

func (p *Parser) parseComparison() (Expr, error) {
	return p.parseBinary(p.parseTerm, TokenGreater, TokenGreaterEqual, TokenLess, TokenLessEqual)
}

func (p *Parser) parseTerm() (Expr, error) {
	return p.parseBinary(p.parseFactor, TokenPlus, TokenMinus, TokenAmpersand)
}

func (p *Parser) parseFactor() (Expr, error) {
	return p.parseBinary(p.parseUnary, TokenStar, TokenSlash, TokenPercent)
}

// parseBinary parses a left-associative chain of the given operators.
func (p *Parser) parseBinary(operand func() (Expr, error), ops ...TokenType) (Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		op := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.match(TokenNot, TokenMinus, TokenPlus) {
		op := p.previous()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Operand: operand}, nil
	}
	return p.parseCall()
}

func (p *Parser) parseCall() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.match(TokenLeftParen) {
		expr, err = p.finishCall(expr)
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *Parser) finishCall(callee Expr) (Expr, error) {
	var args []Expr
	if !p.check(TokenRightParen) {
		for {
			if len(args) >= maxArgs {
				p.errorAt(p.curr(), "Can't have more than 255 arguments.")
			}
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	paren, err := p.expect(TokenRightParen, "Expecting ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return &CallExpr{Callee: callee, Paren: paren, Args: args}, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.curr()
	switch tok.Type {
	case TokenTrue, TokenFalse, TokenNull, TokenStringLit, TokenCharLit,
		TokenIntLit, TokenFloatLit, TokenNewline:
		p.advance()
		return &LiteralExpr{Value: tok.Literal, Token: tok}, nil
	case TokenIdentifier:
		p.advance()
		return &VariableExpr{Name: tok}, nil
	case TokenLeftParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &GroupingExpr{Expr: expr, Posn: tok.Pos}, nil
	default:
		return nil, p.errorAt(tok, "Expect expression.")
	}
}
