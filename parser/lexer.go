package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Scanner converts CODE source text into an ordered sequence of tokens.
// It never stops at a bad character: each problem is reported through the
// ErrorHandler and scanning resumes with the next rune.
type Scanner struct {
	src    string
	pos    int
	line   int
	column int

	start  runeState
	tokens []Token
	diag   diagnostics
}

// NewScanner prepares a scanner over src. handler may be nil.
func NewScanner(src string, handler ErrorHandler) *Scanner {
	return &Scanner{
		src:    src,
		line:   1,
		column: 1,
		diag:   diagnostics{handler: handler},
	}
}

// Scan tokenizes src, discarding diagnostics.
func Scan(src string) []Token {
	return NewScanner(src, nil).ScanTokens()
}

type runeState struct {
	pos    int
	line   int
	column int
}

func (s *Scanner) mark() runeState {
	return runeState{
		pos:    s.pos,
		line:   s.line,
		column: s.column,
	}
}

func (s *Scanner) restore(state runeState) {
	s.pos = state.pos
	s.line = state.line
	s.column = state.column
}

func (s *Scanner) atEnd() bool {
	return s.pos >= len(s.src)
}

// next consumes one rune. It returns 0 at end of input.
func (s *Scanner) next() rune {
	if s.atEnd() {
		return 0
	}
	r, w := utf8.DecodeRuneInString(s.src[s.pos:])
	s.pos += w
	if r == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return r
}

func (s *Scanner) peek() rune {
	if s.atEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return r
}

func (s *Scanner) peekSecond() rune {
	state := s.mark()
	s.next()
	r := s.peek()
	s.restore(state)
	return r
}

func (s *Scanner) match(expected rune) bool {
	if s.atEnd() || s.peek() != expected {
		return false
	}
	s.next()
	return true
}

// ScanTokens scans the whole source. The result always ends with an EOF token.
func (s *Scanner) ScanTokens() []Token {
	for {
		s.skipWhitespace()
		if s.atEnd() {
			break
		}
		s.start = s.mark()
		s.scanToken()
	}
	s.tokens = append(s.tokens, Token{
		Type: TokenEOF,
		Pos:  positionFromState(s.mark()),
	})
	return s.tokens
}

// Errors returns the diagnostics reported so far.
func (s *Scanner) Errors() ErrorList {
	return s.diag.errs
}

func (s *Scanner) skipWhitespace() {
	for !s.atEnd() {
		switch s.peek() {
		case ' ', '\t', '\r', '\n', 0:
			s.next()
		case '#':
			for !s.atEnd() && s.peek() != '\n' {
				s.next()
			}
		default:
			return
		}
	}
}

func (s *Scanner) scanToken() {
	r := s.next()
	switch {
	case isAlpha(r):
		s.scanIdentifier()
		return
	case isDigit(r):
		s.scanNumber()
		return
	}

	switch r {
	case '(':
		s.add(TokenLeftParen, nil)
	case ')':
		s.add(TokenRightParen, nil)
	case ',':
		s.add(TokenComma, nil)
	case ':':
		s.add(TokenColon, nil)
	case ';':
		s.add(TokenSemicolon, nil)
	case '+':
		s.add(TokenPlus, nil)
	case '-':
		s.add(TokenMinus, nil)
	case '*':
		s.add(TokenStar, nil)
	case '/':
		s.add(TokenSlash, nil)
	case '%':
		s.add(TokenPercent, nil)
	case '&':
		s.add(TokenAmpersand, nil)
	case '$':
		s.add(TokenNewline, '\n')
	case '=':
		if s.match('=') {
			s.add(TokenEqualEqual, nil)
		} else {
			s.add(TokenAssign, nil)
		}
	case '>':
		if s.match('=') {
			s.add(TokenGreaterEqual, nil)
		} else {
			s.add(TokenGreater, nil)
		}
	case '<':
		if s.match('=') {
			s.add(TokenLessEqual, nil)
		} else if s.match('>') {
			s.add(TokenNotEqual, nil)
		} else {
			s.add(TokenLess, nil)
		}
	case '\'':
		s.scanChar('\'')
	case '[':
		s.scanChar(']')
	case '"':
		s.scanString()
	default:
		s.errorf("Unexpected character %q.", r)
	}
}

// scanChar reads the x of 'x' or [x]; the opening delimiter is already consumed.
func (s *Scanner) scanChar(closing rune) {
	c := s.peek()
	if s.atEnd() || c == '\n' || s.peekSecond() != closing {
		if closing == ']' {
			s.errorf("Unexpected character '['.")
			return
		}
		s.errorf("Unterminated character literal.")
		return
	}
	s.next()
	s.next()
	s.add(TokenCharLit, c)
}

func (s *Scanner) scanString() {
	var builder strings.Builder
	for {
		if s.atEnd() || s.peek() == '\n' {
			s.errorf("Unterminated string.")
			return
		}
		r := s.next()
		if r == '"' {
			break
		}
		builder.WriteRune(r)
	}
	switch value := builder.String(); value {
	case "TRUE":
		s.add(TokenTrue, true)
	case "FALSE":
		s.add(TokenFalse, false)
	default:
		s.add(TokenStringLit, value)
	}
}

func (s *Scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.next()
	}
	isFloat := false
	if s.peek() == '.' && isDigit(s.peekSecond()) {
		isFloat = true
		s.next()
		for isDigit(s.peek()) {
			s.next()
		}
	}
	if isAlpha(s.peek()) {
		for isAlphaNumeric(s.peek()) {
			s.next()
		}
		s.errorf("Unexpected character found after a number.")
		return
	}

	text := s.lexeme()
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			s.errorf("Invalid float literal %s.", text)
			return
		}
		s.add(TokenFloatLit, f)
		return
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		s.errorf("Integer literal %s is out of range.", text)
		return
	}
	s.add(TokenIntLit, i)
}

func (s *Scanner) scanIdentifier() {
	for isAlphaNumeric(s.peek()) {
		s.next()
	}
	text := s.lexeme()
	if tt, ok := keywords[text]; ok {
		s.add(tt, nil)
		return
	}
	s.add(TokenIdentifier, nil)
}

func (s *Scanner) lexeme() string {
	return s.src[s.start.pos:s.pos]
}

func (s *Scanner) add(tt TokenType, literal interface{}) {
	s.tokens = append(s.tokens, Token{
		Type:    tt,
		Lexeme:  s.lexeme(),
		Literal: literal,
		Pos:     positionFromState(s.start),
	})
}

func (s *Scanner) errorf(format string, args ...interface{}) {
	s.diag.report(positionFromState(s.start), false, fmt.Sprintf(format, args...))
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}

func positionFromState(state runeState) Position {
	return Position{
		Offset: state.pos,
		Line:   state.line,
		Column: state.column,
	}
}
