package parser

import "fmt"

// TokenType enumerates lexical categories recognised by the scanner.
type TokenType int

const (
	TokenEOF TokenType = iota

	TokenIdentifier

	// Literals
	TokenStringLit
	TokenCharLit
	TokenIntLit
	TokenFloatLit
	TokenTrue
	TokenFalse
	TokenNull
	TokenNewline // $

	// Keywords
	TokenBegin
	TokenEnd
	TokenCode
	TokenDisplay
	TokenScan
	TokenString
	TokenChar
	TokenInt
	TokenFloat
	TokenBool
	TokenIf
	TokenElse
	TokenWhile
	TokenAnd
	TokenOr
	TokenNot
	TokenFn
	TokenImmut
	TokenReturn

	// Operators and punctuation
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenComma        // ,
	TokenColon        // :
	TokenSemicolon    // ;
	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenSlash        // /
	TokenPercent      // %
	TokenAmpersand    // &
	TokenAssign       // =
	TokenEqualEqual   // ==
	TokenNotEqual     // <>
	TokenGreater      // >
	TokenGreaterEqual // >=
	TokenLess         // <
	TokenLessEqual    // <=
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenIdentifier:   "identifier",
	TokenStringLit:    "string literal",
	TokenCharLit:      "character literal",
	TokenIntLit:       "integer literal",
	TokenFloatLit:     "float literal",
	TokenTrue:         "TRUE",
	TokenFalse:        "FALSE",
	TokenNull:         "null",
	TokenNewline:      "$",
	TokenBegin:        "BEGIN",
	TokenEnd:          "END",
	TokenCode:         "CODE",
	TokenDisplay:      "DISPLAY",
	TokenScan:         "SCAN",
	TokenString:       "STRING",
	TokenChar:         "CHAR",
	TokenInt:          "INT",
	TokenFloat:        "FLOAT",
	TokenBool:         "BOOL",
	TokenIf:           "IF",
	TokenElse:         "ELSE",
	TokenWhile:        "WHILE",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
	TokenFn:           "FN",
	TokenImmut:        "IMMUT",
	TokenReturn:       "RETURN",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenComma:        ",",
	TokenColon:        ":",
	TokenSemicolon:    ";",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenStar:         "*",
	TokenSlash:        "/",
	TokenPercent:      "%",
	TokenAmpersand:    "&",
	TokenAssign:       "=",
	TokenEqualEqual:   "==",
	TokenNotEqual:     "<>",
	TokenGreater:      ">",
	TokenGreaterEqual: ">=",
	TokenLess:         "<",
	TokenLessEqual:    "<=",
}

func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return "unknown"
}

// IsTypeKeyword reports whether tt names one of the five value types.
func (tt TokenType) IsTypeKeyword() bool {
	switch tt {
	case TokenString, TokenChar, TokenInt, TokenFloat, TokenBool:
		return true
	}
	return false
}

var keywords = map[string]TokenType{
	"BEGIN":   TokenBegin,
	"END":     TokenEnd,
	"CODE":    TokenCode,
	"DISPLAY": TokenDisplay,
	"SCAN":    TokenScan,
	"STRING":  TokenString,
	"CHAR":    TokenChar,
	"INT":     TokenInt,
	"FLOAT":   TokenFloat,
	"BOOL":    TokenBool,
	"IF":      TokenIf,
	"ELSE":    TokenElse,
	"WHILE":   TokenWhile,
	"AND":     TokenAnd,
	"OR":      TokenOr,
	"NOT":     TokenNot,
	"FN":      TokenFn,
	"IMMUT":   TokenImmut,
	"RETURN":  TokenReturn,
	"null":    TokenNull,
}

// Position tracks a source location.
type Position struct {
	Offset int // zero-based byte offset
	Line   int // one-based line number
	Column int // one-based column number (rune count)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical unit produced by the scanner.
type Token struct {
	Type    TokenType
	Lexeme  string      // source text of the token
	Literal interface{} // string, rune, int64, float64 or bool for literal kinds
	Pos     Position
}

// Line returns the one-based source line of the token.
func (t Token) Line() int { return t.Pos.Line }

func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s %q %v", t.Type, t.Lexeme, t.Literal)
	}
	return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
}
