package parser

import (
	"io"
)

// ParseString scans and parses CODE source text. Lexical and syntax
// diagnostics are both forwarded to handler and collected into the
// returned ErrorList.
func ParseString(src string, handler ErrorHandler) ([]Stmt, error) {
	scanner := NewScanner(src, handler)
	tokens := scanner.ScanTokens()
	parser := NewParser(tokens, handler)
	stmts, _ := parser.Parse()

	errs := append(ErrorList(nil), scanner.Errors()...)
	errs = append(errs, parser.Errors()...)
	return stmts, errs.Err()
}

// ParseReader consumes CODE source from an io.Reader.
func ParseReader(r io.Reader, handler ErrorHandler) ([]Stmt, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(data), handler)
}
