package parser

import (
	"errors"
	"fmt"
)

// ErrorHandler receives lexical and parse diagnostics as they are found.
type ErrorHandler func(line int, msg string)

// Error represents a scanner or parser diagnostic with optional metadata.
type Error struct {
	Line       int
	Column     int
	Err        error
	Incomplete bool // input ended before the construct was closed
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Err.Error())
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Msg returns the diagnostic text without location.
func (e *Error) Msg() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// ErrorList is the ordered set of diagnostics produced by one scan or parse.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

// Err returns nil for an empty list, the list itself otherwise.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// diagnostics records errors and forwards them to an optional handler.
type diagnostics struct {
	handler ErrorHandler
	errs    ErrorList
}

func (d *diagnostics) report(pos Position, incomplete bool, msg string) *Error {
	err := &Error{
		Line:       pos.Line,
		Column:     pos.Column,
		Err:        errors.New(msg),
		Incomplete: incomplete,
	}
	d.errs = append(d.errs, err)
	if d.handler != nil {
		d.handler(pos.Line, msg)
	}
	return err
}

// IsIncomplete reports whether the supplied error only says that input
// ended too early, so that more lines could complete it.
func IsIncomplete(err error) bool {
	var list ErrorList
	if errors.As(err, &list) {
		if len(list) == 0 {
			return false
		}
		for _, e := range list {
			if !e.Incomplete {
				return false
			}
		}
		return true
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Incomplete
	}
	return false
}
