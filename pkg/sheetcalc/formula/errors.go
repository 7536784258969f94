package formula

import (
	"errors"
	"fmt"
)

// ErrCycle indicates that a chained formula depends on itself.
var ErrCycle = errors.New("circular reference")

// SyntaxError reports a formula that could not be tokenized or parsed.
type SyntaxError struct {
	// Pos is the rune offset in the expression (after the leading '=').
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

// EvalError reports a failure while evaluating a parsed formula.
type EvalError struct {
	Msg string
}

func (e *EvalError) Error() string {
	return e.Msg
}

func evalErrorf(format string, args ...interface{}) error {
	return &EvalError{Msg: fmt.Sprintf(format, args...)}
}
