// Package errors defines the two error variants thorium ever returns:
// a CompilationError from the compiler, or a RuntimeError from the VM.
package errors

import (
	"errors"
	"fmt"
)

// CompilationError is produced by the scanner or the compiler. Reason is
// already formatted per token (e.g. "Error at 'x': Expect expression."),
// so Error() only has to prefix the line.
type CompilationError struct {
	Line   int
	Reason string
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("[line %d] %s", e.Line, e.Reason)
}

// RuntimeError is produced by the VM. Line is the source line of the
// instruction that failed.
type RuntimeError struct {
	Line   int
	Reason string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d] in script", e.Reason, e.Line)
}

var Unreachable = errors.New("internal error: entered unreachable code")
