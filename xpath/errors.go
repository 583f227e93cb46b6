package xpath

import (
	"errors"
	"fmt"

	"github.com/midbel/xpath/xdm"
)

// SyntaxError reports a scan or parse failure with the position the
// offending token starts at.
type SyntaxError struct {
	Code  string
	Cause string
	Position
}

func syntaxError(cause string, pos Position) error {
	return SyntaxError{
		Code:     xdm.CodeSyntax,
		Cause:    cause,
		Position: pos,
	}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("[%s] %d:%d: %s", e.Code, e.Line, e.Column, e.Cause)
}

func staticError(code, cause string, pos Position) error {
	return SyntaxError{
		Code:     code,
		Cause:    cause,
		Position: pos,
	}
}

// CodeOf extracts the error code carried by err, whatever layer raised
// it.
func CodeOf(err error) string {
	var syn SyntaxError
	if errors.As(err, &syn) {
		return syn.Code
	}
	return xdm.CodeOf(err)
}

// ErrCancelled is the error an evaluation unwinds with once the
// cancellation flag is observed.
var ErrCancelled = xdm.NewError(xdm.CodeUserError, "evaluation cancelled")

// Cancelled reports whether err comes from a cancelled evaluation.
func Cancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
