package xdm

import (
	"errors"
	"fmt"
)

// Error codes shared with the XQuery/XPath error namespace. The engine
// reports every failure through one of these so callers can match on a
// stable machine readable kind.
const (
	CodeSyntax           = "XPST0003"
	CodeUndefinedVar     = "XPST0008"
	CodeUnknownFunction  = "XPST0017"
	CodeUnknownType      = "XPST0051"
	CodeUnknownPrefix    = "XPST0081"
	CodeBadCastTarget    = "XPST0080"
	CodeType             = "XPTY0004"
	CodeMixedPath        = "XPTY0018"
	CodeStepAtomic       = "XPTY0019"
	CodeNoContext        = "XPDY0002"
	CodeTreatFailed      = "XPDY0050"
	CodeDivZero          = "FOAR0001"
	CodeNumericRange     = "FOAR0002"
	CodeUserError        = "FOER0000"
	CodeInvalidValue     = "FORG0001"
	CodeZeroOrOne        = "FORG0003"
	CodeOneOrMore        = "FORG0004"
	CodeExactlyOne       = "FORG0005"
	CodeBadArgument      = "FORG0006"
	CodeCastOverflow     = "FOCA0001"
	CodeCastUndefined    = "FOCA0002"
	CodeNotANumber       = "FOCA0005"
	CodeDurationRange    = "FODT0002"
	CodeBadTimezone      = "FODT0003"
	CodeUnknownCollation = "FOCH0002"
	CodeUnsupportedNorm  = "FOCH0003"
	CodeCollationUnits   = "FOCH0004"
	CodeNoDocument       = "FODC0002"
	CodeBadResource      = "FODC0004"
	CodeBadResourceURI   = "FODC0005"
	CodeNoNamespace      = "FONS0004"
	CodeBadRegexFlags    = "FORX0001"
	CodeBadRegex         = "FORX0002"
	CodeRegexZeroMatch   = "FORX0003"
	CodeBadReplacement   = "FORX0004"
)

// ErrorSpace is the namespace bound to the err prefix in reported codes.
const ErrorSpace = "http://www.w3.org/2005/xqt-errors"

type Error struct {
	Code    string
	Message string
	Cause   error
}

func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func Errorf(code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a code to an underlying error so both the code and the
// original cause stay matchable.
func Wrap(code string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: cause.Error(),
		Cause:   cause,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("err:%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// CodeOf returns the error code attached to err or the empty string when
// err does not carry one.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
