package json

import "fmt"

const (
	EOF = -(1 + iota)
	BegObj
	EndObj
	BegArr
	EndArr
	Comma
	Colon
	String
	Number
	Boolean
	Null
	Invalid
)

type Position struct {
	Line   int
	Column int
}

type Token struct {
	Literal string
	Type    rune
	Position
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "<eof>"
	case BegObj:
		return "<beg-obj>"
	case EndObj:
		return "<end-obj>"
	case BegArr:
		return "<beg-arr>"
	case EndArr:
		return "<end-arr>"
	case Comma:
		return "<comma>"
	case Colon:
		return "<colon>"
	case Null:
		return "<null>"
	case String:
		return fmt.Sprintf("string(%s)", t.Literal)
	case Number:
		return fmt.Sprintf("number(%s)", t.Literal)
	case Boolean:
		return fmt.Sprintf("boolean(%s)", t.Literal)
	default:
		return fmt.Sprintf("invalid(%s)", t.Literal)
	}
}
