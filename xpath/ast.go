package xpath

import (
	"github.com/midbel/xpath/xdm"
)

// Expr is a parsed expression. The parser produces the tree, the
// compiler lowers it to a program; nodes carry no behaviour of their
// own.
type Expr interface {
	exprNode()
}

// The thirteen axes. Values double as the literal spelling used in
// expressions.
const (
	childAxis          = "child"
	descendantAxis     = "descendant"
	attributeAxis      = "attribute"
	selfAxis           = "self"
	descendantSelfAxis = "descendant-or-self"
	nextSiblingAxis    = "following-sibling"
	nextAxis           = "following"
	namespaceAxis      = "namespace"
	parentAxis         = "parent"
	ancestorAxis       = "ancestor"
	prevSiblingAxis    = "preceding-sibling"
	prevAxis           = "preceding"
	ancestorSelfAxis   = "ancestor-or-self"
)

func knownAxis(kind string) bool {
	switch kind {
	case childAxis, descendantAxis, attributeAxis, selfAxis,
		descendantSelfAxis, nextSiblingAxis, nextAxis, namespaceAxis,
		parentAxis, ancestorAxis, prevSiblingAxis, prevAxis, ancestorSelfAxis:
		return true
	default:
		return false
	}
}

func reverseAxis(kind string) bool {
	switch kind {
	case parentAxis, ancestorAxis, ancestorSelfAxis, prevAxis, prevSiblingAxis:
		return true
	default:
		return false
	}
}

// test restricts the nodes an axis yields, either by name or by kind.
type test interface {
	test()
}

// nameTest matches by name against the principal node kind of the axis.
// Space and/or Name may be the star wildcard.
type nameTest struct {
	name xdm.QName
}

// kindTest matches by node kind. name narrows element and attribute
// tests, target narrows processing-instruction tests.
type kindTest struct {
	kind   xdm.NodeKind
	name   xdm.QName
	target string
}

const anyKind = xdm.KindDocument | xdm.KindElement | xdm.KindAttribute |
	xdm.KindText | xdm.KindComment | xdm.KindInstruction | xdm.KindNamespace

func (nameTest) test() {}
func (kindTest) test() {}

type literal struct {
	expr string
}

type number struct {
	expr xdm.Value
}

type identifier struct {
	name xdm.QName
}

type current struct{}

type root struct{}

type step struct {
	axis  string
	curr  test
	preds []Expr
}

type path struct {
	left  Expr
	right Expr
}

type filter struct {
	expr  Expr
	preds []Expr
}

type sequence struct {
	all []Expr
}

type binary struct {
	left  Expr
	right Expr
	op    rune
}

type reverse struct {
	expr Expr
}

// plus is the unary plus: the operand is atomized and checked numeric
// but otherwise left alone.
type plus struct {
	expr Expr
}

type rng struct {
	left  Expr
	right Expr
}

type conditional struct {
	test Expr
	csq  Expr
	alt  Expr
}

type binding struct {
	ident xdm.QName
	expr  Expr
}

type loop struct {
	binds []binding
	body  Expr
}

type let struct {
	binds []binding
	body  Expr
}

type quantified struct {
	binds []binding
	test  Expr
	every bool
}

type call struct {
	name xdm.QName
	args []Expr
}

// single names an atomic type as the target of cast and castable, with
// an optional question mark allowing the empty sequence through.
type single struct {
	name     xdm.QName
	optional bool
}

type cast struct {
	expr Expr
	kind single
}

type castable struct {
	expr Expr
	kind single
}

// Occurrence indicators of a sequence type.
const (
	occOne   = 0
	occOpt   = '?'
	occStar  = '*'
	occPlus  = '+'
	occEmpty = 'e'
)

// seqType is a parsed sequence type: empty-sequence(), or an item type
// with an occurrence indicator. Exactly one of item, atom and kind is
// meaningful: item() when item is set, an atomic type when atom is non
// zero, a kind test otherwise.
type seqType struct {
	occurs rune
	item   bool
	atom   xdm.QName
	kind   *kindTest
}

type instanceof struct {
	expr Expr
	kind seqType
}

type treat struct {
	expr Expr
	kind seqType
}

func (literal) exprNode()     {}
func (number) exprNode()      {}
func (identifier) exprNode()  {}
func (current) exprNode()     {}
func (root) exprNode()        {}
func (step) exprNode()        {}
func (path) exprNode()        {}
func (filter) exprNode()      {}
func (sequence) exprNode()    {}
func (binary) exprNode()      {}
func (reverse) exprNode()     {}
func (plus) exprNode()        {}
func (rng) exprNode()         {}
func (conditional) exprNode() {}
func (loop) exprNode()        {}
func (let) exprNode()         {}
func (quantified) exprNode()  {}
func (call) exprNode()        {}
func (cast) exprNode()        {}
func (castable) exprNode()    {}
func (instanceof) exprNode()  {}
func (treat) exprNode()       {}
