package xpath

import (
	"fmt"
	"strings"

	"github.com/midbel/xpath/xdm"
)

// opcode identifies one instruction of the compiled form.
type opcode uint8

const (
	opPushValue opcode = iota
	opEmpty
	opSequence
	opMakeRange
	opContextItem
	opRoot
	opLoadSlot
	opLoadExtern
	opBindSlot
	opStep
	opPredicate
	opMap
	opNormalize
	opAtomize
	opArith
	opNegate
	opNumeric
	opCompareValue
	opCompareGeneral
	opCompareNode
	opNodeUnion
	opNodeIntersect
	opNodeExcept
	opLogicalAnd
	opLogicalOr
	opIf
	opFor
	opQuant
	opCall
	opCast
	opCastable
	opInstance
	opTreat
	opPosition
	opLast
)

// instr is one instruction. The evaluator consumes instructions as a
// stack program whose stack holds lazy sequences; the fields beyond op
// are operands and only the ones the opcode needs are set.
//
// opStep, opPredicate, opMap, opFor and opQuant own the n instructions
// that follow them: that span is a sub program the evaluator re-runs
// per item or per binding instead of consuming it inline.
type instr struct {
	op    opcode
	val   xdm.Value
	n     int
	slot  int
	sub   rune
	axis  string
	test  matcher
	name  xdm.ExpandedName
	fn    *overload
	typ   *xdm.Type
	check *seqCheck
	opt   bool
	every bool
	rev   bool
}

// program is the linear compiled form of one expression.
type program []instr

func (p program) String() string {
	var (
		str  strings.Builder
		ends []int
	)
	for i, in := range p {
		for len(ends) > 0 && i >= ends[len(ends)-1] {
			ends = ends[:len(ends)-1]
		}
		fmt.Fprintf(&str, "%04d %s%s\n", i, strings.Repeat("  ", len(ends)), in)
		switch in.op {
		case opStep, opPredicate, opMap, opFor, opQuant:
			if in.n > 0 {
				ends = append(ends, i+1+in.n)
			}
		}
	}
	return str.String()
}

func (i instr) String() string {
	switch i.op {
	case opPushValue:
		return fmt.Sprintf("push %s(%s)", i.val.Type(), i.val)
	case opEmpty:
		return "empty"
	case opSequence:
		return fmt.Sprintf("sequence %d", i.n)
	case opMakeRange:
		return "range"
	case opContextItem:
		return "context-item"
	case opRoot:
		return "root"
	case opLoadSlot:
		return fmt.Sprintf("load slot=%d", i.slot)
	case opLoadExtern:
		return fmt.Sprintf("load extern=%s", i.name)
	case opBindSlot:
		return fmt.Sprintf("bind slot=%d", i.slot)
	case opStep:
		if i.n > 0 {
			return fmt.Sprintf("step %s::%s preds=%d", i.axis, i.test, i.n)
		}
		return fmt.Sprintf("step %s::%s", i.axis, i.test)
	case opPredicate:
		return fmt.Sprintf("predicate len=%d", i.n)
	case opMap:
		return fmt.Sprintf("map len=%d", i.n)
	case opNormalize:
		if i.rev {
			return "normalize reverse"
		}
		return "normalize"
	case opAtomize:
		return "atomize"
	case opArith:
		return fmt.Sprintf("arith %s", opName(i.sub))
	case opNegate:
		return "negate"
	case opNumeric:
		return "numeric"
	case opCompareValue:
		return fmt.Sprintf("compare-value %s", opName(i.sub))
	case opCompareGeneral:
		return fmt.Sprintf("compare-general %s", opName(i.sub))
	case opCompareNode:
		return fmt.Sprintf("compare-node %s", opName(i.sub))
	case opNodeUnion:
		return "union"
	case opNodeIntersect:
		return "intersect"
	case opNodeExcept:
		return "except"
	case opLogicalAnd:
		return "and"
	case opLogicalOr:
		return "or"
	case opIf:
		return "if"
	case opFor:
		return fmt.Sprintf("for slot=%d len=%d", i.slot, i.n)
	case opQuant:
		if i.every {
			return fmt.Sprintf("every slot=%d len=%d", i.slot, i.n)
		}
		return fmt.Sprintf("some slot=%d len=%d", i.slot, i.n)
	case opCall:
		return fmt.Sprintf("call %s#%d", i.name, i.n)
	case opCast:
		if i.opt {
			return fmt.Sprintf("cast %s?", i.typ)
		}
		return fmt.Sprintf("cast %s", i.typ)
	case opCastable:
		if i.opt {
			return fmt.Sprintf("castable %s?", i.typ)
		}
		return fmt.Sprintf("castable %s", i.typ)
	case opInstance:
		return fmt.Sprintf("instance %s", i.check)
	case opTreat:
		return fmt.Sprintf("treat %s", i.check)
	case opPosition:
		return "position"
	case opLast:
		return "last"
	default:
		return fmt.Sprintf("op(%d)", i.op)
	}
}

func opName(op rune) string {
	switch op {
	case opAdd:
		return "+"
	case opSub:
		return "-"
	case opMul:
		return "*"
	case opDiv:
		return "div"
	case opIdiv:
		return "idiv"
	case opMod:
		return "mod"
	case opValEq:
		return "eq"
	case opValNe:
		return "ne"
	case opValGt:
		return "gt"
	case opValGe:
		return "ge"
	case opValLt:
		return "lt"
	case opValLe:
		return "le"
	case opEq:
		return "="
	case opNe:
		return "!="
	case opGt:
		return ">"
	case opGe:
		return ">="
	case opLt:
		return "<"
	case opLe:
		return "<="
	case opIs:
		return "is"
	case opBefore:
		return "<<"
	case opAfter:
		return ">>"
	default:
		return fmt.Sprintf("op(%c)", op)
	}
}

// matcher decides whether a node passes a compiled node test.
type matcher interface {
	match(xdm.Node) bool
	fmt.Stringer
}

// nameMatch matches nodes of one kind by expanded name. Both uri and
// local accept the * wildcard.
type nameMatch struct {
	kind  xdm.NodeKind
	uri   string
	local string
}

func (m nameMatch) match(node xdm.Node) bool {
	if node.Kind() != m.kind {
		return false
	}
	name := node.Name()
	if m.local != "*" && m.local != name.Name {
		return false
	}
	if m.uri != "*" && m.uri != name.Uri {
		return false
	}
	return true
}

func (m nameMatch) String() string {
	if m.uri == "" || m.local == "*" && m.uri == "*" {
		return m.local
	}
	return fmt.Sprintf("{%s}%s", m.uri, m.local)
}

// kindMatch matches nodes by kind, with the optional refinements the
// kind tests allow: a name for element() and attribute(), a target for
// processing-instruction() and an element test for document-node().
type kindMatch struct {
	kinds  xdm.NodeKind
	name   *nameMatch
	inner  *nameMatch
	target string
}

func (m kindMatch) match(node xdm.Node) bool {
	if node.Kind()&m.kinds == 0 {
		return false
	}
	if m.name != nil && !m.name.match(node) {
		return false
	}
	if m.target != "" && node.Name().Name != m.target {
		return false
	}
	if m.inner != nil {
		el := documentElement(node)
		return el != nil && m.inner.match(el)
	}
	return true
}

func (m kindMatch) String() string {
	var arg string
	switch {
	case m.name != nil:
		arg = m.name.String()
	case m.inner != nil:
		arg = fmt.Sprintf("element(%s)", m.inner)
	case m.target != "":
		arg = fmt.Sprintf("%q", m.target)
	}
	switch m.kinds {
	case xdm.KindDocument:
		return fmt.Sprintf("document-node(%s)", arg)
	case xdm.KindElement:
		return fmt.Sprintf("element(%s)", arg)
	case xdm.KindAttribute:
		return fmt.Sprintf("attribute(%s)", arg)
	case xdm.KindText:
		return "text()"
	case xdm.KindComment:
		return "comment()"
	case xdm.KindInstruction:
		return fmt.Sprintf("processing-instruction(%s)", arg)
	default:
		return "node()"
	}
}

func documentElement(node xdm.Node) xdm.Node {
	for _, c := range node.Children() {
		if c.Kind() == xdm.KindElement {
			return c
		}
	}
	return nil
}

// seqCheck is the compiled form of a sequence type: an item condition
// plus an occurrence indicator.
type seqCheck struct {
	occurs rune
	any    bool
	atom   *xdm.Type
	node   matcher
}

// item reports whether a single item satisfies the item condition.
func (c *seqCheck) item(it xdm.Item) bool {
	switch {
	case c.any:
		return true
	case c.atom != nil:
		return it.Atomic() && it.Value().Type().InstanceOf(c.atom)
	case c.node != nil:
		return !it.Atomic() && it.Node() != nil && c.node.match(it.Node())
	default:
		return false
	}
}

// most reports the maximum cardinality the occurrence allows, -1 for
// unbounded.
func (c *seqCheck) most() int {
	switch c.occurs {
	case occEmpty:
		return 0
	case occOne, occOpt:
		return 1
	default:
		return -1
	}
}

// least reports the minimum cardinality the occurrence requires.
func (c *seqCheck) least() int {
	switch c.occurs {
	case occOne, occPlus:
		return 1
	default:
		return 0
	}
}

func (c *seqCheck) String() string {
	var base string
	switch {
	case c.occurs == occEmpty:
		return "empty-sequence()"
	case c.any:
		base = "item()"
	case c.atom != nil:
		base = c.atom.String()
	case c.node != nil:
		base = c.node.String()
	}
	switch c.occurs {
	case occOpt:
		return base + "?"
	case occStar:
		return base + "*"
	case occPlus:
		return base + "+"
	}
	return base
}
