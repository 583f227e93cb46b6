package xdm

import (
	"math"
	"slices"
)

// Item is one member of a sequence: a node or an atomic value.
type Item interface {
	Node() Node
	Value() Value
	Atomic() bool
	String() string
}

type Sequence []Item

func NewSequence() Sequence {
	var seq Sequence
	return seq
}

func Singleton(item Item) Sequence {
	var seq Sequence
	seq.Append(item)
	return seq
}

// From builds a sequence of atomic items from the given values.
func From(values ...Value) Sequence {
	var seq Sequence
	for i := range values {
		seq.Append(createAtomic(values[i]))
	}
	return seq
}

func (s *Sequence) First() Item {
	if s.Empty() {
		return nil
	}
	return (*s)[0]
}

func (s *Sequence) Len() int {
	return len(*s)
}

func (s *Sequence) Append(item Item) {
	*s = append(*s, item)
}

func (s *Sequence) Concat(other Sequence) {
	*s = slices.Concat(*s, other)
}

func (s *Sequence) Empty() bool {
	return len(*s) == 0
}

func (s *Sequence) Singleton() bool {
	return len(*s) == 1
}

// Atomize replaces every node in the sequence with its typed value.
func Atomize(seq Sequence) Sequence {
	out := make(Sequence, 0, len(seq))
	for i := range seq {
		if seq[i].Atomic() {
			out = append(out, seq[i])
			continue
		}
		out = append(out, createAtomic(seq[i].Node().TypedValue()))
	}
	return out
}

// EffectiveBooleanValue computes the boolean value of a sequence: false
// when empty, true when the first item is a node, the type specific
// rule for a single atomic item. Other sequences have no boolean value
// and raise FORG0006.
func EffectiveBooleanValue(seq Sequence) (bool, error) {
	if seq.Empty() {
		return false, nil
	}
	if !seq[0].Atomic() {
		return true, nil
	}
	if !seq.Singleton() {
		return false, NewError(CodeBadArgument, "sequence of atomic values has no boolean value")
	}
	switch v := seq[0].Value().(type) {
	case Boolean:
		return bool(v), nil
	case String:
		return v != "", nil
	case Untyped:
		return v != "", nil
	case AnyURI:
		return v != "", nil
	case Integer:
		return v != 0, nil
	case Decimal:
		return v != 0 && !math.IsNaN(float64(v)), nil
	case Double:
		return v != 0 && !math.IsNaN(float64(v)), nil
	case Float:
		return v != 0 && !math.IsNaN(float64(v)), nil
	}
	return false, Errorf(CodeBadArgument, "%s has no boolean value", seq[0].Value().Type())
}

type atomicItem struct {
	value Value
}

func NewAtomicItem(value Value) Item {
	return createAtomic(value)
}

func createAtomic(value Value) Item {
	return atomicItem{
		value: value,
	}
}

func (i atomicItem) Atomic() bool {
	return true
}

func (i atomicItem) Node() Node {
	return nil
}

func (i atomicItem) Value() Value {
	return i.value
}

func (i atomicItem) String() string {
	return i.value.String()
}

type nodeItem struct {
	node Node
}

func NewNodeItem(node Node) Item {
	return createNode(node)
}

func createNode(node Node) Item {
	return nodeItem{
		node: node,
	}
}

func (i nodeItem) Atomic() bool {
	return false
}

func (i nodeItem) Node() Node {
	return i.node
}

func (i nodeItem) Value() Value {
	return i.node.TypedValue()
}

func (i nodeItem) String() string {
	return i.node.Value()
}
