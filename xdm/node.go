package xdm

import "sort"

type NodeKind int8

const (
	KindDocument NodeKind = 1 << iota
	KindElement
	KindAttribute
	KindText
	KindComment
	KindInstruction
	KindNamespace
)

func (k NodeKind) String() string {
	switch k {
	case KindDocument:
		return "document-node"
	case KindElement:
		return "element"
	case KindAttribute:
		return "attribute"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindInstruction:
		return "processing-instruction"
	case KindNamespace:
		return "namespace-node"
	default:
		return "node"
	}
}

// Node is the single abstraction the engine requires from a tree. Any
// object graph implementing it can be queried; the engine never branches
// on a concrete provider type.
//
// Implementations must give every node a process wide stable Identity so
// the engine can deduplicate and compare by identity, and must report
// document order through Compare: a negative value when the receiver
// precedes other, zero for the same node, a positive value when it
// follows. Nodes drawn from unrelated trees have no defined order and
// Compare must return an error instead of guessing one.
type Node interface {
	Kind() NodeKind
	Name() QName
	Value() string
	TypedValue() Value
	Parent() Node
	Children() []Node
	Attributes() []Node
	Namespaces() []Node
	Identity() string
	Compare(other Node) (int, error)
}

// Root walks parent links up to the topmost node of the tree n belongs to.
func Root(n Node) Node {
	for {
		p := n.Parent()
		if p == nil {
			return n
		}
		n = p
	}
}

func Before(a, b Node) (bool, error) {
	res, err := a.Compare(b)
	return res < 0, err
}

func After(a, b Node) (bool, error) {
	res, err := a.Compare(b)
	return res > 0, err
}

// SortDocumentOrder sorts nodes in place by document order. The first
// comparison failure aborts the sort and is returned.
func SortDocumentOrder(nodes []Node) error {
	var fail error
	sort.SliceStable(nodes, func(i, j int) bool {
		if fail != nil {
			return false
		}
		res, err := nodes[i].Compare(nodes[j])
		if err != nil {
			fail = err
			return false
		}
		return res < 0
	})
	return fail
}
