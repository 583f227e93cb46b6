// Package dom provides an untyped XML tree that satisfies the engine
// node contract: parent and position links, per node identity tokens
// and a document order comparator over ancestor paths. It ships a well
// formedness checking reader and an indenting writer so documents can
// be loaded, queried and printed without a schema.
package dom

import (
	"cmp"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/midbel/xpath/xdm"
)

// Node is implemented by every concrete type of the package. It extends
// the engine node contract with the mutators tree assembly relies on.
type Node interface {
	xdm.Node

	setParent(Node)
	setPosition(int)
	path() []int
}

// Ordinals below zero slot namespace and attribute nodes between an
// element and its first child: element, namespaces, attributes,
// children from shortest path prefix to longest.
const (
	nsOrdinal   = -1 << 31
	attrOrdinal = -1 << 30
)

// compareNodes reports document order through ordinal ancestor paths.
// Nodes that do not share a root have no defined order.
func compareNodes(n Node, other xdm.Node) (int, error) {
	m, ok := other.(Node)
	if !ok || xdm.Root(n) != xdm.Root(m) {
		return 0, xdm.NewError(xdm.CodeUserError, "nodes do not share a tree, document order is undefined")
	}
	var (
		p1 = n.path()
		p2 = m.path()
	)
	for i := 0; i < len(p1) && i < len(p2); i++ {
		if p1[i] != p2[i] {
			return cmp.Compare(p1[i], p2[i]), nil
		}
	}
	return cmp.Compare(len(p1), len(p2)), nil
}

// nodeIdentity renders a process wide identity token. The root pointer
// keeps nodes of distinct trees apart even when their ordinal paths
// coincide.
func nodeIdentity(n Node) string {
	var list []string
	for _, p := range n.path() {
		list = append(list, strconv.Itoa(p))
	}
	return fmt.Sprintf("%s(%p)[%s]", n.Kind(), xdm.Root(n), strings.Join(list, "/"))
}

func pathOf(n Node, pos int) []int {
	if n == nil {
		return []int{pos}
	}
	return append(n.path(), pos)
}

func textContent(n Node, str *strings.Builder) {
	switch n := n.(type) {
	case *Document:
		for i := range n.Nodes {
			textContent(n.Nodes[i], str)
		}
	case *Element:
		for i := range n.Nodes {
			textContent(n.Nodes[i], str)
		}
	case *Text:
		str.WriteString(n.Content)
	}
}

func wrapNodes[N Node](list []N) []xdm.Node {
	if len(list) == 0 {
		return nil
	}
	nodes := make([]xdm.Node, len(list))
	for i := range list {
		nodes[i] = list[i]
	}
	return nodes
}

// Elem builds an element inline. The name may carry a prefix and
// attribute nodes among the children are routed to the attribute list.
func Elem(name string, nodes ...Node) *Element {
	el := NewElement(splitName(name))
	for _, n := range nodes {
		el.Append(n)
	}
	return el
}

// Attr builds a detached attribute node, ready to hand to Elem.
func Attr(name, value string) *Attribute {
	return NewAttribute(splitName(name), value)
}

func splitName(name string) xdm.QName {
	space, local, ok := strings.Cut(name, ":")
	if !ok {
		return xdm.LocalName(name)
	}
	return xdm.QualifiedName(local, space)
}

type Document struct {
	Version  string
	Encoding string
	Uri      string

	Nodes []Node
}

func NewDocument() *Document {
	return &Document{
		Version:  SupportedVersion,
		Encoding: SupportedEncoding,
	}
}

// Root returns the document element when one is attached.
func (d *Document) Root() Node {
	for i := range d.Nodes {
		if _, ok := d.Nodes[i].(*Element); ok {
			return d.Nodes[i]
		}
	}
	return nil
}

func (d *Document) Append(node Node) {
	node.setParent(d)
	node.setPosition(len(d.Nodes))
	d.Nodes = append(d.Nodes, node)
}

func (_ *Document) Kind() xdm.NodeKind {
	return xdm.KindDocument
}

func (_ *Document) Name() xdm.QName {
	var zero xdm.QName
	return zero
}

func (d *Document) Value() string {
	var str strings.Builder
	textContent(d, &str)
	return str.String()
}

func (d *Document) TypedValue() xdm.Value {
	return xdm.Untyped(d.Value())
}

func (_ *Document) Parent() xdm.Node {
	return nil
}

func (d *Document) Children() []xdm.Node {
	return wrapNodes(d.Nodes)
}

func (_ *Document) Attributes() []xdm.Node {
	return nil
}

func (_ *Document) Namespaces() []xdm.Node {
	return nil
}

func (d *Document) Identity() string {
	return nodeIdentity(d)
}

func (d *Document) Compare(other xdm.Node) (int, error) {
	return compareNodes(d, other)
}

func (d *Document) BaseURI() string {
	return d.Uri
}

func (d *Document) DocumentURI() string {
	return d.Uri
}

func (_ *Document) path() []int {
	return nil
}

func (_ *Document) setParent(_ Node) {}

func (_ *Document) setPosition(_ int) {}

type Element struct {
	QName xdm.QName
	Attrs []*Attribute
	Nodes []Node

	parent   Node
	position int
}

func NewElement(name xdm.QName) *Element {
	return &Element{
		QName: name,
	}
}

// Append attaches node as the last child. Attribute nodes are routed to
// the attribute list instead.
func (e *Element) Append(node Node) {
	if a, ok := node.(*Attribute); ok {
		e.SetAttribute(a)
		return
	}
	node.setParent(e)
	node.setPosition(len(e.Nodes))
	e.Nodes = append(e.Nodes, node)
}

// SetAttribute adds attr, replacing any attribute carrying the same
// expanded name.
func (e *Element) SetAttribute(attr *Attribute) {
	attr.setParent(e)
	for i := range e.Attrs {
		if e.Attrs[i].QName.Expanded() == attr.QName.Expanded() {
			attr.setPosition(i)
			e.Attrs[i] = attr
			return
		}
	}
	attr.setPosition(len(e.Attrs))
	e.Attrs = append(e.Attrs, attr)
}

// GetAttribute returns the value of the named attribute and whether it
// is present.
func (e *Element) GetAttribute(name xdm.ExpandedName) (string, bool) {
	for i := range e.Attrs {
		if e.Attrs[i].QName.Expanded() == name {
			return e.Attrs[i].Datum, true
		}
	}
	return "", false
}

func (_ *Element) Kind() xdm.NodeKind {
	return xdm.KindElement
}

func (e *Element) Name() xdm.QName {
	return e.QName
}

func (e *Element) Value() string {
	var str strings.Builder
	textContent(e, &str)
	return str.String()
}

func (e *Element) TypedValue() xdm.Value {
	return xdm.Untyped(e.Value())
}

func (e *Element) Parent() xdm.Node {
	return e.parent
}

func (e *Element) Children() []xdm.Node {
	return wrapNodes(e.Nodes)
}

// Attributes lists ordinary attributes; namespace declarations are kept
// apart and surface through Namespaces.
func (e *Element) Attributes() []xdm.Node {
	var nodes []xdm.Node
	for i := range e.Attrs {
		if _, ok := e.Attrs[i].declares(); ok {
			continue
		}
		nodes = append(nodes, e.Attrs[i])
	}
	return nodes
}

// Namespaces materializes the in scope bindings of the element: every
// declaration on the element or an ancestor, nearest one winning, plus
// the implicit xml prefix. Prefixes undeclared with an empty uri are
// dropped.
func (e *Element) Namespaces() []xdm.Node {
	scope := make(map[string]string)
	for el := e; el != nil; {
		for _, a := range el.Attrs {
			prefix, ok := a.declares()
			if !ok {
				continue
			}
			if _, done := scope[prefix]; !done {
				scope[prefix] = a.Datum
			}
		}
		next, _ := el.parent.(*Element)
		el = next
	}
	if _, done := scope["xml"]; !done {
		scope["xml"] = xdm.XmlSpace
	}
	var prefixes []string
	for prefix, uri := range scope {
		if uri == "" {
			continue
		}
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	var nodes []xdm.Node
	for i, prefix := range prefixes {
		ns := Namespace{
			Prefix:   prefix,
			Uri:      scope[prefix],
			parent:   e,
			position: i,
		}
		nodes = append(nodes, &ns)
	}
	return nodes
}

func (e *Element) Identity() string {
	return nodeIdentity(e)
}

func (e *Element) Compare(other xdm.Node) (int, error) {
	return compareNodes(e, other)
}

// BaseURI reports the xml:base attribute of the element when present.
func (e *Element) BaseURI() string {
	uri, _ := e.GetAttribute(xdm.Expand(xdm.XmlSpace, "base"))
	return uri
}

func (e *Element) path() []int {
	return pathOf(e.parent, e.position)
}

func (e *Element) setParent(node Node) {
	e.parent = node
}

func (e *Element) setPosition(pos int) {
	e.position = pos
}

type Attribute struct {
	QName xdm.QName
	Datum string

	parent   Node
	position int
}

func NewAttribute(name xdm.QName, value string) *Attribute {
	return &Attribute{
		QName: name,
		Datum: value,
	}
}

// declares reports the prefix bound when the attribute is a namespace
// declaration.
func (a *Attribute) declares() (string, bool) {
	if a.QName.Space == "" && a.QName.Name == "xmlns" {
		return "", true
	}
	if a.QName.Space == "xmlns" {
		return a.QName.Name, true
	}
	return "", false
}

func (_ *Attribute) Kind() xdm.NodeKind {
	return xdm.KindAttribute
}

func (a *Attribute) Name() xdm.QName {
	return a.QName
}

func (a *Attribute) Value() string {
	return a.Datum
}

func (a *Attribute) TypedValue() xdm.Value {
	return xdm.Untyped(a.Datum)
}

func (a *Attribute) Parent() xdm.Node {
	return a.parent
}

func (_ *Attribute) Children() []xdm.Node {
	return nil
}

func (_ *Attribute) Attributes() []xdm.Node {
	return nil
}

func (_ *Attribute) Namespaces() []xdm.Node {
	return nil
}

func (a *Attribute) Identity() string {
	return nodeIdentity(a)
}

func (a *Attribute) Compare(other xdm.Node) (int, error) {
	return compareNodes(a, other)
}

func (a *Attribute) path() []int {
	return pathOf(a.parent, attrOrdinal+a.position)
}

func (a *Attribute) setParent(node Node) {
	a.parent = node
}

func (a *Attribute) setPosition(pos int) {
	a.position = pos
}

type Text struct {
	Content string
	// Raw marks character data sections; the writer emits them verbatim.
	Raw bool

	parent   Node
	position int
}

func NewText(content string) *Text {
	return &Text{
		Content: content,
	}
}

func (_ *Text) Kind() xdm.NodeKind {
	return xdm.KindText
}

func (_ *Text) Name() xdm.QName {
	var zero xdm.QName
	return zero
}

func (t *Text) Value() string {
	return t.Content
}

func (t *Text) TypedValue() xdm.Value {
	return xdm.Untyped(t.Content)
}

func (t *Text) Parent() xdm.Node {
	return t.parent
}

func (_ *Text) Children() []xdm.Node {
	return nil
}

func (_ *Text) Attributes() []xdm.Node {
	return nil
}

func (_ *Text) Namespaces() []xdm.Node {
	return nil
}

func (t *Text) Identity() string {
	return nodeIdentity(t)
}

func (t *Text) Compare(other xdm.Node) (int, error) {
	return compareNodes(t, other)
}

func (t *Text) path() []int {
	return pathOf(t.parent, t.position)
}

func (t *Text) setParent(node Node) {
	t.parent = node
}

func (t *Text) setPosition(pos int) {
	t.position = pos
}

type Comment struct {
	Content string

	parent   Node
	position int
}

func NewComment(content string) *Comment {
	return &Comment{
		Content: content,
	}
}

func (_ *Comment) Kind() xdm.NodeKind {
	return xdm.KindComment
}

func (_ *Comment) Name() xdm.QName {
	var zero xdm.QName
	return zero
}

func (c *Comment) Value() string {
	return c.Content
}

func (c *Comment) TypedValue() xdm.Value {
	return xdm.String(c.Content)
}

func (c *Comment) Parent() xdm.Node {
	return c.parent
}

func (_ *Comment) Children() []xdm.Node {
	return nil
}

func (_ *Comment) Attributes() []xdm.Node {
	return nil
}

func (_ *Comment) Namespaces() []xdm.Node {
	return nil
}

func (c *Comment) Identity() string {
	return nodeIdentity(c)
}

func (c *Comment) Compare(other xdm.Node) (int, error) {
	return compareNodes(c, other)
}

func (c *Comment) path() []int {
	return pathOf(c.parent, c.position)
}

func (c *Comment) setParent(node Node) {
	c.parent = node
}

func (c *Comment) setPosition(pos int) {
	c.position = pos
}

type Instruction struct {
	Target string
	Attrs  []*Attribute

	parent   Node
	position int
}

func NewInstruction(target string) *Instruction {
	return &Instruction{
		Target: target,
	}
}

func (i *Instruction) SetAttribute(attr *Attribute) {
	attr.setParent(i)
	attr.setPosition(len(i.Attrs))
	i.Attrs = append(i.Attrs, attr)
}

func (_ *Instruction) Kind() xdm.NodeKind {
	return xdm.KindInstruction
}

func (i *Instruction) Name() xdm.QName {
	return xdm.LocalName(i.Target)
}

// Value joins the pseudo attributes of the instruction back into the
// content they were read from.
func (i *Instruction) Value() string {
	var list []string
	for _, a := range i.Attrs {
		list = append(list, fmt.Sprintf("%s=%q", a.QName.QualifiedName(), a.Datum))
	}
	return strings.Join(list, " ")
}

func (i *Instruction) TypedValue() xdm.Value {
	return xdm.String(i.Value())
}

func (i *Instruction) Parent() xdm.Node {
	return i.parent
}

func (_ *Instruction) Children() []xdm.Node {
	return nil
}

func (_ *Instruction) Attributes() []xdm.Node {
	return nil
}

func (_ *Instruction) Namespaces() []xdm.Node {
	return nil
}

func (i *Instruction) Identity() string {
	return nodeIdentity(i)
}

func (i *Instruction) Compare(other xdm.Node) (int, error) {
	return compareNodes(i, other)
}

func (i *Instruction) path() []int {
	return pathOf(i.parent, i.position)
}

func (i *Instruction) setParent(node Node) {
	i.parent = node
}

func (i *Instruction) setPosition(pos int) {
	i.position = pos
}

// Namespace nodes are materialized on demand by Element.Namespaces;
// their identity follows the owning element and the prefix rank.
type Namespace struct {
	Prefix string
	Uri    string

	parent   Node
	position int
}

func (_ *Namespace) Kind() xdm.NodeKind {
	return xdm.KindNamespace
}

func (n *Namespace) Name() xdm.QName {
	return xdm.LocalName(n.Prefix)
}

func (n *Namespace) Value() string {
	return n.Uri
}

func (n *Namespace) TypedValue() xdm.Value {
	return xdm.String(n.Uri)
}

func (n *Namespace) Parent() xdm.Node {
	return n.parent
}

func (_ *Namespace) Children() []xdm.Node {
	return nil
}

func (_ *Namespace) Attributes() []xdm.Node {
	return nil
}

func (_ *Namespace) Namespaces() []xdm.Node {
	return nil
}

func (n *Namespace) Identity() string {
	return nodeIdentity(n)
}

func (n *Namespace) Compare(other xdm.Node) (int, error) {
	return compareNodes(n, other)
}

func (n *Namespace) path() []int {
	return pathOf(n.parent, nsOrdinal+n.position)
}

func (n *Namespace) setParent(node Node) {
	n.parent = node
}

func (n *Namespace) setPosition(pos int) {
	n.position = pos
}
