package dom

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/midbel/xpath/xdm"
)

type Writer struct {
	writer *bufio.Writer

	Indent   string
	Compact  bool
	NoProlog bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		writer: bufio.NewWriter(w),
		Indent: "  ",
	}
}

// WriteNode renders a single node on one line, without a prolog.
func WriteNode(node Node) string {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Compact = true
	w.NoProlog = true
	if err := w.writeNode(node, 0); err != nil {
		return ""
	}
	w.writer.Flush()
	return buf.String()
}

func (d *Document) Write(w io.Writer) error {
	return NewWriter(w).Write(d)
}

func (d *Document) WriteString() (string, error) {
	var (
		buf bytes.Buffer
		err = d.Write(&buf)
	)
	return buf.String(), err
}

func (w *Writer) Write(doc *Document) error {
	if err := w.writeProlog(doc); err != nil {
		return err
	}
	for _, n := range doc.Nodes {
		if err := w.writeNode(n, 0); err != nil {
			return err
		}
	}
	w.writeNL()
	return w.writer.Flush()
}

func (w *Writer) writeNode(node Node, depth int) error {
	switch node := node.(type) {
	case *Document:
		for _, n := range node.Nodes {
			if err := w.writeNode(n, depth); err != nil {
				return err
			}
		}
		return w.writer.Flush()
	case *Element:
		return w.writeElement(node, depth)
	case *Text:
		return w.writeText(node)
	case *Comment:
		return w.writeComment(node, depth)
	case *Instruction:
		return w.writeInstruction(node, depth)
	case *Attribute:
		return w.writeAttribute(node)
	case *Namespace:
		return w.writeNamespace(node)
	default:
		return fmt.Errorf("node: unknown type (%T)", node)
	}
}

func (w *Writer) writeElement(node *Element, depth int) error {
	w.writeNL()
	prefix := w.getIndent(depth)
	if prefix != "" {
		w.writer.WriteString(prefix)
	}
	w.writer.WriteRune(langle)
	w.writer.WriteString(node.QName.QualifiedName())
	w.writeAttributes(node.Attrs)
	if len(node.Nodes) == 0 {
		w.writer.WriteRune(slash)
		w.writer.WriteRune(rangle)
		return w.writer.Flush()
	}
	w.writer.WriteRune(rangle)
	for _, n := range node.Nodes {
		if err := w.writeNode(n, depth+1); err != nil {
			return err
		}
	}
	if n := len(node.Nodes); n > 0 {
		if _, ok := node.Nodes[n-1].(*Text); !ok {
			w.writeNL()
			w.writer.WriteString(prefix)
		}
	}
	w.writer.WriteRune(langle)
	w.writer.WriteRune(slash)
	w.writer.WriteString(node.QName.QualifiedName())
	w.writer.WriteRune(rangle)
	return w.writer.Flush()
}

func (w *Writer) writeText(node *Text) error {
	if node.Raw {
		w.writer.WriteString("<![CDATA[")
		w.writer.WriteString(node.Content)
		w.writer.WriteString("]]>")
		return nil
	}
	_, err := w.writer.WriteString(escapeText(node.Content))
	return err
}

func (w *Writer) writeComment(node *Comment, depth int) error {
	w.writeNL()
	prefix := w.getIndent(depth)
	w.writer.WriteString(prefix)
	w.writer.WriteString("<!--")
	w.writer.WriteString(node.Content)
	w.writer.WriteString("-->")
	return nil
}

func (w *Writer) writeInstruction(node *Instruction, depth int) error {
	if depth > 0 {
		w.writeNL()
	}
	prefix := w.getIndent(depth)
	if prefix != "" {
		w.writer.WriteString(prefix)
	}
	w.writer.WriteRune(langle)
	w.writer.WriteRune(question)
	w.writer.WriteString(node.Target)
	w.writeAttributes(node.Attrs)
	w.writer.WriteRune(question)
	w.writer.WriteRune(rangle)
	return w.writer.Flush()
}

func (w *Writer) writeAttribute(attr *Attribute) error {
	w.writer.WriteString(attr.QName.QualifiedName())
	w.writer.WriteRune(equal)
	w.writer.WriteRune(quote)
	w.writer.WriteString(escapeText(attr.Datum))
	w.writer.WriteRune(quote)
	return w.writer.Flush()
}

func (w *Writer) writeNamespace(ns *Namespace) error {
	name := "xmlns"
	if ns.Prefix != "" {
		name += ":" + ns.Prefix
	}
	w.writer.WriteString(name)
	w.writer.WriteRune(equal)
	w.writer.WriteRune(quote)
	w.writer.WriteString(escapeText(ns.Uri))
	w.writer.WriteRune(quote)
	return w.writer.Flush()
}

func (w *Writer) writeProlog(doc *Document) error {
	if w.NoProlog {
		return nil
	}
	prolog := NewInstruction("xml")
	prolog.SetAttribute(NewAttribute(xdm.LocalName("version"), doc.Version))
	prolog.SetAttribute(NewAttribute(xdm.LocalName("encoding"), doc.Encoding))
	return w.writeInstruction(prolog, 0)
}

func (w *Writer) writeAttributes(attrs []*Attribute) {
	for _, a := range attrs {
		w.writer.WriteRune(' ')
		w.writer.WriteString(a.QName.QualifiedName())
		w.writer.WriteRune(equal)
		w.writer.WriteRune(quote)
		w.writer.WriteString(escapeText(a.Datum))
		w.writer.WriteRune(quote)
	}
}

func (w *Writer) writeNL() {
	if w.Compact {
		return
	}
	w.writer.WriteRune('\n')
}

func (w *Writer) getIndent(depth int) string {
	if w.Compact {
		return ""
	}
	return strings.Repeat(w.Indent, depth)
}

func escapeText(str string) string {
	var buf bytes.Buffer
	for i := 0; i < len(str); {
		r, z := utf8.DecodeRuneInString(str[i:])
		i += z

		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&apos;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
