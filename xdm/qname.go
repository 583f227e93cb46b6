package xdm

import "fmt"

// Well known namespaces.
const (
	XmlSpace    = "http://www.w3.org/XML/1998/namespace"
	SchemaSpace = "http://www.w3.org/2001/XMLSchema"
	FuncSpace   = "http://www.w3.org/2005/xpath-functions"
)

// QName is a possibly prefixed name. Space holds the lexical prefix and
// Uri the namespace it resolves to; resolution is the compiler's job, a
// parsed name carries only Space and Name.
type QName struct {
	Space string
	Name  string
	Uri   string
}

func QualifiedName(name, space string) QName {
	return QName{
		Name:  name,
		Space: space,
	}
}

func LocalName(name string) QName {
	return QName{
		Name: name,
	}
}

func (q QName) QualifiedName() string {
	if q.Space == "" {
		return q.Name
	}
	return fmt.Sprintf("%s:%s", q.Space, q.Name)
}

func (q QName) LocalName() string {
	return q.Name
}

func (q QName) Zero() bool {
	return q.Name == "" && q.Space == "" && q.Uri == ""
}

func (q QName) Expanded() ExpandedName {
	return ExpandedName{
		Uri:  q.Uri,
		Name: q.Name,
	}
}

// ExpandedName is the prefix free form of a name. It is comparable and
// used as the key of every name keyed table.
type ExpandedName struct {
	Uri  string
	Name string
}

func Expand(uri, name string) ExpandedName {
	return ExpandedName{
		Uri:  uri,
		Name: name,
	}
}

func (e ExpandedName) String() string {
	if e.Uri == "" {
		return e.Name
	}
	return fmt.Sprintf("{%s}%s", e.Uri, e.Name)
}
