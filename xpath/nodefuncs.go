package xpath

import (
	"net/url"
	"sort"
	"strings"

	"github.com/midbel/xpath/xdm"
)

// Optional capabilities a node provider may implement; the document
// functions consult them and fall back to the empty sequence.
type baseURIer interface {
	BaseURI() string
}

type documentURIer interface {
	DocumentURI() string
}

func registerNodeFuncs(b builder) {
	b.add("name", callName)
	b.add("name", callName, pNodeOpt)
	b.add("local-name", callLocalName)
	b.add("local-name", callLocalName, pNodeOpt)
	b.add("namespace-uri", callNamespaceURI)
	b.add("namespace-uri", callNamespaceURI, pNodeOpt)
	b.add("node-name", callNodeName, pNodeOpt)
	b.add("root", callRoot)
	b.add("root", callRoot, pNodeOpt)
	b.add("base-uri", callBaseURI)
	b.add("base-uri", callBaseURI, pNodeOpt)
	b.add("document-uri", callDocumentURI, pNodeOpt)
	b.add("lang", callLang, pvOpt(xdm.TypeString))
	b.add("lang", callLang, pvOpt(xdm.TypeString), pNode)
	b.add("resolve-QName", callResolveQName, pvOpt(xdm.TypeString), pNode)
	b.add("QName", callQName, pvOpt(xdm.TypeString), pv(xdm.TypeString))
	b.add("prefix-from-QName", callPrefixFromQName, pvOpt(xdm.TypeQName))
	b.add("local-name-from-QName", callLocalNameFromQName, pvOpt(xdm.TypeQName))
	b.add("namespace-uri-from-QName", callNamespaceURIFromQName, pvOpt(xdm.TypeQName))
	b.add("namespace-uri-for-prefix", callNamespaceURIForPrefix, pvOpt(xdm.TypeString), pNode)
	b.add("in-scope-prefixes", callInScopePrefixes, pNode)
	b.add("doc", callDoc, pvOpt(xdm.TypeString))
	b.add("doc-available", callDocAvailable, pvOpt(xdm.TypeString))
	b.add("collection", callCollection)
	b.add("collection", callCollection, pvOpt(xdm.TypeString))
}

// nodeArg returns the node the function works on: the converted first
// argument, or the context node for the zero argument forms.
func nodeArg(call *callCtx, args []cursor) (xdm.Node, bool, error) {
	if len(args) == 0 {
		node, err := call.focusNode()
		if err != nil {
			return nil, false, err
		}
		return node, true, nil
	}
	return argNode(args[0])
}

func callName(call *callCtx, args []cursor) (cursor, error) {
	node, ok, err := nodeArg(call, args)
	if err != nil {
		return nil, err
	}
	var name string
	if ok {
		name = node.Name().QualifiedName()
	}
	return only(xdm.NewAtomicItem(xdm.String(name))), nil
}

func callLocalName(call *callCtx, args []cursor) (cursor, error) {
	node, ok, err := nodeArg(call, args)
	if err != nil {
		return nil, err
	}
	var name string
	if ok {
		name = node.Name().LocalName()
	}
	return only(xdm.NewAtomicItem(xdm.String(name))), nil
}

func callNamespaceURI(call *callCtx, args []cursor) (cursor, error) {
	node, ok, err := nodeArg(call, args)
	if err != nil {
		return nil, err
	}
	var uri string
	if ok {
		uri = node.Name().Uri
	}
	return only(xdm.NewAtomicItem(xdm.AnyURI(uri))), nil
}

func callNodeName(call *callCtx, args []cursor) (cursor, error) {
	node, ok, err := argNode(args[0])
	if err != nil || !ok {
		return emptyCursor{}, err
	}
	name := node.Name()
	if name.Zero() {
		return emptyCursor{}, nil
	}
	return only(xdm.NewAtomicItem(name)), nil
}

func callRoot(call *callCtx, args []cursor) (cursor, error) {
	node, ok, err := nodeArg(call, args)
	if err != nil || !ok {
		return emptyCursor{}, err
	}
	return only(xdm.NewNodeItem(xdm.Root(node))), nil
}

func callBaseURI(call *callCtx, args []cursor) (cursor, error) {
	node, ok, err := nodeArg(call, args)
	if err != nil || !ok {
		return emptyCursor{}, err
	}
	for n := node; n != nil; n = n.Parent() {
		if b, ok := n.(baseURIer); ok {
			if uri := b.BaseURI(); uri != "" {
				return only(xdm.NewAtomicItem(xdm.AnyURI(uri))), nil
			}
		}
	}
	return emptyCursor{}, nil
}

func callDocumentURI(call *callCtx, args []cursor) (cursor, error) {
	node, ok, err := argNode(args[0])
	if err != nil || !ok {
		return emptyCursor{}, err
	}
	if node.Kind() != xdm.KindDocument {
		return emptyCursor{}, nil
	}
	if d, ok := node.(documentURIer); ok {
		if uri := d.DocumentURI(); uri != "" {
			return only(xdm.NewAtomicItem(xdm.AnyURI(uri))), nil
		}
	}
	return emptyCursor{}, nil
}

func callLang(call *callCtx, args []cursor) (cursor, error) {
	want, err := argString(args[0])
	if err != nil {
		return nil, err
	}
	var node xdm.Node
	if len(args) == 2 {
		n, ok, err := argNode(args[1])
		if err != nil {
			return nil, err
		}
		if !ok {
			return emptyCursor{}, nil
		}
		node = n
	} else {
		node, err = call.focusNode()
		if err != nil {
			return nil, err
		}
	}
	return only(boolItem(langMatches(nearestLang(node), want))), nil
}

func nearestLang(node xdm.Node) string {
	for n := node; n != nil; n = n.Parent() {
		for _, a := range n.Attributes() {
			q := a.Name()
			if q.Name == "lang" && q.Uri == xdm.XmlSpace {
				return a.Value()
			}
		}
	}
	return ""
}

// langMatches follows the language range rule: exact match or a prefix
// followed by a subtag separator, case blind.
func langMatches(have, want string) bool {
	if have == "" {
		return false
	}
	have = strings.ToLower(have)
	want = strings.ToLower(want)
	return have == want || strings.HasPrefix(have, want+"-")
}

// inScope collects the namespace bindings visible on a node, nearest
// declaration first, with the fixed xml binding always present.
func inScope(node xdm.Node) map[string]string {
	scope := map[string]string{
		"xml": xdm.XmlSpace,
	}
	for n := node; n != nil; n = n.Parent() {
		for _, ns := range n.Namespaces() {
			prefix := ns.Name().Name
			if _, ok := scope[prefix]; !ok {
				scope[prefix] = ns.Value()
			}
		}
	}
	return scope
}

func callResolveQName(call *callCtx, args []cursor) (cursor, error) {
	val, ok, err := argValue(args[0])
	if err != nil || !ok {
		return emptyCursor{}, err
	}
	node, _, err := argNode(args[1])
	if err != nil {
		return nil, err
	}
	scope := inScope(node)
	name, err := xdm.ParseName(val.String(), func(prefix string) (string, bool) {
		uri, ok := scope[prefix]
		return uri, ok
	})
	if err != nil {
		if xdm.CodeOf(err) == xdm.CodeUnknownPrefix {
			return nil, xdm.Errorf(xdm.CodeNoNamespace, "no namespace found for prefix in %q", val.String())
		}
		return nil, err
	}
	if q, isName := name.(xdm.QName); isName && q.Space == "" && q.Uri == "" {
		if uri, ok := scope[""]; ok {
			q.Uri = uri
			name = q
		}
	}
	return only(xdm.NewAtomicItem(name)), nil
}

func callQName(call *callCtx, args []cursor) (cursor, error) {
	var uri string
	if val, ok, err := argValue(args[0]); err != nil {
		return nil, err
	} else if ok {
		uri = val.String()
	}
	str, err := argString(args[1])
	if err != nil {
		return nil, err
	}
	name, err := xdm.ParseName(str, func(string) (string, bool) {
		return uri, true
	})
	if err != nil {
		return nil, xdm.Errorf(xdm.CodeCastUndefined, "%q is not a valid QName", str)
	}
	q, isName := name.(xdm.QName)
	if !isName {
		return nil, xdm.Errorf(xdm.CodeCastUndefined, "%q is not a valid QName", str)
	}
	if q.Space != "" && uri == "" {
		return nil, xdm.Errorf(xdm.CodeCastUndefined, "prefix %q needs a namespace", q.Space)
	}
	q.Uri = uri
	return only(xdm.NewAtomicItem(q)), nil
}

func qnameArg(c cursor) (xdm.QName, bool, error) {
	val, ok, err := argValue(c)
	if err != nil || !ok {
		return xdm.QName{}, ok, err
	}
	q, isName := val.(xdm.QName)
	if !isName {
		return xdm.QName{}, false, xdm.Errorf(xdm.CodeType, "expected a QName, got %s", val.Type())
	}
	return q, true, nil
}

func callPrefixFromQName(call *callCtx, args []cursor) (cursor, error) {
	q, ok, err := qnameArg(args[0])
	if err != nil || !ok || q.Space == "" {
		return emptyCursor{}, err
	}
	return only(xdm.NewAtomicItem(xdm.String(q.Space))), nil
}

func callLocalNameFromQName(call *callCtx, args []cursor) (cursor, error) {
	q, ok, err := qnameArg(args[0])
	if err != nil || !ok {
		return emptyCursor{}, err
	}
	return only(xdm.NewAtomicItem(xdm.String(q.Name))), nil
}

func callNamespaceURIFromQName(call *callCtx, args []cursor) (cursor, error) {
	q, ok, err := qnameArg(args[0])
	if err != nil || !ok {
		return emptyCursor{}, err
	}
	return only(xdm.NewAtomicItem(xdm.AnyURI(q.Uri))), nil
}

func callNamespaceURIForPrefix(call *callCtx, args []cursor) (cursor, error) {
	var prefix string
	if val, ok, err := argValue(args[0]); err != nil {
		return nil, err
	} else if ok {
		prefix = val.String()
	}
	node, _, err := argNode(args[1])
	if err != nil {
		return nil, err
	}
	uri, ok := inScope(node)[prefix]
	if !ok {
		return emptyCursor{}, nil
	}
	return only(xdm.NewAtomicItem(xdm.AnyURI(uri))), nil
}

func callInScopePrefixes(call *callCtx, args []cursor) (cursor, error) {
	node, _, err := argNode(args[0])
	if err != nil {
		return nil, err
	}
	scope := inScope(node)
	prefixes := make([]string, 0, len(scope))
	for p := range scope {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	out := xdm.NewSequence()
	for _, p := range prefixes {
		out.Append(xdm.NewAtomicItem(xdm.String(p)))
	}
	return fromSeq(out), nil
}

func callDoc(call *callCtx, args []cursor) (cursor, error) {
	val, ok, err := argValue(args[0])
	if err != nil || !ok {
		return emptyCursor{}, err
	}
	node, err := fetchDocument(call, val.String())
	if err != nil {
		return nil, err
	}
	return only(xdm.NewNodeItem(node)), nil
}

func callDocAvailable(call *callCtx, args []cursor) (cursor, error) {
	val, ok, err := argValue(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return only(boolItem(false)), nil
	}
	_, err = fetchDocument(call, val.String())
	return only(boolItem(err == nil)), nil
}

func callCollection(call *callCtx, args []cursor) (cursor, error) {
	if len(args) == 0 {
		return nil, xdm.NewError(xdm.CodeBadResource, "no default collection is defined")
	}
	val, ok, err := argValue(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, xdm.NewError(xdm.CodeBadResource, "no default collection is defined")
	}
	node, err := fetchDocument(call, val.String())
	if err != nil {
		return nil, xdm.Errorf(xdm.CodeBadResource, "collection %s can not be retrieved", val)
	}
	return only(xdm.NewNodeItem(node)), nil
}

// fetchDocument retrieves one document through the resolver configured
// on the dynamic context.
func fetchDocument(call *callCtx, uri string) (xdm.Node, error) {
	if _, err := url.Parse(uri); err != nil {
		return nil, xdm.Errorf(xdm.CodeBadResourceURI, "%q is not a valid document uri", uri)
	}
	resolve := call.dynamic().resolve
	if resolve == nil {
		return nil, xdm.Errorf(xdm.CodeNoDocument, "%s: no document resolver is configured", uri)
	}
	node, err := resolve(uri)
	if err != nil {
		return nil, xdm.Wrap(xdm.CodeNoDocument, err)
	}
	if node == nil {
		return nil, xdm.Errorf(xdm.CodeNoDocument, "%s can not be retrieved", uri)
	}
	return node, nil
}
