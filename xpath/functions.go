package xpath

import (
	"io"
	"sort"
	"sync"

	"github.com/midbel/xpath/xdm"
)

// param declares one parameter of a function signature. A set typ runs
// the argument conversion pipeline towards that atomic type, node
// restricts the argument to nodes, occ bounds the cardinality.
type param struct {
	typ  *xdm.Type
	node bool
	occ  rune
}

// Shorthands used by the builtin tables.
func pv(typ *xdm.Type) param     { return param{typ: typ, occ: occOne} }
func pvOpt(typ *xdm.Type) param  { return param{typ: typ, occ: occOpt} }
func pvStar(typ *xdm.Type) param { return param{typ: typ, occ: occStar} }

var (
	pItem    = param{occ: occOne}
	pItemOpt = param{occ: occOpt}
	pItems   = param{occ: occStar}
	pNode    = param{node: true, occ: occOne}
	pNodeOpt = param{node: true, occ: occOpt}
)

// callable runs one resolved function over its converted arguments and
// returns the result as a cursor.
type callable func(call *callCtx, args []cursor) (cursor, error)

type overload struct {
	params   []param
	variadic bool
	impl     callable
}

// param returns the declaration governing argument i; a variadic
// signature repeats its last parameter.
func (o *overload) param(i int) param {
	if i >= len(o.params) {
		if o.variadic && len(o.params) > 0 {
			return o.params[len(o.params)-1]
		}
		return pItems
	}
	return o.params[i]
}

// Function is the public extension signature: implementations receive
// the evaluation context and their fully evaluated arguments.
type Function func(ctx *DynamicContext, args []xdm.Sequence) (xdm.Sequence, error)

// Registry holds function signatures keyed by expanded name. The
// version counter feeds the static fingerprint so compiled expressions
// never outlive a registration.
type Registry struct {
	mu    sync.Mutex
	known map[xdm.ExpandedName][]*overload
	vers  int
}

// NewRegistry returns a registry preloaded with the builtin library.
func NewRegistry() *Registry {
	reg := Registry{
		known: make(map[xdm.ExpandedName][]*overload),
	}
	registerBuiltins(&reg)
	return &reg
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// DefaultRegistry returns the registry shared by every static context
// built without WithFunctions.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
	})
	return defaultReg
}

// Register makes fn callable as uri:local with the given number of
// arguments. Arguments arrive unconverted, as item()* each.
func (r *Registry) Register(uri, local string, arity int, fn Function) {
	params := make([]param, arity)
	for i := range params {
		params[i] = pItems
	}
	impl := func(call *callCtx, args []cursor) (cursor, error) {
		seqs := make([]xdm.Sequence, len(args))
		for i := range args {
			seq, err := drain(args[i], call.frame.ctx)
			if err != nil {
				return nil, err
			}
			seqs[i] = seq
		}
		res, err := fn(call.frame.ctx, seqs)
		if err != nil {
			return nil, err
		}
		return fromSeq(res), nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(xdm.Expand(uri, local), overload{params: params, impl: impl})
}

func (r *Registry) put(name xdm.ExpandedName, o overload) {
	r.known[name] = append(r.known[name], &o)
	r.vers++
}

// resolve returns the overload registered for name with the given
// arity, or nil.
func (r *Registry) resolve(name xdm.ExpandedName, argc int) *overload {
	r.mu.Lock()
	defer r.mu.Unlock()
	var variadic *overload
	for _, o := range r.known[name] {
		if !o.variadic && len(o.params) == argc {
			return o
		}
		if o.variadic && argc >= len(o.params) {
			variadic = o
		}
	}
	return variadic
}

// names lists the local names known to the registry, for suggestions in
// resolution errors.
func (r *Registry) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	for name := range r.known {
		seen[name.Name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) version() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vers
}

// builder collects the builtin registrations.
type builder struct {
	reg *Registry
}

func (b builder) add(name string, impl callable, params ...param) {
	b.reg.put(xdm.Expand(xdm.FuncSpace, name), overload{params: params, impl: impl})
}

func (b builder) variadic(name string, impl callable, params ...param) {
	b.reg.put(xdm.Expand(xdm.FuncSpace, name), overload{params: params, impl: impl, variadic: true})
}

// callCtx carries the evaluation state a builtin may consult.
type callCtx struct {
	frame *frame
	name  xdm.ExpandedName
}

func (c *callCtx) dynamic() *DynamicContext {
	return c.frame.ctx
}

// focusItem returns the context item, failing with the absent context
// error for the zero argument forms that need one.
func (c *callCtx) focusItem() (xdm.Item, error) {
	if c.frame.focus == nil {
		return nil, xdm.Errorf(xdm.CodeNoContext, "%s: context item is absent", c.name.Name)
	}
	return c.frame.focus.item, nil
}

func (c *callCtx) focusNode() (xdm.Node, error) {
	it, err := c.focusItem()
	if err != nil {
		return nil, err
	}
	if it.Atomic() {
		return nil, xdm.Errorf(xdm.CodeType, "%s: context item is not a node", c.name.Name)
	}
	return it.Node(), nil
}

// collationArg resolves the collation a string function works under:
// the URI given as argument ix when present, the default collation
// otherwise.
func (c *callCtx) collationArg(args []cursor, ix int) (*Collation, error) {
	if ix >= len(args) {
		if c.frame.coll != nil {
			return c.frame.coll, nil
		}
		return c.frame.env.collations.Lookup(CollationCodepoint)
	}
	uri, ok, err := argValue(args[ix])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, xdm.Errorf(xdm.CodeUnknownCollation, "%s: collation can not be empty", c.name.Name)
	}
	return c.frame.env.collations.Lookup(uri.String())
}

// newCall wires the conversion pipeline around the argument cursors and
// hands them to the implementation.
func newCall(fn *overload, name xdm.ExpandedName, args []cursor, f *frame) cursor {
	return deferred(func() (cursor, error) {
		call := callCtx{
			frame: f,
			name:  name,
		}
		conv := make([]cursor, len(args))
		for i := range args {
			conv[i] = convertArg(args[i], fn.param(i), name)
		}
		return fn.impl(&call, conv)
	})
}

// convCursor applies the function conversion rules item by item:
// untyped values are cast to the expected type, numeric and anyURI
// values promote, everything else must already be an instance.
// Cardinality violations surface on the pull that exceeds the bound.
type convCursor struct {
	src  cursor
	p    param
	name xdm.ExpandedName
	seen int
}

func convertArg(c cursor, p param, name xdm.ExpandedName) cursor {
	if !p.node && p.typ == nil && p.occ == occStar {
		return c
	}
	return &convCursor{src: c, p: p, name: name}
}

func (c *convCursor) next() (xdm.Item, error) {
	it, err := c.src.next()
	if err == io.EOF {
		if c.seen == 0 && (c.p.occ == occOne || c.p.occ == occPlus) {
			return nil, c.mismatch("an empty sequence")
		}
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	c.seen++
	if c.seen > 1 && (c.p.occ == occOne || c.p.occ == occOpt) {
		return nil, c.mismatch("a longer sequence")
	}
	if c.p.node {
		if it.Atomic() {
			return nil, c.mismatch(it.Value().Type().String())
		}
		return it, nil
	}
	if c.p.typ == nil {
		return it, nil
	}
	val, err := convertValue(it.Value(), c.p.typ)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, c.mismatch(it.Value().Type().String())
	}
	return xdm.NewAtomicItem(val), nil
}

func (c *convCursor) mismatch(got string) error {
	return xdm.Errorf(xdm.CodeType, "%s does not accept %s here", c.name.Name, got)
}

func (c *convCursor) clone() cursor {
	return &convCursor{src: c.src.clone(), p: c.p, name: c.name}
}

// convertValue runs the atomic leg of the conversion pipeline. A nil
// value without error means the type can not be accepted.
func convertValue(val xdm.Value, typ *xdm.Type) (xdm.Value, error) {
	if _, ok := val.(xdm.Untyped); ok && typ != xdm.TypeAnyAtomic && typ != xdm.TypeUntyped {
		return xdm.Cast(val, typ)
	}
	if val.Type().InstanceOf(typ) {
		return val, nil
	}
	if pro, ok := promote(val, typ); ok {
		return pro, nil
	}
	return nil, nil
}

// promote applies the numeric promotion ladder and the anyURI to string
// promotion. Demotions never happen here.
func promote(val xdm.Value, typ *xdm.Type) (xdm.Value, bool) {
	switch typ {
	case xdm.TypeDouble:
		switch v := val.(type) {
		case xdm.Integer:
			return xdm.Double(v), true
		case xdm.Decimal:
			return xdm.Double(v), true
		case xdm.Float:
			return xdm.Double(v), true
		}
	case xdm.TypeFloat:
		switch v := val.(type) {
		case xdm.Integer:
			return xdm.Float(v), true
		case xdm.Decimal:
			return xdm.Float(v), true
		}
	case xdm.TypeString:
		if v, ok := val.(xdm.AnyURI); ok {
			return xdm.String(v), true
		}
	}
	return nil, false
}

// argValue pulls an optional singleton argument, verifying nothing
// follows it.
func argValue(c cursor) (xdm.Value, bool, error) {
	it, ok, err := argItem(c)
	if err != nil || !ok {
		return nil, false, err
	}
	return it.Value(), true, nil
}

func argItem(c cursor) (xdm.Item, bool, error) {
	it, err := c.next()
	if err == io.EOF {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if _, err := c.next(); err != nil && err != io.EOF {
		return nil, false, err
	}
	return it, true, nil
}

// argString reads an optional string argument, mapping empty input onto
// the zero string.
func argString(c cursor) (string, error) {
	val, ok, err := argValue(c)
	if err != nil || !ok {
		return "", err
	}
	return val.String(), nil
}

func argInteger(c cursor) (int64, bool, error) {
	val, ok, err := argValue(c)
	if err != nil || !ok {
		return 0, false, err
	}
	n, ok := val.(xdm.Integer)
	if !ok {
		return 0, false, xdm.Errorf(xdm.CodeType, "expected an integer, got %s", val.Type())
	}
	return int64(n), true, nil
}

func argDouble(c cursor) (float64, bool, error) {
	val, ok, err := argValue(c)
	if err != nil || !ok {
		return 0, false, err
	}
	d, ok := val.(xdm.Double)
	if !ok {
		return 0, false, xdm.Errorf(xdm.CodeType, "expected a double, got %s", val.Type())
	}
	return float64(d), true, nil
}

func argNode(c cursor) (xdm.Node, bool, error) {
	it, ok, err := argItem(c)
	if err != nil || !ok {
		return nil, false, err
	}
	return it.Node(), true, nil
}

// registerBuiltins fills reg with the function library.
func registerBuiltins(reg *Registry) {
	b := builder{reg: reg}
	registerNodeFuncs(b)
	registerBooleanFuncs(b)
	registerNumericFuncs(b)
	registerStringFuncs(b)
	registerSequenceFuncs(b)
	registerTemporalFuncs(b)
	registerContextFuncs(b)
}
