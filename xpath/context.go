package xpath

import (
	"fmt"
	"hash/fnv"
	"io"
	"maps"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/midbel/xpath/xdm"
)

// Resolver loads the document named by uri on behalf of fn:doc and
// fn:doc-available. The uri has already been resolved against the static
// base URI when one is set.
type Resolver func(uri string) (xdm.Node, error)

// StaticContext carries everything known before evaluation starts:
// namespace bindings, declared external variables, the function and
// collation registries, the default collation and the base URI. It is
// immutable once built and can back any number of compilations.
type StaticContext struct {
	namespaces map[string]string
	elemSpace  string
	funcSpace  string
	baseURI    string
	collation  string
	variables  []string
	registry   *Registry
	collations *Collations
}

// Option configures a StaticContext under construction.
type Option func(*StaticContext)

// NewStaticContext builds a static context with the xml, xs and fn
// prefixes pre-bound, the default function registry and collation set,
// and the codepoint collation as default.
func NewStaticContext(options ...Option) *StaticContext {
	ctx := StaticContext{
		namespaces: map[string]string{
			"xml": xdm.XmlSpace,
			"xs":  xdm.SchemaSpace,
			"fn":  xdm.FuncSpace,
		},
		funcSpace:  xdm.FuncSpace,
		collation:  CollationCodepoint,
		registry:   DefaultRegistry(),
		collations: DefaultCollations(),
	}
	for _, opt := range options {
		opt(&ctx)
	}
	return &ctx
}

// WithNamespace binds prefix to uri for every expression compiled under
// the context.
func WithNamespace(prefix, uri string) Option {
	return func(ctx *StaticContext) {
		ctx.namespaces[prefix] = uri
	}
}

// WithDefaultNamespace sets the namespace applied to unprefixed element
// name tests. Unprefixed attribute and variable names stay in no
// namespace regardless.
func WithDefaultNamespace(uri string) Option {
	return func(ctx *StaticContext) {
		ctx.elemSpace = uri
	}
}

// WithFunctionNamespace sets the namespace unprefixed function calls
// resolve into.
func WithFunctionNamespace(uri string) Option {
	return func(ctx *StaticContext) {
		ctx.funcSpace = uri
	}
}

// WithBaseURI sets the static base URI reported by fn:static-base-uri.
func WithBaseURI(uri string) Option {
	return func(ctx *StaticContext) {
		ctx.baseURI = uri
	}
}

// WithCollation sets the default collation used by comparisons and by
// the functions that accept an optional collation argument.
func WithCollation(uri string) Option {
	return func(ctx *StaticContext) {
		ctx.collation = uri
	}
}

// WithVariable declares an external variable, optionally prefixed, so
// references to it pass the static check. Its value is supplied per
// evaluation.
func WithVariable(name string) Option {
	return func(ctx *StaticContext) {
		ctx.variables = append(ctx.variables, name)
	}
}

// WithFunctions replaces the function registry.
func WithFunctions(registry *Registry) Option {
	return func(ctx *StaticContext) {
		ctx.registry = registry
	}
}

// WithCollations replaces the collation set.
func WithCollations(set *Collations) Option {
	return func(ctx *StaticContext) {
		ctx.collations = set
	}
}

// LookupNamespace resolves a non empty prefix to its bound URI.
func (c *StaticContext) LookupNamespace(prefix string) (string, bool) {
	uri, ok := c.namespaces[prefix]
	return uri, ok
}

// Declared reports whether name was declared as an external variable.
// Declared names are kept lexical and expanded here so the declaration
// order relative to WithNamespace does not matter.
func (c *StaticContext) Declared(name xdm.ExpandedName) bool {
	for _, v := range c.variables {
		prefix, local := splitName(v)
		var space string
		if prefix != "" {
			space = c.namespaces[prefix]
		}
		if name.Name == local && name.Uri == space {
			return true
		}
	}
	return false
}

// Functions returns the registry expressions compiled under the context
// resolve their calls in.
func (c *StaticContext) Functions() *Registry {
	return c.registry
}

// Collations returns the collation set evaluations resolve collation
// URIs in.
func (c *StaticContext) Collations() *Collations {
	return c.collations
}

// BaseURI returns the static base URI, empty when unset.
func (c *StaticContext) BaseURI() string {
	return c.baseURI
}

// DefaultCollation returns the URI of the default collation.
func (c *StaticContext) DefaultCollation() string {
	return c.collation
}

// fingerprint folds the query and every static component that influences
// compilation into a stable key, so cached executables are never reused
// across incompatible contexts.
func (c *StaticContext) fingerprint(query string) uint64 {
	sum := fnv.New64a()
	io.WriteString(sum, query)
	sum.Write([]byte{0})
	for _, prefix := range slices.Sorted(maps.Keys(c.namespaces)) {
		fmt.Fprintf(sum, "%s=%s;", prefix, c.namespaces[prefix])
	}
	fmt.Fprintf(sum, "%s;%s;%s;%s;", c.elemSpace, c.funcSpace, c.baseURI, c.collation)
	for _, v := range slices.Sorted(slices.Values(c.variables)) {
		fmt.Fprintf(sum, "$%s;", v)
	}
	fmt.Fprintf(sum, "%d;%d", c.registry.version(), c.collations.version())
	return sum.Sum64()
}

func splitName(str string) (string, string) {
	prefix, local, ok := strings.Cut(str, ":")
	if !ok {
		return "", prefix
	}
	return prefix, local
}

// DynamicContext carries the per evaluation state: the context item,
// values for the declared external variables, the clock snapshot and the
// cancellation and tracing hooks. Build a fresh one for every
// evaluation; one context must not serve two evaluations running
// concurrently.
type DynamicContext struct {
	item      xdm.Item
	variables map[string]xdm.Sequence
	now       time.Time
	zone      *time.Location
	collation string
	resolve   Resolver
	regex     Regex
	cancel    *atomic.Bool
	tracer    Tracer
}

// EvalOption configures a DynamicContext under construction.
type EvalOption func(*DynamicContext)

// NewContext builds the evaluation context rooted at node. A nil node
// leaves the context item absent, which expressions needing one report
// as XPDY0002.
func NewContext(node xdm.Node, options ...EvalOption) *DynamicContext {
	ctx := DynamicContext{
		variables: make(map[string]xdm.Sequence),
		now:       time.Now(),
		regex:     defaultRegex(),
		tracer:    discardTracer{},
	}
	if node != nil {
		ctx.item = xdm.NewNodeItem(node)
	}
	ctx.zone = ctx.now.Location()
	for _, opt := range options {
		opt(&ctx)
	}
	return &ctx
}

// WithContextItem sets the context item directly, for evaluations whose
// starting point is not a node.
func WithContextItem(item xdm.Item) EvalOption {
	return func(ctx *DynamicContext) {
		ctx.item = item
	}
}

// WithVariableValue supplies the value of an external variable. The name
// is lexical and is expanded against the static context of the
// executable the evaluation runs.
func WithVariableValue(name string, seq xdm.Sequence) EvalOption {
	return func(ctx *DynamicContext) {
		ctx.variables[name] = seq
	}
}

// WithNow pins the evaluation clock. The implicit timezone follows the
// location of now unless WithTimezone overrides it.
func WithNow(now time.Time) EvalOption {
	return func(ctx *DynamicContext) {
		ctx.now = now
		ctx.zone = now.Location()
	}
}

// WithTimezone sets the implicit timezone.
func WithTimezone(zone *time.Location) EvalOption {
	return func(ctx *DynamicContext) {
		ctx.zone = zone
	}
}

// WithCancel registers the flag cooperative cancellation polls. Setting
// the flag makes the evaluation unwind with ErrCancelled within a
// bounded number of steps.
func WithCancel(flag *atomic.Bool) EvalOption {
	return func(ctx *DynamicContext) {
		ctx.cancel = flag
	}
}

// WithTracer routes evaluation tracing to tracer.
func WithTracer(tracer Tracer) EvalOption {
	return func(ctx *DynamicContext) {
		ctx.tracer = tracer
	}
}

// WithResolver installs the document loader behind fn:doc.
func WithResolver(resolve Resolver) EvalOption {
	return func(ctx *DynamicContext) {
		ctx.resolve = resolve
	}
}

// WithRegex replaces the regular expression provider.
func WithRegex(provider Regex) EvalOption {
	return func(ctx *DynamicContext) {
		ctx.regex = provider
	}
}

// WithDefaultCollation overrides the default collation for this
// evaluation only.
func WithDefaultCollation(uri string) EvalOption {
	return func(ctx *DynamicContext) {
		ctx.collation = uri
	}
}

func (c *DynamicContext) cancelled() bool {
	return c.cancel != nil && c.cancel.Load()
}

// snapshot returns the stable evaluation clock in the implicit timezone.
func (c *DynamicContext) snapshot() time.Time {
	if c.zone == nil {
		return c.now
	}
	return c.now.In(c.zone)
}
