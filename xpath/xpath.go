// Package xpath evaluates XPath 2.0 expressions over any tree exposing
// the xdm.Node interface. Expression text is parsed, compiled against a
// static context into a small program and run lazily: results are
// streams pulled one item at a time, so taking the first match of a
// query never visits the rest of the document.
package xpath

import (
	"io"
	"iter"

	"github.com/midbel/xpath/xdm"
)

// Executable is a compiled expression bound to the static context it
// was compiled under. It is immutable and safe to share: any number of
// evaluations, concurrent ones included, can run it as long as each
// brings its own DynamicContext.
type Executable struct {
	env   *StaticContext
	code  program
	slots int
}

// String returns the instruction listing of the compiled program.
func (x *Executable) String() string {
	return x.code.String()
}

// Static returns the static context the executable was compiled under.
func (x *Executable) Static() *StaticContext {
	return x.env
}

// Evaluate starts one evaluation under ctx. Building the stream is
// cheap; the work happens as the stream is pulled. A nil ctx evaluates
// without a context item.
func (x *Executable) Evaluate(ctx *DynamicContext) (*Stream, error) {
	if ctx == nil {
		ctx = NewContext(nil)
	}
	coll, err := x.defaultCollation(ctx)
	if err != nil {
		return nil, err
	}
	externs, err := x.externVars(ctx)
	if err != nil {
		return nil, err
	}
	f := frame{
		ctx:     ctx,
		env:     x.env,
		externs: externs,
		slots:   make([]cursor, x.slots),
		coll:    coll,
	}
	if ctx.item != nil {
		f.focus = atFocus(ctx.item)
	}
	curr, err := run(x.code, &f)
	if err != nil {
		return nil, err
	}
	return &Stream{curr: curr, ctx: ctx}, nil
}

// Find evaluates the expression with node as the context item and
// collects the whole result.
func (x *Executable) Find(node xdm.Node) (xdm.Sequence, error) {
	return x.FindWith(node, nil)
}

// FindWith is Find with values for the declared external variables,
// keyed by their lexical names.
func (x *Executable) FindWith(node xdm.Node, vars map[string]xdm.Sequence) (xdm.Sequence, error) {
	ctx := NewContext(node)
	for name, seq := range vars {
		ctx.variables[name] = seq
	}
	stream, err := x.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return stream.Collect()
}

// Find compiles query under the default static context and evaluates it
// with node as the context item.
func Find(node xdm.Node, query string) (xdm.Sequence, error) {
	exec, err := CompileString(query)
	if err != nil {
		return nil, err
	}
	return exec.Find(node)
}

// defaultCollation resolves the collation comparisons run under when no
// explicit collation argument overrides it: the dynamic default, then
// the static default, then codepoint order.
func (x *Executable) defaultCollation(ctx *DynamicContext) (*Collation, error) {
	uri := ctx.collation
	if uri == "" {
		uri = x.env.collation
	}
	if uri == "" {
		uri = CollationCodepoint
	}
	return x.env.collations.Lookup(uri)
}

// externVars expands the lexical names of the supplied variable values
// against the static namespace bindings.
func (x *Executable) externVars(ctx *DynamicContext) (map[xdm.ExpandedName]xdm.Sequence, error) {
	if len(ctx.variables) == 0 {
		return nil, nil
	}
	out := make(map[xdm.ExpandedName]xdm.Sequence, len(ctx.variables))
	for name, seq := range ctx.variables {
		prefix, local := splitName(name)
		var space string
		if prefix != "" {
			uri, ok := x.env.LookupNamespace(prefix)
			if !ok {
				return nil, xdm.Errorf(xdm.CodeUnknownPrefix, "prefix %q can not be resolved", prefix)
			}
			space = uri
		}
		out[xdm.ExpandedName{Uri: space, Name: local}] = seq
	}
	return out, nil
}

// Stream is the lazily computed result of one evaluation. Like the
// context it runs under it serves a single consumer; it is not safe for
// concurrent use.
type Stream struct {
	curr cursor
	ctx  *DynamicContext
}

// Next returns the next item of the result and io.EOF once the stream
// is exhausted. Any other error ends the stream: the items seen so far
// are valid, the rest of the result is not.
func (s *Stream) Next() (xdm.Item, error) {
	return s.curr.next()
}

// Collect pulls the remainder of the stream into a sequence.
func (s *Stream) Collect() (xdm.Sequence, error) {
	return drain(s.curr, s.ctx)
}

// All iterates the remaining items. A non nil error, delivered as the
// final pair, ends the iteration.
func (s *Stream) All() iter.Seq2[xdm.Item, error] {
	return func(yield func(xdm.Item, error) bool) {
		for {
			it, err := s.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(it, nil) {
				return
			}
		}
	}
}

// Bool reduces the stream to its effective boolean value, consuming up
// to two items.
func (s *Stream) Bool() (bool, error) {
	return ebv(s.curr)
}
