package xpath

import (
	"fmt"
	"strings"

	"github.com/midbel/distance"
	"github.com/midbel/xpath/environ"
	"github.com/midbel/xpath/xdm"
)

// Compile lowers a parsed expression onto the program the evaluator
// runs, resolving every name against env. A nil env gets the default
// static context. Resolution failures come back as static errors with
// their XPST code.
func Compile(expr Expr, env *StaticContext) (*Executable, error) {
	if env == nil {
		env = NewStaticContext()
	}
	cp := Compiler{
		env:   env,
		scope: environ.Empty[int](),
	}
	if err := cp.compile(expr); err != nil {
		return nil, err
	}
	exec := Executable{
		env:   env,
		code:  cp.code,
		slots: cp.slots,
	}
	return &exec, nil
}

// CompileString parses and compiles query under a static context built
// from options.
func CompileString(query string, options ...Option) (*Executable, error) {
	expr, err := ParseString(query)
	if err != nil {
		return nil, err
	}
	return Compile(expr, NewStaticContext(options...))
}

// Compiler walks the tree once, appending instructions. Sub programs
// for predicates, loops and quantifiers are emitted in place and their
// spans patched once their length is known.
type Compiler struct {
	env   *StaticContext
	scope environ.Environ[int]
	slots int
	code  program
}

func (c *Compiler) compile(expr Expr) error {
	switch e := expr.(type) {
	case literal:
		c.emit(instr{op: opPushValue, val: xdm.String(e.expr)})
	case number:
		c.emit(instr{op: opPushValue, val: e.expr})
	case identifier:
		return c.compileVariable(e)
	case current:
		c.emit(instr{op: opContextItem})
	case root:
		c.emit(instr{op: opRoot})
	case step:
		c.emit(instr{op: opContextItem})
		return c.compileStep(e)
	case path:
		return c.compilePath(e)
	case filter:
		return c.compileFilter(e)
	case sequence:
		return c.compileSequence(e)
	case binary:
		return c.compileBinary(e)
	case reverse:
		if err := c.compile(e.expr); err != nil {
			return err
		}
		c.emit(instr{op: opNegate})
	case plus:
		if err := c.compile(e.expr); err != nil {
			return err
		}
		c.emit(instr{op: opNumeric})
	case rng:
		if err := c.compile(e.left); err != nil {
			return err
		}
		if err := c.compile(e.right); err != nil {
			return err
		}
		c.emit(instr{op: opMakeRange})
	case conditional:
		return c.compileConditional(e)
	case loop:
		return c.compileBinds(e.binds, opFor, false, e.body)
	case let:
		return c.compileLet(e)
	case quantified:
		return c.compileBinds(e.binds, opQuant, e.every, e.test)
	case call:
		return c.compileCall(e)
	case cast:
		return c.compileCast(e.expr, e.kind, opCast)
	case castable:
		return c.compileCast(e.expr, e.kind, opCastable)
	case instanceof:
		return c.compileCheck(e.expr, e.kind, opInstance)
	case treat:
		return c.compileCheck(e.expr, e.kind, opTreat)
	default:
		return xdm.Errorf(xdm.CodeSyntax, "expression can not be compiled")
	}
	return nil
}

func (c *Compiler) emit(i instr) int {
	c.code = append(c.code, i)
	return len(c.code) - 1
}

func (c *Compiler) compileVariable(e identifier) error {
	name, err := c.resolveVariable(e.name)
	if err != nil {
		return err
	}
	if slot, err := c.scope.Resolve(name.String()); err == nil {
		c.emit(instr{op: opLoadSlot, slot: slot})
		return nil
	}
	if c.env.Declared(name) {
		c.emit(instr{op: opLoadExtern, name: name})
		return nil
	}
	return c.undefined(xdm.CodeUndefinedVar, "variable $"+e.name.QualifiedName(), e.name.Name, scopeNames(c.scope))
}

// compilePath compiles the left side, re-establishes document order
// when the left side can not guarantee it, then feeds the right side.
func (c *Compiler) compilePath(e path) error {
	if err := c.compile(e.left); err != nil {
		return err
	}
	if !sortedForward(e.left) {
		c.emit(instr{op: opNormalize})
	}
	return c.compileTail(e.right)
}

// compileTail compiles the right side of a slash with its input already
// on the stack. Steps consume their input directly; any other
// expression becomes a mapping whose body runs once per input node.
func (c *Compiler) compileTail(e Expr) error {
	if st, ok := e.(step); ok {
		return c.compileStep(st)
	}
	at := c.emit(instr{op: opMap})
	if err := c.compile(e); err != nil {
		return err
	}
	c.code[at].n = len(c.code) - at - 1
	c.emit(instr{op: opNormalize})
	return nil
}

// compileStep emits the axis walk with its predicates in place, then
// whatever ordering repair the axis requires: nothing for the axes that
// stay sorted, a forward normalize for the following family, a reverse
// one for the reverse axes.
func (c *Compiler) compileStep(e step) error {
	match, err := c.buildTest(e.curr, e.axis)
	if err != nil {
		return err
	}
	at := c.emit(instr{op: opStep, axis: e.axis, test: match})
	if err := c.compilePredicates(e.preds); err != nil {
		return err
	}
	c.code[at].n = len(c.code) - at - 1
	switch e.axis {
	case nextAxis, nextSiblingAxis:
		c.emit(instr{op: opNormalize})
	case parentAxis, ancestorAxis, ancestorSelfAxis, prevAxis, prevSiblingAxis:
		c.emit(instr{op: opNormalize, rev: true})
	}
	return nil
}

func (c *Compiler) compileFilter(e filter) error {
	if err := c.compile(e.expr); err != nil {
		return err
	}
	return c.compilePredicates(e.preds)
}

func (c *Compiler) compilePredicates(preds []Expr) error {
	for _, p := range preds {
		at := c.emit(instr{op: opPredicate})
		if err := c.compile(p); err != nil {
			return err
		}
		c.code[at].n = len(c.code) - at - 1
	}
	return nil
}

func (c *Compiler) compileSequence(e sequence) error {
	if len(e.all) == 0 {
		c.emit(instr{op: opEmpty})
		return nil
	}
	for _, x := range e.all {
		if err := c.compile(x); err != nil {
			return err
		}
	}
	c.emit(instr{op: opSequence, n: len(e.all)})
	return nil
}

func (c *Compiler) compileBinary(e binary) error {
	switch e.op {
	case opUnion, opIntersect, opExcept:
		return c.compileMerge(e)
	}
	if err := c.compile(e.left); err != nil {
		return err
	}
	if err := c.compile(e.right); err != nil {
		return err
	}
	switch e.op {
	case opAdd, opSub, opMul, opDiv, opIdiv, opMod:
		c.emit(instr{op: opArith, sub: e.op})
	case opValEq, opValNe, opValGt, opValGe, opValLt, opValLe:
		c.emit(instr{op: opCompareValue, sub: e.op})
	case opEq, opNe, opGt, opGe, opLt, opLe:
		c.emit(instr{op: opCompareGeneral, sub: e.op})
	case opIs, opBefore, opAfter:
		c.emit(instr{op: opCompareNode, sub: e.op})
	case opAnd:
		c.emit(instr{op: opLogicalAnd})
	case opOr:
		c.emit(instr{op: opLogicalOr})
	default:
		return xdm.Errorf(xdm.CodeSyntax, "operator can not be compiled")
	}
	return nil
}

// compileMerge compiles the node set operators. Both operands are
// brought to document order first so the merge can run lazily.
func (c *Compiler) compileMerge(e binary) error {
	if err := c.compile(e.left); err != nil {
		return err
	}
	if !sortedForward(e.left) {
		c.emit(instr{op: opNormalize})
	}
	if err := c.compile(e.right); err != nil {
		return err
	}
	if !sortedForward(e.right) {
		c.emit(instr{op: opNormalize})
	}
	switch e.op {
	case opUnion:
		c.emit(instr{op: opNodeUnion})
	case opIntersect:
		c.emit(instr{op: opNodeIntersect})
	default:
		c.emit(instr{op: opNodeExcept})
	}
	return nil
}

func (c *Compiler) compileConditional(e conditional) error {
	if err := c.compile(e.test); err != nil {
		return err
	}
	if err := c.compile(e.csq); err != nil {
		return err
	}
	if err := c.compile(e.alt); err != nil {
		return err
	}
	c.emit(instr{op: opIf})
	return nil
}

// compileBinds nests one loop or quantifier instruction per binding.
// Scoping is sequential: a binding expression sees the variables bound
// before it, the body sees them all.
func (c *Compiler) compileBinds(binds []binding, op opcode, every bool, body Expr) error {
	if len(binds) == 0 {
		return c.compile(body)
	}
	bind := binds[0]
	if err := c.compile(bind.expr); err != nil {
		return err
	}
	name, err := c.resolveVariable(bind.ident)
	if err != nil {
		return err
	}
	slot := c.slots
	c.slots++
	parent := c.scope
	c.scope = environ.Enclosed(parent)
	c.scope.Define(name.String(), slot)
	at := c.emit(instr{op: op, slot: slot, every: every})
	err = c.compileBinds(binds[1:], op, every, body)
	c.scope = parent
	if err != nil {
		return err
	}
	c.code[at].n = len(c.code) - at - 1
	return nil
}

func (c *Compiler) compileLet(e let) error {
	parent := c.scope
	c.scope = environ.Enclosed(parent)
	defer func() {
		c.scope = parent
	}()
	for _, bind := range e.binds {
		if err := c.compile(bind.expr); err != nil {
			return err
		}
		name, err := c.resolveVariable(bind.ident)
		if err != nil {
			return err
		}
		slot := c.slots
		c.slots++
		c.scope.Define(name.String(), slot)
		c.emit(instr{op: opBindSlot, slot: slot})
	}
	return c.compile(e.body)
}

func (c *Compiler) compileCall(e call) error {
	name, err := c.resolveFunction(e.name)
	if err != nil {
		return err
	}
	if name.Uri == xdm.FuncSpace {
		switch name.Name {
		case "position", "last":
			if len(e.args) != 0 {
				return xdm.Errorf(xdm.CodeUnknownFunction, "%s takes no argument", e.name.QualifiedName())
			}
			if name.Name == "position" {
				c.emit(instr{op: opPosition})
			} else {
				c.emit(instr{op: opLast})
			}
			return nil
		}
	}
	if name.Uri == xdm.SchemaSpace {
		return c.compileConstructor(e, name)
	}
	fn := c.env.registry.resolve(name, len(e.args))
	if fn == nil {
		what := fmt.Sprintf("function %s#%d", e.name.QualifiedName(), len(e.args))
		return c.undefined(xdm.CodeUnknownFunction, what, e.name.Name, c.env.registry.names())
	}
	for i, arg := range e.args {
		if err := c.compile(arg); err != nil {
			return err
		}
		if p := fn.param(i); p.typ != nil {
			c.emit(instr{op: opAtomize})
		}
	}
	c.emit(instr{op: opCall, fn: fn, name: name, n: len(e.args)})
	return nil
}

// compileConstructor lowers a schema type constructor like xs:date(..)
// onto a cast accepting the empty sequence.
func (c *Compiler) compileConstructor(e call, name xdm.ExpandedName) error {
	typ := xdm.LookupType(name)
	if typ == nil {
		return c.undefined(xdm.CodeUnknownFunction, "function "+e.name.QualifiedName(), e.name.Name, xdm.TypeNames())
	}
	if len(e.args) != 1 {
		return xdm.Errorf(xdm.CodeUnknownFunction, "%s takes exactly one argument", e.name.QualifiedName())
	}
	if typ == xdm.TypeAnyAtomic {
		return xdm.Errorf(xdm.CodeBadCastTarget, "%s is not a constructable type", typ)
	}
	if err := c.compile(e.args[0]); err != nil {
		return err
	}
	c.emit(instr{op: opCast, typ: typ, opt: true})
	return nil
}

func (c *Compiler) compileCast(expr Expr, kind single, op opcode) error {
	typ, err := c.resolveType(kind.name)
	if err != nil {
		return err
	}
	if typ == xdm.TypeAnyAtomic {
		return xdm.Errorf(xdm.CodeBadCastTarget, "%s is not a valid cast target", typ)
	}
	if err := c.compile(expr); err != nil {
		return err
	}
	c.emit(instr{op: op, typ: typ, opt: kind.optional})
	return nil
}

func (c *Compiler) compileCheck(expr Expr, kind seqType, op opcode) error {
	chk, err := c.buildCheck(kind)
	if err != nil {
		return err
	}
	if err := c.compile(expr); err != nil {
		return err
	}
	c.emit(instr{op: op, check: chk})
	return nil
}

func (c *Compiler) buildCheck(st seqType) (*seqCheck, error) {
	chk := seqCheck{
		occurs: st.occurs,
	}
	switch {
	case st.occurs == occEmpty:
	case st.item:
		chk.any = true
	case st.kind != nil:
		match, err := c.buildKindMatch(*st.kind)
		if err != nil {
			return nil, err
		}
		chk.node = match
	default:
		typ, err := c.resolveType(st.atom)
		if err != nil {
			return nil, err
		}
		chk.atom = typ
	}
	return &chk, nil
}

// buildTest compiles a node test. The axis decides the principal node
// kind of a name test and the namespace an unprefixed name lives in.
func (c *Compiler) buildTest(t test, axis string) (matcher, error) {
	switch t := t.(type) {
	case nameTest:
		return c.buildNameMatch(t.name, axis)
	case kindTest:
		return c.buildKindMatch(t)
	default:
		return nil, xdm.Errorf(xdm.CodeSyntax, "node test can not be compiled")
	}
}

func (c *Compiler) buildNameMatch(qn xdm.QName, axis string) (matcher, error) {
	kind := xdm.KindElement
	switch axis {
	case attributeAxis:
		kind = xdm.KindAttribute
	case namespaceAxis:
		kind = xdm.KindNamespace
	}
	uri, err := c.resolveSpace(qn, kind == xdm.KindElement)
	if err != nil {
		return nil, err
	}
	match := nameMatch{
		kind:  kind,
		uri:   uri,
		local: qn.Name,
	}
	return match, nil
}

func (c *Compiler) buildKindMatch(t kindTest) (matcher, error) {
	match := kindMatch{
		kinds:  t.kind,
		target: t.target,
	}
	if !t.name.Zero() {
		uri, err := c.resolveSpace(t.name, t.kind != xdm.KindAttribute)
		if err != nil {
			return nil, err
		}
		name := nameMatch{
			kind:  t.kind,
			uri:   uri,
			local: t.name.Name,
		}
		if t.kind == xdm.KindDocument {
			name.kind = xdm.KindElement
			match.inner = &name
		} else {
			match.name = &name
		}
	}
	return match, nil
}

// resolveSpace expands the prefix of a name test. Unprefixed element
// names take the default element namespace, unprefixed attribute names
// none.
func (c *Compiler) resolveSpace(qn xdm.QName, element bool) (string, error) {
	switch {
	case qn.Space == "*":
		return "*", nil
	case qn.Space == "":
		if element {
			return c.env.elemSpace, nil
		}
		return "", nil
	default:
		uri, ok := c.env.LookupNamespace(qn.Space)
		if !ok {
			return "", c.unknownPrefix(qn.Space)
		}
		return uri, nil
	}
}

func (c *Compiler) resolveVariable(qn xdm.QName) (xdm.ExpandedName, error) {
	if qn.Space == "" {
		return xdm.Expand("", qn.Name), nil
	}
	uri, ok := c.env.LookupNamespace(qn.Space)
	if !ok {
		return xdm.ExpandedName{}, c.unknownPrefix(qn.Space)
	}
	return xdm.Expand(uri, qn.Name), nil
}

func (c *Compiler) resolveFunction(qn xdm.QName) (xdm.ExpandedName, error) {
	if qn.Space == "" {
		return xdm.Expand(c.env.funcSpace, qn.Name), nil
	}
	uri, ok := c.env.LookupNamespace(qn.Space)
	if !ok {
		return xdm.ExpandedName{}, c.unknownPrefix(qn.Space)
	}
	return xdm.Expand(uri, qn.Name), nil
}

func (c *Compiler) resolveType(qn xdm.QName) (*xdm.Type, error) {
	uri := c.env.elemSpace
	if qn.Space != "" {
		u, ok := c.env.LookupNamespace(qn.Space)
		if !ok {
			return nil, c.unknownPrefix(qn.Space)
		}
		uri = u
	}
	typ := xdm.LookupType(xdm.Expand(uri, qn.Name))
	if typ == nil {
		return nil, c.undefined(xdm.CodeUnknownType, "type "+qn.QualifiedName(), qn.Name, xdm.TypeNames())
	}
	return typ, nil
}

func (c *Compiler) unknownPrefix(prefix string) error {
	return xdm.Errorf(xdm.CodeUnknownPrefix, "prefix %s is not bound to a namespace", prefix)
}

// undefined builds the static error for an unresolved name, suggesting
// close matches when any exist.
func (c *Compiler) undefined(code, what, name string, others []string) error {
	if close := distance.Levenshtein(name, others); len(close) > 0 {
		return xdm.Errorf(code, "%s is not defined, did you mean %s?", what, close[0])
	}
	return xdm.Errorf(code, "%s is not defined", what)
}

func scopeNames(scope environ.Environ[int]) []string {
	var names []string
	for _, n := range scope.Names() {
		if ix := strings.IndexByte(n, '}'); ix >= 0 {
			n = n[ix+1:]
		}
		names = append(names, n)
	}
	return names
}

// sortedForward reports whether an expression is known to yield nodes
// already sorted and duplicate free in document order, letting the
// compiler skip redundant normalization.
func sortedForward(e Expr) bool {
	switch e := e.(type) {
	case root, current:
		return true
	case step:
		return !reverseAxis(e.axis)
	case path:
		if st, ok := e.right.(step); ok {
			return !reverseAxis(st.axis)
		}
		return true
	case filter:
		return sortedForward(e.expr)
	case binary:
		return e.op == opUnion || e.op == opIntersect || e.op == opExcept
	default:
		return false
	}
}
