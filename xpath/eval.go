package xpath

import (
	"io"

	"github.com/midbel/xpath/xdm"
)

// focus is the context item, position and size a sub program observes.
// The size is computed on demand and memoized, so positional predicates
// only pay for counting when last() is actually called.
type focus struct {
	item xdm.Item
	pos  int
	last func() (int, error)
}

func atFocus(item xdm.Item) *focus {
	return &focus{
		item: item,
		pos:  1,
		last: func() (int, error) { return 1, nil },
	}
}

// countOf builds the lazy size of a focus from a pristine clone of the
// stream the focus iterates.
func countOf(c cursor, ctx *DynamicContext) func() (int, error) {
	var (
		n    int
		err  error
		done bool
	)
	return func() (int, error) {
		if done {
			return n, err
		}
		done = true
		var seq xdm.Sequence
		seq, err = drain(c, ctx)
		n = len(seq)
		return n, err
	}
}

// frame is the state one program runs under: the contexts, the slot
// storage of the bound variables, the resolved external values and the
// focus. Loop iterations derive new frames instead of mutating shared
// ones, so lazy cursors built under a frame stay valid.
type frame struct {
	ctx     *DynamicContext
	env     *StaticContext
	externs map[xdm.ExpandedName]xdm.Sequence
	slots   []cursor
	focus   *focus
	coll    *Collation
}

func (f *frame) withFocus(fc *focus) *frame {
	sub := *f
	sub.focus = fc
	return &sub
}

func (f *frame) withSlot(slot int, c cursor) *frame {
	sub := *f
	sub.slots = make([]cursor, len(f.slots))
	copy(sub.slots, f.slots)
	sub.slots[slot] = c
	return &sub
}

// run interprets code as a stack program over lazy sequences. Building
// the dataflow is free of evaluation work except where the language
// forces a value: boolean guards and conditionals.
func run(code program, f *frame) (cursor, error) {
	var stack []cursor
	push := func(c cursor) {
		stack = append(stack, c)
	}
	pop := func() cursor {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return c
	}
	for pc := 0; pc < len(code); pc++ {
		in := code[pc]
		switch in.op {
		case opPushValue:
			push(only(xdm.NewAtomicItem(in.val)))
		case opEmpty:
			push(emptyCursor{})
		case opSequence:
			parts := make([]cursor, in.n)
			for i := in.n - 1; i >= 0; i-- {
				parts[i] = pop()
			}
			push(&concatCursor{parts: parts})
		case opMakeRange:
			right, left := pop(), pop()
			push(makeRange(left, right, f))
		case opContextItem:
			if f.focus == nil {
				push(fail(errAbsent()))
			} else {
				push(only(f.focus.item))
			}
		case opRoot:
			push(rootOf(f))
		case opLoadSlot:
			push(f.slots[in.slot].clone())
		case opLoadExtern:
			if seq, ok := f.externs[in.name]; ok {
				push(fromSeq(seq))
			} else {
				push(fail(xdm.Errorf(xdm.CodeNoContext, "variable $%s has no value", in.name.Name)))
			}
		case opBindSlot:
			f.slots[in.slot] = memoize(pop())
		case opStep:
			body := code[pc+1 : pc+1+in.n]
			pc += in.n
			push(&stepCursor{input: pop(), axis: in.axis, test: in.test, preds: body, frame: f})
		case opPredicate:
			body := code[pc+1 : pc+1+in.n]
			pc += in.n
			push(newPredicate(pop(), body, f))
		case opMap:
			body := code[pc+1 : pc+1+in.n]
			pc += in.n
			push(newMapping(pop(), body, f))
		case opNormalize:
			push(&normCursor{src: pop(), rev: in.rev, ctx: f.ctx})
		case opAtomize:
			push(atomized(pop()))
		case opArith:
			right, left := pop(), pop()
			push(newArith(left, right, in.sub))
		case opNegate:
			push(newNegate(pop()))
		case opNumeric:
			push(newNumericCheck(pop()))
		case opCompareValue:
			right, left := pop(), pop()
			push(newValueCompare(left, right, in.sub, f))
		case opCompareGeneral:
			right, left := pop(), pop()
			push(newGeneralCompare(left, right, in.sub, f))
		case opCompareNode:
			right, left := pop(), pop()
			push(newNodeCompare(left, right, in.sub))
		case opNodeUnion, opNodeIntersect, opNodeExcept:
			right, left := pop(), pop()
			push(&mergeCursor{left: left, right: right, op: in.op})
		case opLogicalAnd, opLogicalOr:
			right, left := pop(), pop()
			lv, err := ebv(left)
			if err != nil {
				return nil, err
			}
			if in.op == opLogicalAnd && !lv {
				push(only(boolItem(false)))
				break
			}
			if in.op == opLogicalOr && lv {
				push(only(boolItem(true)))
				break
			}
			rv, err := ebv(right)
			if err != nil {
				return nil, err
			}
			push(only(boolItem(rv)))
		case opIf:
			alt, csq, cond := pop(), pop(), pop()
			ok, err := ebv(cond)
			if err != nil {
				return nil, err
			}
			if ok {
				push(csq)
			} else {
				push(alt)
			}
		case opFor:
			body := code[pc+1 : pc+1+in.n]
			pc += in.n
			push(&loopCursor{seq: pop(), body: body, frame: f, slot: in.slot})
		case opQuant:
			body := code[pc+1 : pc+1+in.n]
			pc += in.n
			push(newQuantifier(pop(), body, f, in.slot, in.every))
		case opCall:
			args := make([]cursor, in.n)
			for i := in.n - 1; i >= 0; i-- {
				args[i] = pop()
			}
			push(newCall(in.fn, in.name, args, f))
		case opCast:
			push(newCast(pop(), in.typ, in.opt, f))
		case opCastable:
			push(newCastable(pop(), in.typ, in.opt, f))
		case opInstance:
			push(newInstance(pop(), in.check, f.ctx))
		case opTreat:
			push(&treatCursor{src: pop(), check: in.check})
		case opPosition:
			if f.focus == nil {
				push(fail(errAbsent()))
			} else {
				push(only(xdm.NewAtomicItem(xdm.Integer(f.focus.pos))))
			}
		case opLast:
			push(lastOf(f))
		default:
			return nil, xdm.Errorf(xdm.CodeSyntax, "malformed program")
		}
	}
	if len(stack) != 1 {
		return nil, xdm.Errorf(xdm.CodeSyntax, "malformed program")
	}
	return stack[0], nil
}

func errAbsent() error {
	return xdm.NewError(xdm.CodeNoContext, "context item is absent")
}

func boolItem(b bool) xdm.Item {
	return xdm.NewAtomicItem(xdm.Boolean(b))
}

func rootOf(f *frame) cursor {
	if f.focus == nil {
		return fail(errAbsent())
	}
	return deferred(func() (cursor, error) {
		it := f.focus.item
		if it.Atomic() {
			return nil, xdm.NewError(xdm.CodeStepAtomic, "root of an atomic value")
		}
		return only(xdm.NewNodeItem(xdm.Root(it.Node()))), nil
	})
}

func lastOf(f *frame) cursor {
	if f.focus == nil {
		return fail(errAbsent())
	}
	return deferred(func() (cursor, error) {
		n, err := f.focus.last()
		if err != nil {
			return nil, err
		}
		return only(xdm.NewAtomicItem(xdm.Integer(n))), nil
	})
}

func makeRange(left, right cursor, f *frame) cursor {
	return deferred(func() (cursor, error) {
		from, ok, err := rangeBound(left, "range start")
		if err != nil || !ok {
			return emptyCursor{}, err
		}
		to, ok, err := rangeBound(right, "range end")
		if err != nil || !ok {
			return emptyCursor{}, err
		}
		return overRange(from, to, f.ctx), nil
	})
}

func rangeBound(c cursor, what string) (int64, bool, error) {
	it, err := one(atomized(c), what)
	if err != nil || it == nil {
		return 0, false, err
	}
	val, err := untypedTo(it.Value(), xdm.TypeInteger)
	if err != nil {
		return 0, false, err
	}
	n, ok := val.(xdm.Integer)
	if !ok {
		return 0, false, xdm.Errorf(xdm.CodeType, "%s must be an integer, got %s", what, val.Type())
	}
	return int64(n), true, nil
}

// untypedTo casts untyped values onto the type an operator requires and
// leaves every other value alone.
func untypedTo(val xdm.Value, typ *xdm.Type) (xdm.Value, error) {
	if _, ok := val.(xdm.Untyped); !ok {
		return val, nil
	}
	return xdm.Cast(val, typ)
}

// stepCursor walks one axis from every input node, applying the node
// test and the step predicates per input so positions count in axis
// order. Inputs arrive in document order; for the descendant axes an
// input contained in the subtree of the previous one is skipped, which
// keeps the merged output sorted and duplicate free.
type stepCursor struct {
	input cursor
	axis  string
	test  matcher
	preds program
	frame *frame
	curr  cursor
	prev  xdm.Node
}

func (s *stepCursor) next() (xdm.Item, error) {
	for {
		if s.curr != nil {
			it, err := s.curr.next()
			if err == nil {
				return it, nil
			}
			if err != io.EOF {
				return nil, err
			}
			s.curr = nil
		}
		if s.frame.ctx.cancelled() {
			return nil, ErrCancelled
		}
		it, err := s.input.next()
		if err != nil {
			return nil, err
		}
		if it.Atomic() {
			return nil, xdm.Errorf(xdm.CodeStepAtomic, "%s step on an atomic value", s.axis)
		}
		node := it.Node()
		if s.skipInside(node) {
			continue
		}
		curr := walkAxis(node, s.axis, s.test, s.frame.ctx)
		if len(s.preds) > 0 {
			curr = applyPredicates(curr, s.preds, s.frame)
		}
		s.curr = curr
	}
}

func (s *stepCursor) skipInside(node xdm.Node) bool {
	if s.axis != descendantAxis && s.axis != descendantSelfAxis {
		return false
	}
	if s.prev != nil && hasAncestor(node, s.prev) {
		return true
	}
	s.prev = node
	return false
}

func hasAncestor(node, anc xdm.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Identity() == anc.Identity() {
			return true
		}
	}
	return false
}

func (s *stepCursor) clone() cursor {
	return &stepCursor{input: s.input.clone(), axis: s.axis, test: s.test, preds: s.preds, frame: s.frame}
}

// applyPredicates wraps the axis stream of one input node with the
// predicate chain compiled into the step span.
func applyPredicates(c cursor, preds program, f *frame) cursor {
	for pc := 0; pc < len(preds); {
		n := preds[pc].n
		c = newPredicate(c, preds[pc+1:pc+1+n], f)
		pc += 1 + n
	}
	return c
}

// predCursor keeps the items its body accepts. The body runs once per
// item under a focus carrying the position in stream order and the
// lazily counted size. A body evaluating to a single number selects by
// position instead of truth.
type predCursor struct {
	input cursor
	body  program
	frame *frame
	pos   int
	last  func() (int, error)
}

func newPredicate(input cursor, body program, f *frame) cursor {
	return &predCursor{
		input: input,
		body:  body,
		frame: f,
		last:  countOf(input.clone(), f.ctx),
	}
}

func (s *predCursor) next() (xdm.Item, error) {
	for {
		if s.frame.ctx.cancelled() {
			return nil, ErrCancelled
		}
		it, err := s.input.next()
		if err != nil {
			return nil, err
		}
		s.pos++
		fc := focus{item: it, pos: s.pos, last: s.last}
		res, err := run(s.body, s.frame.withFocus(&fc))
		if err != nil {
			return nil, err
		}
		keep, err := accepts(res, s.pos)
		if err != nil {
			return nil, err
		}
		if keep {
			return it, nil
		}
	}
}

// accepts decides a predicate result: empty rejects, a first node
// accepts, a lone numeric value selects by position, anything else by
// effective boolean value.
func accepts(res cursor, pos int) (bool, error) {
	first, err := res.next()
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !first.Atomic() {
		return true, nil
	}
	if _, err := res.next(); err != io.EOF {
		if err != nil {
			return false, err
		}
		return false, xdm.NewError(xdm.CodeBadArgument, "boolean value of a sequence of several atomic values")
	}
	val := first.Value()
	if val.Type().Numeric() {
		return xdm.Equal(val, xdm.Integer(pos), nil)
	}
	return xdm.EffectiveBooleanValue(xdm.Singleton(first))
}

func (s *predCursor) clone() cursor {
	return newPredicate(s.input.clone(), s.body, s.frame)
}

// mapCursor evaluates its body once per input node under a focus over
// the input sequence, concatenating the results. It backs the general
// form of the path operator when the right side is not a plain step.
type mapCursor struct {
	input cursor
	body  program
	frame *frame
	pos   int
	last  func() (int, error)
	curr  cursor
}

func newMapping(input cursor, body program, f *frame) cursor {
	return &mapCursor{
		input: input,
		body:  body,
		frame: f,
		last:  countOf(input.clone(), f.ctx),
	}
}

func (s *mapCursor) next() (xdm.Item, error) {
	for {
		if s.curr != nil {
			it, err := s.curr.next()
			if err == nil {
				return it, nil
			}
			if err != io.EOF {
				return nil, err
			}
			s.curr = nil
		}
		if s.frame.ctx.cancelled() {
			return nil, ErrCancelled
		}
		it, err := s.input.next()
		if err != nil {
			return nil, err
		}
		if it.Atomic() {
			return nil, xdm.NewError(xdm.CodeStepAtomic, "path step on an atomic value")
		}
		s.pos++
		fc := focus{item: it, pos: s.pos, last: s.last}
		curr, err := run(s.body, s.frame.withFocus(&fc))
		if err != nil {
			return nil, err
		}
		s.curr = curr
	}
}

func (s *mapCursor) clone() cursor {
	return newMapping(s.input.clone(), s.body, s.frame)
}

// loopCursor drives a for binding: the body is rebuilt per item of the
// binding sequence under a frame where the slot holds that item.
type loopCursor struct {
	seq   cursor
	body  program
	frame *frame
	slot  int
	curr  cursor
}

func (s *loopCursor) next() (xdm.Item, error) {
	for {
		if s.curr != nil {
			it, err := s.curr.next()
			if err == nil {
				return it, nil
			}
			if err != io.EOF {
				return nil, err
			}
			s.curr = nil
		}
		if s.frame.ctx.cancelled() {
			return nil, ErrCancelled
		}
		it, err := s.seq.next()
		if err != nil {
			return nil, err
		}
		curr, err := run(s.body, s.frame.withSlot(s.slot, only(it)))
		if err != nil {
			return nil, err
		}
		s.curr = curr
	}
}

func (s *loopCursor) clone() cursor {
	return &loopCursor{seq: s.seq.clone(), body: s.body, frame: s.frame, slot: s.slot}
}

// newQuantifier folds a binding sequence into a single boolean, value
// first, stopping at the earliest witness: some stops on true, every on
// false.
func newQuantifier(seq cursor, body program, f *frame, slot int, every bool) cursor {
	return deferred(func() (cursor, error) {
		for {
			if f.ctx.cancelled() {
				return nil, ErrCancelled
			}
			it, err := seq.next()
			if err == io.EOF {
				return only(boolItem(every)), nil
			}
			if err != nil {
				return nil, err
			}
			res, err := run(body, f.withSlot(slot, only(it)))
			if err != nil {
				return nil, err
			}
			ok, err := ebv(res)
			if err != nil {
				return nil, err
			}
			if ok != every {
				return only(boolItem(ok)), nil
			}
		}
	})
}

// normCursor repairs ordering: it buffers its source on first pull,
// sorts nodes into document order, forward or reverse, and drops
// duplicate identities. All atomic input passes through unchanged;
// mixing nodes and atomic values is an error.
type normCursor struct {
	src cursor
	rev bool
	ctx *DynamicContext
	out cursor
}

func (s *normCursor) next() (xdm.Item, error) {
	if s.out == nil {
		out, err := s.normalize()
		if err != nil {
			return nil, err
		}
		s.out = out
	}
	return s.out.next()
}

func (s *normCursor) normalize() (cursor, error) {
	seq, err := drain(s.src, s.ctx)
	if err != nil {
		return nil, err
	}
	if len(seq) == 0 {
		return emptyCursor{}, nil
	}
	var nodes []xdm.Node
	for _, it := range seq {
		if it.Atomic() {
			if len(nodes) > 0 {
				return nil, errMixed()
			}
			continue
		}
		nodes = append(nodes, it.Node())
	}
	if nodes == nil {
		return fromSeq(seq), nil
	}
	if len(nodes) != len(seq) {
		return nil, errMixed()
	}
	if err := xdm.SortDocumentOrder(nodes); err != nil {
		return nil, err
	}
	out := xdm.NewSequence()
	for i, n := range nodes {
		if i > 0 && n.Identity() == nodes[i-1].Identity() {
			continue
		}
		out.Append(xdm.NewNodeItem(n))
	}
	if s.rev {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return fromSeq(out), nil
}

func errMixed() error {
	return xdm.NewError(xdm.CodeMixedPath, "a path can not mix nodes and atomic values")
}

func (s *normCursor) clone() cursor {
	if s.out != nil {
		return s.out.clone()
	}
	return &normCursor{src: s.src.clone(), rev: s.rev, ctx: s.ctx}
}

// walkAxis enumerates one axis from node in axis order, filtered by the
// node test.
func walkAxis(node xdm.Node, axis string, test matcher, ctx *DynamicContext) cursor {
	switch axis {
	case selfAxis:
		return matchedSlice([]xdm.Node{node}, test, false)
	case childAxis:
		return matchedSlice(node.Children(), test, false)
	case attributeAxis:
		return matchedSlice(node.Attributes(), test, false)
	case namespaceAxis:
		return matchedSlice(node.Namespaces(), test, false)
	case parentAxis:
		if p := node.Parent(); p != nil {
			return matchedSlice([]xdm.Node{p}, test, false)
		}
		return emptyCursor{}
	case ancestorAxis:
		return matchedSlice(ancestors(node), test, false)
	case ancestorSelfAxis:
		return matchedSlice(append([]xdm.Node{node}, ancestors(node)...), test, false)
	case descendantAxis:
		return descend(node.Children(), test, ctx)
	case descendantSelfAxis:
		return descend([]xdm.Node{node}, test, ctx)
	case nextSiblingAxis:
		return matchedSlice(siblingsAfter(node), test, false)
	case prevSiblingAxis:
		return matchedSlice(siblingsBefore(node), test, true)
	case nextAxis:
		return &followCursor{node: node, test: test, ctx: ctx}
	case prevAxis:
		return &precedeCursor{node: node, test: test, ctx: ctx}
	default:
		return fail(xdm.Errorf(xdm.CodeSyntax, "%s: unknown axis", axis))
	}
}

// matchedSlice filters a fixed node list by the test, optionally in
// reverse for the axes that count backward.
func matchedSlice(nodes []xdm.Node, test matcher, rev bool) cursor {
	out := xdm.NewSequence()
	if rev {
		for i := len(nodes) - 1; i >= 0; i-- {
			if test.match(nodes[i]) {
				out.Append(xdm.NewNodeItem(nodes[i]))
			}
		}
	} else {
		for _, n := range nodes {
			if test.match(n) {
				out.Append(xdm.NewNodeItem(n))
			}
		}
	}
	return fromSeq(out)
}

func ancestors(node xdm.Node) []xdm.Node {
	var out []xdm.Node
	for p := node.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}

func siblingsAfter(node xdm.Node) []xdm.Node {
	p := node.Parent()
	if p == nil {
		return nil
	}
	sibs := p.Children()
	for i, s := range sibs {
		if s.Identity() == node.Identity() {
			return sibs[i+1:]
		}
	}
	return nil
}

func siblingsBefore(node xdm.Node) []xdm.Node {
	p := node.Parent()
	if p == nil {
		return nil
	}
	sibs := p.Children()
	for i, s := range sibs {
		if s.Identity() == node.Identity() {
			return sibs[:i]
		}
	}
	return nil
}

func reversed(nodes []xdm.Node) []xdm.Node {
	out := make([]xdm.Node, len(nodes))
	for i, n := range nodes {
		out[len(nodes)-1-i] = n
	}
	return out
}

// descendCursor streams a depth first pre order walk of the given
// subtree roots, one node per pull.
type descendCursor struct {
	roots []xdm.Node
	stack []xdm.Node
	test  matcher
	ctx   *DynamicContext
	init  bool
}

func descend(roots []xdm.Node, test matcher, ctx *DynamicContext) *descendCursor {
	return &descendCursor{roots: roots, test: test, ctx: ctx}
}

func (s *descendCursor) next() (xdm.Item, error) {
	if !s.init {
		s.init = true
		s.stack = reversed(s.roots)
	}
	for len(s.stack) > 0 {
		if s.ctx.cancelled() {
			return nil, ErrCancelled
		}
		node := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		kids := node.Children()
		for i := len(kids) - 1; i >= 0; i-- {
			s.stack = append(s.stack, kids[i])
		}
		if s.test.match(node) {
			return xdm.NewNodeItem(node), nil
		}
	}
	return nil, io.EOF
}

func (s *descendCursor) clone() cursor {
	return descend(s.roots, s.test, s.ctx)
}

// followCursor yields everything after the subtree of node in document
// order: for each ancestor or self, the subtrees of its following
// siblings.
type followCursor struct {
	node xdm.Node
	test matcher
	ctx  *DynamicContext
	curr *descendCursor
	sibs []xdm.Node
	init bool
}

func (s *followCursor) next() (xdm.Item, error) {
	if !s.init {
		s.init = true
		s.sibs = followQueue(s.node)
	}
	for {
		if s.curr != nil {
			it, err := s.curr.next()
			if err != io.EOF {
				return it, err
			}
			s.curr = nil
		}
		if len(s.sibs) == 0 {
			return nil, io.EOF
		}
		root := s.sibs[0]
		s.sibs = s.sibs[1:]
		s.curr = descend([]xdm.Node{root}, s.test, s.ctx)
	}
}

func followQueue(node xdm.Node) []xdm.Node {
	var out []xdm.Node
	for n := node; n != nil; n = n.Parent() {
		out = append(out, siblingsAfter(n)...)
	}
	return out
}

func (s *followCursor) clone() cursor {
	return &followCursor{node: s.node, test: s.test, ctx: s.ctx}
}

// precedeCursor yields everything before node in reverse document
// order, ancestors excluded: for each ancestor or self, the subtrees of
// its preceding siblings walked backward.
type precedeCursor struct {
	node xdm.Node
	test matcher
	ctx  *DynamicContext
	curr *revDescendCursor
	sibs []xdm.Node
	init bool
}

func (s *precedeCursor) next() (xdm.Item, error) {
	if !s.init {
		s.init = true
		s.sibs = precedeQueue(s.node)
	}
	for {
		if s.curr != nil {
			it, err := s.curr.next()
			if err != io.EOF {
				return it, err
			}
			s.curr = nil
		}
		if len(s.sibs) == 0 {
			return nil, io.EOF
		}
		root := s.sibs[0]
		s.sibs = s.sibs[1:]
		s.curr = newRevDescend(root, s.test, s.ctx)
	}
}

func precedeQueue(node xdm.Node) []xdm.Node {
	var out []xdm.Node
	for n := node; n != nil; n = n.Parent() {
		before := siblingsBefore(n)
		for i := len(before) - 1; i >= 0; i-- {
			out = append(out, before[i])
		}
	}
	return out
}

func (s *precedeCursor) clone() cursor {
	return &precedeCursor{node: s.node, test: s.test, ctx: s.ctx}
}

// revDescendCursor streams one subtree in reverse document order:
// deepest rightmost node first, the root last.
type revDescendCursor struct {
	root  xdm.Node
	stack []revEntry
	test  matcher
	ctx   *DynamicContext
}

type revEntry struct {
	node xdm.Node
	kids []xdm.Node
	ix   int
}

func newRevDescend(root xdm.Node, test matcher, ctx *DynamicContext) *revDescendCursor {
	kids := root.Children()
	return &revDescendCursor{
		root:  root,
		stack: []revEntry{{node: root, kids: kids, ix: len(kids) - 1}},
		test:  test,
		ctx:   ctx,
	}
}

func (s *revDescendCursor) next() (xdm.Item, error) {
	for len(s.stack) > 0 {
		if s.ctx.cancelled() {
			return nil, ErrCancelled
		}
		top := &s.stack[len(s.stack)-1]
		if top.ix >= 0 {
			child := top.kids[top.ix]
			top.ix--
			kids := child.Children()
			s.stack = append(s.stack, revEntry{node: child, kids: kids, ix: len(kids) - 1})
			continue
		}
		node := top.node
		s.stack = s.stack[:len(s.stack)-1]
		if s.test.match(node) {
			return xdm.NewNodeItem(node), nil
		}
	}
	return nil, io.EOF
}

func (s *revDescendCursor) clone() cursor {
	return newRevDescend(s.root, s.test, s.ctx)
}
