package xpath

import (
	"io"

	"github.com/midbel/xpath/xdm"
)

// cursor is a lazily computed sequence. next returns the items one by
// one and io.EOF past the last; any other error aborts the sequence and
// stays sticky. clone returns an independent cursor positioned at the
// start without recomputing work a memoized source already did.
type cursor interface {
	next() (xdm.Item, error)
	clone() cursor
}

type emptyCursor struct{}

func (emptyCursor) next() (xdm.Item, error) {
	return nil, io.EOF
}

func (c emptyCursor) clone() cursor {
	return c
}

type singleCursor struct {
	item xdm.Item
	done bool
}

func only(item xdm.Item) cursor {
	return &singleCursor{item: item}
}

func (c *singleCursor) next() (xdm.Item, error) {
	if c.done {
		return nil, io.EOF
	}
	c.done = true
	return c.item, nil
}

func (c *singleCursor) clone() cursor {
	return only(c.item)
}

type sliceCursor struct {
	items xdm.Sequence
	ix    int
}

func fromSeq(seq xdm.Sequence) cursor {
	if len(seq) == 0 {
		return emptyCursor{}
	}
	return &sliceCursor{items: seq}
}

func (c *sliceCursor) next() (xdm.Item, error) {
	if c.ix >= len(c.items) {
		return nil, io.EOF
	}
	it := c.items[c.ix]
	c.ix++
	return it, nil
}

func (c *sliceCursor) clone() cursor {
	return &sliceCursor{items: c.items}
}

type errorCursor struct {
	err error
}

func fail(err error) cursor {
	return errorCursor{err: err}
}

func (c errorCursor) next() (xdm.Item, error) {
	return nil, c.err
}

func (c errorCursor) clone() cursor {
	return c
}

// concatCursor chains the results of several cursors, for the comma
// operator.
type concatCursor struct {
	parts []cursor
	ix    int
}

func (c *concatCursor) next() (xdm.Item, error) {
	for c.ix < len(c.parts) {
		it, err := c.parts[c.ix].next()
		if err == io.EOF {
			c.ix++
			continue
		}
		return it, err
	}
	return nil, io.EOF
}

func (c *concatCursor) clone() cursor {
	parts := make([]cursor, len(c.parts))
	for i := range c.parts {
		parts[i] = c.parts[i].clone()
	}
	return &concatCursor{parts: parts}
}

// rangeCursor counts through an integer range without materializing
// it. The cancellation flag is polled every step so huge ranges stay
// interruptible.
type rangeCursor struct {
	from, to int64
	curr     int64
	ctx      *DynamicContext
}

func overRange(from, to int64, ctx *DynamicContext) cursor {
	if from > to {
		return emptyCursor{}
	}
	return &rangeCursor{from: from, to: to, curr: from, ctx: ctx}
}

func (c *rangeCursor) next() (xdm.Item, error) {
	if c.ctx.cancelled() {
		return nil, ErrCancelled
	}
	if c.curr > c.to {
		return nil, io.EOF
	}
	it := xdm.NewAtomicItem(xdm.Integer(c.curr))
	c.curr++
	return it, nil
}

func (c *rangeCursor) clone() cursor {
	return overRange(c.from, c.to, c.ctx)
}

// thunkCell runs a build function at most once and keeps the result.
// Clones of the same thunk share the cell, so a build consuming other
// cursors never runs against already drained sources.
type thunkCell struct {
	build func() (cursor, error)
	curr  cursor
}

func (c *thunkCell) force() cursor {
	if c.curr == nil {
		curr, err := c.build()
		if err != nil {
			c.curr = fail(err)
		} else {
			c.curr = curr
		}
	}
	return c.curr
}

// thunkCursor defers building its source until the first pull, keeping
// construction free of side effects and errors.
type thunkCursor struct {
	cell *thunkCell
	iter cursor
}

func deferred(build func() (cursor, error)) cursor {
	return &thunkCursor{
		cell: &thunkCell{build: build},
	}
}

func (c *thunkCursor) next() (xdm.Item, error) {
	if c.iter == nil {
		if c.cell.curr != nil {
			c.iter = c.cell.curr.clone()
		} else {
			c.iter = c.cell.force()
		}
	}
	return c.iter.next()
}

func (c *thunkCursor) clone() cursor {
	if c.iter != nil {
		return c.iter.clone()
	}
	return &thunkCursor{cell: c.cell}
}

// memoBuf records the items of a cursor as they are pulled so sharing
// clones never re-evaluates the source. An error is recorded at the
// position it occurred and replayed from there.
type memoBuf struct {
	src   cursor
	items xdm.Sequence
	err   error
	done  bool
}

func (b *memoBuf) at(ix int) (xdm.Item, error) {
	for !b.done && ix >= len(b.items) {
		it, err := b.src.next()
		if err == io.EOF {
			b.done = true
			break
		}
		if err != nil {
			b.done = true
			b.err = err
			break
		}
		b.items = append(b.items, it)
	}
	if ix < len(b.items) {
		return b.items[ix], nil
	}
	if b.err != nil {
		return nil, b.err
	}
	return nil, io.EOF
}

type memoCursor struct {
	buf *memoBuf
	ix  int
}

// memoize makes a cursor cheaply re-iterable. Cursors that already
// replay from a buffer are returned unchanged.
func memoize(c cursor) cursor {
	switch c.(type) {
	case *memoCursor, *sliceCursor, *singleCursor, emptyCursor, errorCursor:
		return c
	default:
		return &memoCursor{buf: &memoBuf{src: c}}
	}
}

func (c *memoCursor) next() (xdm.Item, error) {
	it, err := c.buf.at(c.ix)
	if err != nil {
		return nil, err
	}
	c.ix++
	return it, nil
}

func (c *memoCursor) clone() cursor {
	return &memoCursor{buf: c.buf}
}

// atomizeCursor turns nodes into their typed values and passes atomic
// items through.
type atomizeCursor struct {
	src cursor
}

func atomized(c cursor) cursor {
	if _, ok := c.(*atomizeCursor); ok {
		return c
	}
	return &atomizeCursor{src: c}
}

func (c *atomizeCursor) next() (xdm.Item, error) {
	it, err := c.src.next()
	if err != nil {
		return nil, err
	}
	if it.Atomic() {
		return it, nil
	}
	return xdm.NewAtomicItem(it.Node().TypedValue()), nil
}

func (c *atomizeCursor) clone() cursor {
	return atomized(c.src.clone())
}

// drain pulls a cursor to exhaustion, polling cancellation between
// items.
// eofNil keeps the end of a stream out of error paths that only care
// about real failures.
func eofNil(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}

func drain(c cursor, ctx *DynamicContext) (xdm.Sequence, error) {
	var seq xdm.Sequence
	for {
		if ctx.cancelled() {
			return nil, ErrCancelled
		}
		it, err := c.next()
		if err == io.EOF {
			return seq, nil
		}
		if err != nil {
			return nil, err
		}
		seq = append(seq, it)
	}
}

// ebv forces the effective boolean value of a cursor. A first item that
// is a node decides without touching the rest; an atomic first item
// must be alone.
func ebv(c cursor) (bool, error) {
	first, err := c.next()
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !first.Atomic() {
		return true, nil
	}
	if _, err := c.next(); err != io.EOF {
		if err != nil {
			return false, err
		}
		return false, xdm.NewError(xdm.CodeBadArgument, "boolean value of a sequence of several atomic values")
	}
	return xdm.EffectiveBooleanValue(xdm.Singleton(first))
}

// one pulls the only item of a cursor, nil when it is empty. A second
// item raises XPTY0004 naming what needed the single value.
func one(c cursor, what string) (xdm.Item, error) {
	first, err := c.next()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := c.next(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, xdm.Errorf(xdm.CodeType, "%s takes a single value, got a longer sequence", what)
	}
	return first, nil
}

// mergeCursor combines two sorted duplicate free node streams with one
// of the set operators, keeping both laziness and order. Atomic items
// in either operand raise XPTY0004.
type mergeCursor struct {
	left  cursor
	right cursor
	op    opcode
	lv    xdm.Node
	rv    xdm.Node
	lend  bool
	rend  bool
	init  bool
}

func (c *mergeCursor) next() (xdm.Item, error) {
	if !c.init {
		c.init = true
		if err := c.advanceLeft(); err != nil {
			return nil, err
		}
		if err := c.advanceRight(); err != nil {
			return nil, err
		}
	}
	for {
		switch c.op {
		case opNodeUnion:
			if c.lend && c.rend {
				return nil, io.EOF
			}
		case opNodeIntersect:
			if c.lend || c.rend {
				return nil, io.EOF
			}
		default:
			if c.lend {
				return nil, io.EOF
			}
		}
		if c.lend {
			node := c.rv
			if err := c.advanceRight(); err != nil {
				return nil, err
			}
			return xdm.NewNodeItem(node), nil
		}
		if c.rend {
			node := c.lv
			if err := c.advanceLeft(); err != nil {
				return nil, err
			}
			return xdm.NewNodeItem(node), nil
		}
		cmp, err := c.lv.Compare(c.rv)
		if err != nil {
			return nil, err
		}
		switch {
		case cmp < 0:
			node := c.lv
			if err := c.advanceLeft(); err != nil {
				return nil, err
			}
			if c.op == opNodeIntersect {
				continue
			}
			return xdm.NewNodeItem(node), nil
		case cmp > 0:
			node := c.rv
			if err := c.advanceRight(); err != nil {
				return nil, err
			}
			if c.op == opNodeUnion {
				return xdm.NewNodeItem(node), nil
			}
		default:
			node := c.lv
			if err := c.advanceLeft(); err != nil {
				return nil, err
			}
			if err := c.advanceRight(); err != nil {
				return nil, err
			}
			if c.op == opNodeExcept {
				continue
			}
			return xdm.NewNodeItem(node), nil
		}
	}
}

func (c *mergeCursor) advanceLeft() error {
	node, end, err := pullNode(c.left)
	c.lv, c.lend = node, end
	return err
}

func (c *mergeCursor) advanceRight() error {
	node, end, err := pullNode(c.right)
	c.rv, c.rend = node, end
	return err
}

func pullNode(c cursor) (xdm.Node, bool, error) {
	it, err := c.next()
	if err == io.EOF {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	if it.Atomic() {
		return nil, false, xdm.Errorf(xdm.CodeType, "set operators work on nodes, got %s", it.Value().Type())
	}
	return it.Node(), false, nil
}

func (c *mergeCursor) clone() cursor {
	return &mergeCursor{left: c.left.clone(), right: c.right.clone(), op: c.op}
}
