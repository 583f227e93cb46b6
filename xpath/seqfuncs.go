package xpath

import (
	"io"
	"math"
	"slices"

	"github.com/midbel/xpath/xdm"
)

func registerBooleanFuncs(b builder) {
	b.add("boolean", callBoolean, pItems)
	b.add("not", callNot, pItems)
	b.add("true", callTrue)
	b.add("false", callFalse)
}

func registerSequenceFuncs(b builder) {
	b.add("empty", callEmpty, pItems)
	b.add("exists", callExists, pItems)
	b.add("distinct-values", callDistinctValues, pvStar(xdm.TypeAnyAtomic))
	b.add("distinct-values", callDistinctValues, pvStar(xdm.TypeAnyAtomic), pv(xdm.TypeString))
	b.add("index-of", callIndexOf, pvStar(xdm.TypeAnyAtomic), pv(xdm.TypeAnyAtomic))
	b.add("index-of", callIndexOf, pvStar(xdm.TypeAnyAtomic), pv(xdm.TypeAnyAtomic), pv(xdm.TypeString))
	b.add("insert-before", callInsertBefore, pItems, pv(xdm.TypeInteger), pItems)
	b.add("remove", callRemove, pItems, pv(xdm.TypeInteger))
	b.add("reverse", callReverse, pItems)
	b.add("subsequence", callSubsequence, pItems, pv(xdm.TypeDouble))
	b.add("subsequence", callSubsequence, pItems, pv(xdm.TypeDouble), pv(xdm.TypeDouble))
	b.add("unordered", callUnordered, pItems)
	b.add("zero-or-one", callZeroOrOne, pItems)
	b.add("one-or-more", callOneOrMore, pItems)
	b.add("exactly-one", callExactlyOne, pItems)
	b.add("deep-equal", callDeepEqual, pItems, pItems)
	b.add("deep-equal", callDeepEqual, pItems, pItems, pv(xdm.TypeString))
	b.add("error", callError)
	b.add("error", callError, pvOpt(xdm.TypeQName))
	b.add("error", callError, pvOpt(xdm.TypeQName), pv(xdm.TypeString))
	b.add("error", callError, pvOpt(xdm.TypeQName), pv(xdm.TypeString), pItems)
	b.add("trace", callTrace, pItems, pv(xdm.TypeString))
}

func callBoolean(call *callCtx, args []cursor) (cursor, error) {
	ok, err := ebv(args[0])
	if err != nil {
		return nil, err
	}
	return only(boolItem(ok)), nil
}

func callNot(call *callCtx, args []cursor) (cursor, error) {
	ok, err := ebv(args[0])
	if err != nil {
		return nil, err
	}
	return only(boolItem(!ok)), nil
}

func callTrue(call *callCtx, args []cursor) (cursor, error) {
	return only(boolItem(true)), nil
}

func callFalse(call *callCtx, args []cursor) (cursor, error) {
	return only(boolItem(false)), nil
}

func callEmpty(call *callCtx, args []cursor) (cursor, error) {
	_, err := args[0].next()
	if err != nil && err != io.EOF {
		return nil, err
	}
	return only(boolItem(err == io.EOF)), nil
}

func callExists(call *callCtx, args []cursor) (cursor, error) {
	_, err := args[0].next()
	if err != nil && err != io.EOF {
		return nil, err
	}
	return only(boolItem(err == nil)), nil
}

// asString folds untyped values into strings so they compare like
// strings, the way general comparison treats them.
func asString(val xdm.Value) xdm.Value {
	if v, ok := val.(xdm.Untyped); ok {
		return xdm.String(v)
	}
	return val
}

func isNaN(val xdm.Value) bool {
	return val.Type().Numeric() && math.IsNaN(toDouble(val))
}

// callDistinctValues keeps the first occurrence of every value. Unlike
// plain equality, NaN counts as a duplicate of NaN here so at most one
// survives. Values of incomparable types are simply distinct.
func callDistinctValues(call *callCtx, args []cursor) (cursor, error) {
	coll, err := call.collationArg(args, 1)
	if err != nil {
		return nil, err
	}
	var (
		ctx    = call.dynamic()
		out    = xdm.NewSequence()
		seen   []xdm.Value
		sawNaN bool
	)
	for {
		if ctx.cancelled() {
			return nil, ErrCancelled
		}
		it, err := args[0].next()
		if err != nil {
			if err = eofNil(err); err != nil {
				return nil, err
			}
			break
		}
		val := asString(it.Value())
		if isNaN(val) {
			if sawNaN {
				continue
			}
			sawNaN = true
			out.Append(xdm.NewAtomicItem(val))
			continue
		}
		dup := false
		for _, prev := range seen {
			eq, err := xdm.Equal(val, prev, coll.Compare)
			if err == nil && eq {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen = append(seen, val)
		out.Append(xdm.NewAtomicItem(val))
	}
	return fromSeq(out), nil
}

// callIndexOf reports the positions where the sequence matches the
// search value. Items the search value can not be compared with never
// match.
func callIndexOf(call *callCtx, args []cursor) (cursor, error) {
	search, ok, err := argValue(args[1])
	if err != nil {
		return nil, err
	}
	if !ok {
		return emptyCursor{}, nil
	}
	search = asString(search)
	coll, err := call.collationArg(args, 2)
	if err != nil {
		return nil, err
	}
	var (
		ctx = call.dynamic()
		out = xdm.NewSequence()
		pos int64
	)
	for {
		if ctx.cancelled() {
			return nil, ErrCancelled
		}
		it, err := args[0].next()
		if err != nil {
			if err = eofNil(err); err != nil {
				return nil, err
			}
			break
		}
		pos++
		eq, err := xdm.Equal(asString(it.Value()), search, coll.Compare)
		if err == nil && eq {
			out.Append(xdm.NewAtomicItem(xdm.Integer(pos)))
		}
	}
	return fromSeq(out), nil
}

func callInsertBefore(call *callCtx, args []cursor) (cursor, error) {
	at, _, err := argInteger(args[1])
	if err != nil {
		return nil, err
	}
	return &insertCursor{
		src: args[0],
		ins: args[2],
		at:  max(at, 1),
	}, nil
}

type insertCursor struct {
	src cursor
	ins cursor
	at  int64
	pos int64
	// 0 before the insert point, 1 inserting, 2 past it
	state int
}

func (c *insertCursor) next() (xdm.Item, error) {
	for {
		switch c.state {
		case 0:
			if c.pos+1 == c.at {
				c.state = 1
				continue
			}
			it, err := c.src.next()
			if err == io.EOF {
				c.state = 1
				continue
			}
			if err != nil {
				return nil, err
			}
			c.pos++
			return it, nil
		case 1:
			it, err := c.ins.next()
			if err == io.EOF {
				c.state = 2
				continue
			}
			return it, err
		default:
			return c.src.next()
		}
	}
}

func (c *insertCursor) clone() cursor {
	return &insertCursor{
		src: c.src.clone(),
		ins: c.ins.clone(),
		at:  c.at,
	}
}

func callRemove(call *callCtx, args []cursor) (cursor, error) {
	at, _, err := argInteger(args[1])
	if err != nil {
		return nil, err
	}
	return &removeCursor{
		src: args[0],
		at:  at,
	}, nil
}

type removeCursor struct {
	src cursor
	at  int64
	pos int64
}

func (c *removeCursor) next() (xdm.Item, error) {
	for {
		it, err := c.src.next()
		if err != nil {
			return nil, err
		}
		c.pos++
		if c.pos == c.at {
			continue
		}
		return it, nil
	}
}

func (c *removeCursor) clone() cursor {
	return &removeCursor{
		src: c.src.clone(),
		at:  c.at,
	}
}

func callReverse(call *callCtx, args []cursor) (cursor, error) {
	seq, err := drain(args[0], call.dynamic())
	if err != nil {
		return nil, err
	}
	slices.Reverse(seq)
	return fromSeq(seq), nil
}

// callSubsequence selects items by position with the same rounding as
// substring. The window stops pulling from its input once the upper
// bound is passed.
func callSubsequence(call *callCtx, args []cursor) (cursor, error) {
	start, _, err := argDouble(args[1])
	if err != nil {
		return nil, err
	}
	upto := math.Inf(1)
	if len(args) == 3 {
		length, _, err := argDouble(args[2])
		if err != nil {
			return nil, err
		}
		upto = math.Floor(start+0.5) + math.Floor(length+0.5)
	}
	from := math.Floor(start + 0.5)
	if math.IsNaN(from) || math.IsNaN(upto) {
		return emptyCursor{}, nil
	}
	return &windowCursor{
		src:  args[0],
		from: from,
		upto: upto,
	}, nil
}

type windowCursor struct {
	src  cursor
	from float64
	upto float64
	pos  int64
}

func (c *windowCursor) next() (xdm.Item, error) {
	for {
		if float64(c.pos+1) >= c.upto {
			return nil, io.EOF
		}
		it, err := c.src.next()
		if err != nil {
			return nil, err
		}
		c.pos++
		if float64(c.pos) >= c.from {
			return it, nil
		}
	}
}

func (c *windowCursor) clone() cursor {
	return &windowCursor{
		src:  c.src.clone(),
		from: c.from,
		upto: c.upto,
	}
}

func callUnordered(call *callCtx, args []cursor) (cursor, error) {
	return args[0], nil
}

func callZeroOrOne(call *callCtx, args []cursor) (cursor, error) {
	return &cardCursor{
		src:  args[0],
		name: "zero-or-one",
		code: xdm.CodeZeroOrOne,
		most: 1,
	}, nil
}

func callOneOrMore(call *callCtx, args []cursor) (cursor, error) {
	return &cardCursor{
		src:   args[0],
		name:  "one-or-more",
		code:  xdm.CodeOneOrMore,
		least: 1,
		most:  -1,
	}, nil
}

func callExactlyOne(call *callCtx, args []cursor) (cursor, error) {
	return &cardCursor{
		src:   args[0],
		name:  "exactly-one",
		code:  xdm.CodeExactlyOne,
		least: 1,
		most:  1,
	}, nil
}

// cardCursor passes its input through and fails the pull that proves
// the cardinality claim wrong.
type cardCursor struct {
	src   cursor
	name  string
	code  string
	least int
	most  int
	seen  int
}

func (c *cardCursor) next() (xdm.Item, error) {
	it, err := c.src.next()
	if err == io.EOF && c.seen < c.least {
		return nil, xdm.Errorf(c.code, "%s got an empty sequence", c.name)
	}
	if err != nil {
		return nil, err
	}
	c.seen++
	if c.most >= 0 && c.seen > c.most {
		return nil, xdm.Errorf(c.code, "%s got a sequence of more than one item", c.name)
	}
	return it, nil
}

func (c *cardCursor) clone() cursor {
	return &cardCursor{
		src:   c.src.clone(),
		name:  c.name,
		code:  c.code,
		least: c.least,
		most:  c.most,
	}
}

func callDeepEqual(call *callCtx, args []cursor) (cursor, error) {
	coll, err := call.collationArg(args, 2)
	if err != nil {
		return nil, err
	}
	ctx := call.dynamic()
	left, err := drain(args[0], ctx)
	if err != nil {
		return nil, err
	}
	right, err := drain(args[1], ctx)
	if err != nil {
		return nil, err
	}
	if len(left) != len(right) {
		return only(boolItem(false)), nil
	}
	for i := range left {
		if !deepEqualItems(left[i], right[i], coll) {
			return only(boolItem(false)), nil
		}
	}
	return only(boolItem(true)), nil
}

func deepEqualItems(a, b xdm.Item, coll *Collation) bool {
	if a.Atomic() != b.Atomic() {
		return false
	}
	if a.Atomic() {
		return deepEqualValues(a.Value(), b.Value(), coll)
	}
	return deepEqualNodes(a.Node(), b.Node(), coll)
}

// deepEqualValues is value equality with two twists: NaN equals NaN
// and incomparable types are unequal rather than an error.
func deepEqualValues(a, b xdm.Value, coll *Collation) bool {
	a, b = asString(a), asString(b)
	if isNaN(a) && isNaN(b) {
		return true
	}
	eq, err := xdm.Equal(a, b, coll.Compare)
	return err == nil && eq
}

func deepEqualNodes(a, b xdm.Node, coll *Collation) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case xdm.KindDocument:
		return deepEqualChildren(a, b, coll)
	case xdm.KindElement:
		if a.Name().Expanded() != b.Name().Expanded() {
			return false
		}
		if !deepEqualAttributes(a, b, coll) {
			return false
		}
		return deepEqualChildren(a, b, coll)
	case xdm.KindAttribute:
		if a.Name().Expanded() != b.Name().Expanded() {
			return false
		}
		return deepEqualValues(a.TypedValue(), b.TypedValue(), coll)
	case xdm.KindText:
		return deepEqualValues(a.TypedValue(), b.TypedValue(), coll)
	case xdm.KindComment, xdm.KindInstruction, xdm.KindNamespace:
		return a.Name() == b.Name() && a.Value() == b.Value()
	}
	return false
}

// deepEqualAttributes matches attributes as an unordered set by name.
func deepEqualAttributes(a, b xdm.Node, coll *Collation) bool {
	attrs := b.Attributes()
	if len(a.Attributes()) != len(attrs) {
		return false
	}
	for _, at := range a.Attributes() {
		found := false
		for _, bt := range attrs {
			if at.Name().Expanded() != bt.Name().Expanded() {
				continue
			}
			if !deepEqualValues(at.TypedValue(), bt.TypedValue(), coll) {
				return false
			}
			found = true
			break
		}
		if !found {
			return false
		}
	}
	return true
}

// deepEqualChildren compares element and text children in order,
// skipping comments and processing instructions.
func deepEqualChildren(a, b xdm.Node, coll *Collation) bool {
	left := contentChildren(a)
	right := contentChildren(b)
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if !deepEqualNodes(left[i], right[i], coll) {
			return false
		}
	}
	return true
}

func contentChildren(n xdm.Node) []xdm.Node {
	var out []xdm.Node
	for _, c := range n.Children() {
		switch c.Kind() {
		case xdm.KindElement, xdm.KindText:
			out = append(out, c)
		}
	}
	return out
}

// callError raises an error under the caller's control. The default
// code is FOER0000, a QName argument overrides it with its local part.
func callError(call *callCtx, args []cursor) (cursor, error) {
	var (
		code = xdm.CodeUserError
		desc = "error raised by the error function"
	)
	if len(args) > 0 {
		val, ok, err := argValue(args[0])
		if err != nil {
			return nil, err
		}
		if ok {
			name, ok := val.(xdm.QName)
			if !ok {
				return nil, xdm.Errorf(xdm.CodeType, "error expects a QName code, got %s", val.Type())
			}
			code = name.Name
		}
	}
	if len(args) > 1 {
		str, err := argString(args[1])
		if err != nil {
			return nil, err
		}
		desc = str
	}
	return nil, xdm.NewError(code, desc)
}

func callTrace(call *callCtx, args []cursor) (cursor, error) {
	label, err := argString(args[1])
	if err != nil {
		return nil, err
	}
	return &traceCursor{
		src:    args[0],
		label:  label,
		tracer: call.dynamic().tracer,
	}, nil
}

// traceCursor reports every item flowing through it without disturbing
// the stream.
type traceCursor struct {
	src    cursor
	label  string
	tracer Tracer
}

func (c *traceCursor) next() (xdm.Item, error) {
	it, err := c.src.next()
	if err != nil {
		return nil, err
	}
	c.tracer.Print(c.label, it.String())
	return it, nil
}

func (c *traceCursor) clone() cursor {
	return &traceCursor{
		src:    c.src.clone(),
		label:  c.label,
		tracer: c.tracer,
	}
}
