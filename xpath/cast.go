package xpath

import (
	"io"

	"github.com/midbel/xpath/xdm"
)

// newCast converts an atomized singleton to the target type. An empty
// operand is allowed through when the target carries the question mark
// and rejected otherwise.
func newCast(c cursor, typ *xdm.Type, opt bool, f *frame) cursor {
	return deferred(func() (cursor, error) {
		val, ok, err := castOperand(c, typ, opt)
		if err != nil || !ok {
			return emptyCursor{}, err
		}
		res, err := castValue(val, typ, f.env)
		if err != nil {
			return nil, err
		}
		return only(xdm.NewAtomicItem(res)), nil
	})
}

// newCastable reports whether the cast would succeed instead of
// performing it. Cardinality violations make it false, not an error.
func newCastable(c cursor, typ *xdm.Type, opt bool, f *frame) cursor {
	return deferred(func() (cursor, error) {
		val, ok, err := castOperand(c, typ, opt)
		if err != nil {
			if xdm.CodeOf(err) == xdm.CodeType {
				return only(boolItem(false)), nil
			}
			return nil, err
		}
		if !ok {
			return only(boolItem(true)), nil
		}
		_, err = castValue(val, typ, f.env)
		return only(boolItem(err == nil)), nil
	})
}

func castOperand(c cursor, typ *xdm.Type, opt bool) (xdm.Value, bool, error) {
	it, err := one(atomized(c), "cast to "+typ.String())
	if err != nil {
		return nil, false, err
	}
	if it == nil {
		if opt {
			return nil, false, nil
		}
		return nil, false, xdm.Errorf(xdm.CodeType, "cast to %s rejects the empty sequence", typ)
	}
	return it.Value(), true, nil
}

// castValue runs one cast. The QName target resolves prefixes against
// the static namespaces, every other target follows the casting table.
func castValue(val xdm.Value, typ *xdm.Type, env *StaticContext) (xdm.Value, error) {
	if typ == xdm.TypeQName {
		switch val.(type) {
		case xdm.String, xdm.Untyped, xdm.QName:
			return xdm.ParseName(val.String(), env.LookupNamespace)
		default:
			return nil, xdm.Errorf(xdm.CodeCastUndefined, "%s can not be cast to %s", val.Type(), typ)
		}
	}
	return xdm.Cast(val, typ)
}

// newInstance matches a sequence against a sequence type, counting
// items only as far as the answer needs.
func newInstance(c cursor, check *seqCheck, ctx *DynamicContext) cursor {
	return deferred(func() (cursor, error) {
		var seen int
		for {
			if ctx.cancelled() {
				return nil, ErrCancelled
			}
			it, err := c.next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			seen++
			if most := check.most(); most >= 0 && seen > most {
				return only(boolItem(false)), nil
			}
			if !check.item(it) {
				return only(boolItem(false)), nil
			}
		}
		return only(boolItem(seen >= check.least())), nil
	})
}

// treatCursor passes its source through, checking each item against the
// asserted type and the cardinality as they stream by.
type treatCursor struct {
	src   cursor
	check *seqCheck
	seen  int
}

func (c *treatCursor) next() (xdm.Item, error) {
	it, err := c.src.next()
	if err == io.EOF {
		if c.seen < c.check.least() {
			return nil, c.violated("an empty sequence")
		}
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	c.seen++
	if most := c.check.most(); most >= 0 && c.seen > most {
		return nil, c.violated("a longer sequence")
	}
	if !c.check.item(it) {
		return nil, c.violated(describeItem(it))
	}
	return it, nil
}

func (c *treatCursor) violated(what string) error {
	return xdm.Errorf(xdm.CodeTreatFailed, "treat as %s got %s", c.check, what)
}

func (c *treatCursor) clone() cursor {
	return &treatCursor{src: c.src.clone(), check: c.check}
}

func describeItem(it xdm.Item) string {
	if it.Atomic() {
		return it.Value().Type().String()
	}
	return it.Node().Kind().String() + " node"
}
