package xpath

import (
	"github.com/midbel/xpath/xdm"
)

// newArith builds the cursor of an arithmetic expression. Operands are
// atomized singletons; an empty operand makes the result empty, untyped
// values are read as doubles.
func newArith(left, right cursor, op rune) cursor {
	return deferred(func() (cursor, error) {
		a, err := arithOperand(left, op)
		if err != nil || a == nil {
			return emptyCursor{}, err
		}
		b, err := arithOperand(right, op)
		if err != nil || b == nil {
			return emptyCursor{}, err
		}
		res, err := applyArith(a, b, op)
		if err != nil {
			return nil, err
		}
		return only(xdm.NewAtomicItem(res)), nil
	})
}

func arithOperand(c cursor, op rune) (xdm.Value, error) {
	it, err := one(atomized(c), opName(op))
	if err != nil || it == nil {
		return nil, err
	}
	return untypedTo(it.Value(), xdm.TypeDouble)
}

func applyArith(a, b xdm.Value, op rune) (xdm.Value, error) {
	switch op {
	case opAdd:
		return xdm.Add(a, b)
	case opSub:
		return xdm.Subtract(a, b)
	case opMul:
		return xdm.Multiply(a, b)
	case opDiv:
		return xdm.Divide(a, b)
	case opIdiv:
		return xdm.IntegerDivide(a, b)
	case opMod:
		return xdm.Modulo(a, b)
	default:
		return nil, xdm.Errorf(xdm.CodeSyntax, "%s: unknown operator", opName(op))
	}
}

// newNegate flips the sign of a numeric singleton. Empty stays empty.
func newNegate(c cursor) cursor {
	return deferred(func() (cursor, error) {
		val, err := numericOperand(c, "unary minus")
		if err != nil || val == nil {
			return emptyCursor{}, err
		}
		switch v := val.(type) {
		case xdm.Integer:
			return only(xdm.NewAtomicItem(-v)), nil
		case xdm.Decimal:
			return only(xdm.NewAtomicItem(-v)), nil
		case xdm.Double:
			return only(xdm.NewAtomicItem(-v)), nil
		case xdm.Float:
			return only(xdm.NewAtomicItem(-v)), nil
		default:
			return nil, badNumeric(val, "unary minus")
		}
	})
}

// newNumericCheck implements unary plus: the operand passes through
// once proven numeric.
func newNumericCheck(c cursor) cursor {
	return deferred(func() (cursor, error) {
		val, err := numericOperand(c, "unary plus")
		if err != nil || val == nil {
			return emptyCursor{}, err
		}
		return only(xdm.NewAtomicItem(val)), nil
	})
}

func numericOperand(c cursor, what string) (xdm.Value, error) {
	it, err := one(atomized(c), what)
	if err != nil || it == nil {
		return nil, err
	}
	val, err := untypedTo(it.Value(), xdm.TypeDouble)
	if err != nil {
		return nil, err
	}
	if !val.Type().Numeric() {
		return nil, badNumeric(val, what)
	}
	return val, nil
}

func badNumeric(val xdm.Value, what string) error {
	return xdm.Errorf(xdm.CodeType, "%s needs a number, got %s", what, val.Type())
}

// newValueCompare compares two atomized singletons with the value
// operators. An empty operand makes the result empty.
func newValueCompare(left, right cursor, op rune, f *frame) cursor {
	return deferred(func() (cursor, error) {
		a, err := one(atomized(left), opName(op))
		if err != nil || a == nil {
			return emptyCursor{}, err
		}
		b, err := one(atomized(right), opName(op))
		if err != nil || b == nil {
			return emptyCursor{}, err
		}
		res, err := compareValues(a.Value(), b.Value(), op, f.collate())
		if err != nil {
			return nil, err
		}
		return only(boolItem(res)), nil
	})
}

// compareValues applies one value operator. The orderings are derived
// from equality and less than so NaN compares false under everything
// but ne.
func compareValues(a, b xdm.Value, op rune, coll xdm.Collation) (bool, error) {
	switch op {
	case opValEq, opEq:
		return xdm.Equal(a, b, coll)
	case opValNe, opNe:
		ok, err := xdm.Equal(a, b, coll)
		return !ok, err
	case opValLt, opLt:
		return xdm.Less(a, b, coll)
	case opValGt, opGt:
		return xdm.Less(b, a, coll)
	case opValLe, opLe:
		if ok, err := xdm.Less(a, b, coll); ok || err != nil {
			return ok, err
		}
		return xdm.Equal(a, b, coll)
	case opValGe, opGe:
		if ok, err := xdm.Less(b, a, coll); ok || err != nil {
			return ok, err
		}
		return xdm.Equal(a, b, coll)
	default:
		return false, xdm.Errorf(xdm.CodeSyntax, "%s: unknown operator", opName(op))
	}
}

// newGeneralCompare implements the existential comparisons: true as
// soon as one pair of atomized items compares true. The right side is
// buffered and replayed per left item.
func newGeneralCompare(left, right cursor, op rune, f *frame) cursor {
	return deferred(func() (cursor, error) {
		var (
			lhs  = atomized(left)
			rhs  = memoize(atomized(right))
			coll = f.collate()
		)
		for {
			if f.ctx.cancelled() {
				return nil, ErrCancelled
			}
			a, err := pullAtomic(lhs)
			if err != nil {
				return nil, err
			}
			if a == nil {
				return only(boolItem(false)), nil
			}
			side := rhs.clone()
			for {
				b, err := pullAtomic(side)
				if err != nil {
					return nil, err
				}
				if b == nil {
					break
				}
				ok, err := comparePair(a, b, op, coll)
				if err != nil {
					return nil, err
				}
				if ok {
					return only(boolItem(true)), nil
				}
			}
		}
	})
}

func pullAtomic(c cursor) (xdm.Value, error) {
	it, err := c.next()
	if err != nil {
		return nil, eofNil(err)
	}
	return it.Value(), nil
}

// comparePair coerces one candidate pair per the general comparison
// rules before applying the operator: an untyped value follows the type
// of the other side, numbers meet as doubles, two untyped values meet
// as strings.
func comparePair(a, b xdm.Value, op rune, coll xdm.Collation) (bool, error) {
	var err error
	if _, ok := a.(xdm.Untyped); ok {
		a, err = coerceUntyped(a, b)
	} else if _, ok := b.(xdm.Untyped); ok {
		b, err = coerceUntyped(b, a)
	}
	if err != nil {
		return false, err
	}
	return compareValues(a, b, op, coll)
}

func coerceUntyped(val, other xdm.Value) (xdm.Value, error) {
	typ := other.Type()
	switch {
	case typ.Numeric():
		typ = xdm.TypeDouble
	case typ == xdm.TypeUntyped:
		typ = xdm.TypeString
	}
	return xdm.Cast(val, typ)
}

// newNodeCompare implements is, << and >>. Operands must be single
// nodes; an empty operand makes the result empty.
func newNodeCompare(left, right cursor, op rune) cursor {
	return deferred(func() (cursor, error) {
		a, err := nodeOperand(left, op)
		if err != nil || a == nil {
			return emptyCursor{}, err
		}
		b, err := nodeOperand(right, op)
		if err != nil || b == nil {
			return emptyCursor{}, err
		}
		var res bool
		switch op {
		case opIs:
			res = a.Identity() == b.Identity()
		case opBefore:
			res, err = xdm.Before(a, b)
		case opAfter:
			res, err = xdm.After(a, b)
		}
		if err != nil {
			return nil, err
		}
		return only(boolItem(res)), nil
	})
}

func nodeOperand(c cursor, op rune) (xdm.Node, error) {
	it, err := one(c, opName(op))
	if err != nil || it == nil {
		return nil, err
	}
	if it.Atomic() {
		return nil, xdm.Errorf(xdm.CodeType, "%s compares nodes, got %s", opName(op), it.Value().Type())
	}
	return it.Node(), nil
}
