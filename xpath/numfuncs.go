package xpath

import (
	"math"

	"github.com/midbel/xpath/xdm"
)

func registerNumericFuncs(b builder) {
	b.add("abs", callAbs, pvOpt(xdm.TypeAnyAtomic))
	b.add("ceiling", callCeiling, pvOpt(xdm.TypeAnyAtomic))
	b.add("floor", callFloor, pvOpt(xdm.TypeAnyAtomic))
	b.add("round", callRound, pvOpt(xdm.TypeAnyAtomic))
	b.add("round-half-to-even", callRoundHalfEven, pvOpt(xdm.TypeAnyAtomic))
	b.add("round-half-to-even", callRoundHalfEven, pvOpt(xdm.TypeAnyAtomic), pv(xdm.TypeInteger))
	b.add("number", callNumber)
	b.add("number", callNumber, pvOpt(xdm.TypeAnyAtomic))
	b.add("count", callCount, pItems)
	b.add("sum", callSum, pvStar(xdm.TypeAnyAtomic))
	b.add("sum", callSum, pvStar(xdm.TypeAnyAtomic), pvOpt(xdm.TypeAnyAtomic))
	b.add("avg", callAvg, pvStar(xdm.TypeAnyAtomic))
	b.add("max", callMax, pvStar(xdm.TypeAnyAtomic))
	b.add("max", callMax, pvStar(xdm.TypeAnyAtomic), pv(xdm.TypeString))
	b.add("min", callMin, pvStar(xdm.TypeAnyAtomic))
	b.add("min", callMin, pvStar(xdm.TypeAnyAtomic), pv(xdm.TypeString))
}

// numericArg reads an optional numeric argument. Untyped input counts
// as a double, anything else non numeric is rejected.
func numericArg(c cursor, what string) (xdm.Value, bool, error) {
	val, ok, err := argValue(c)
	if err != nil || !ok {
		return nil, ok, err
	}
	val, err = untypedTo(val, xdm.TypeDouble)
	if err != nil {
		return nil, false, err
	}
	if !val.Type().Numeric() {
		return nil, false, badNumeric(val, what)
	}
	return val, true, nil
}

// mapNumeric applies fn to the argument while keeping its numeric type,
// integers excepted when keepInt is set.
func mapNumeric(c cursor, what string, keepInt bool, fn func(float64) float64) (cursor, error) {
	val, ok, err := numericArg(c, what)
	if err != nil {
		return nil, err
	}
	if !ok {
		return emptyCursor{}, nil
	}
	var out xdm.Value
	switch v := val.(type) {
	case xdm.Integer:
		if keepInt {
			out = v
		} else {
			out = xdm.Integer(fn(float64(v)))
		}
	case xdm.Decimal:
		out = xdm.Decimal(fn(float64(v)))
	case xdm.Double:
		out = xdm.Double(fn(float64(v)))
	case xdm.Float:
		out = xdm.Float(fn(float64(v)))
	default:
		return nil, badNumeric(val, what)
	}
	return only(xdm.NewAtomicItem(out)), nil
}

func callAbs(call *callCtx, args []cursor) (cursor, error) {
	return mapNumeric(args[0], "abs", false, math.Abs)
}

func callCeiling(call *callCtx, args []cursor) (cursor, error) {
	return mapNumeric(args[0], "ceiling", true, math.Ceil)
}

func callFloor(call *callCtx, args []cursor) (cursor, error) {
	return mapNumeric(args[0], "floor", true, math.Floor)
}

// callRound rounds halves away from zero toward positive infinity, so
// round(-2.5) is -2.
func callRound(call *callCtx, args []cursor) (cursor, error) {
	return mapNumeric(args[0], "round", true, func(f float64) float64 {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return f
		}
		return math.Floor(f + 0.5)
	})
}

func callRoundHalfEven(call *callCtx, args []cursor) (cursor, error) {
	var precision int64
	if len(args) == 2 {
		p, ok, err := argInteger(args[1])
		if err != nil {
			return nil, err
		}
		if ok {
			precision = p
		}
	}
	scale := math.Pow(10, float64(precision))
	return mapNumeric(args[0], "round-half-to-even", precision >= 0, func(f float64) float64 {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return f
		}
		return math.RoundToEven(f*scale) / scale
	})
}

func callNumber(call *callCtx, args []cursor) (cursor, error) {
	nan := only(xdm.NewAtomicItem(xdm.Double(math.NaN())))
	var (
		val xdm.Value
		ok  bool
		err error
	)
	if len(args) == 0 {
		it, err := call.focusItem()
		if err != nil {
			return nil, err
		}
		val, ok = it.Value(), true
	} else {
		val, ok, err = argValue(args[0])
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nan, nil
	}
	out, err := xdm.Cast(val, xdm.TypeDouble)
	if err != nil {
		return nan, nil
	}
	return only(xdm.NewAtomicItem(out)), nil
}

func callCount(call *callCtx, args []cursor) (cursor, error) {
	var (
		ctx   = call.dynamic()
		count int64
	)
	for {
		if ctx.cancelled() {
			return nil, ErrCancelled
		}
		_, err := args[0].next()
		if err != nil {
			if err = eofNil(err); err != nil {
				return nil, err
			}
			break
		}
		count++
	}
	return only(xdm.NewAtomicItem(xdm.Integer(count))), nil
}

// accumulate folds the sequence with xdm.Add. Untyped items count as
// doubles. Mixing values that can not be added fails with FORG0006.
func accumulate(c cursor, ctx *DynamicContext) (xdm.Value, int64, error) {
	var (
		total xdm.Value
		count int64
	)
	for {
		if ctx.cancelled() {
			return nil, 0, ErrCancelled
		}
		it, err := c.next()
		if err != nil {
			if err = eofNil(err); err != nil {
				return nil, 0, err
			}
			break
		}
		val, err := untypedTo(it.Value(), xdm.TypeDouble)
		if err != nil {
			return nil, 0, err
		}
		if total == nil {
			total = val
		} else {
			total, err = xdm.Add(total, val)
			if err != nil {
				return nil, 0, xdm.Wrap(xdm.CodeBadArgument, err)
			}
		}
		count++
	}
	return total, count, nil
}

func callSum(call *callCtx, args []cursor) (cursor, error) {
	total, _, err := accumulate(args[0], call.dynamic())
	if err != nil {
		return nil, err
	}
	if total != nil {
		return only(xdm.NewAtomicItem(total)), nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return only(xdm.NewAtomicItem(xdm.Integer(0))), nil
}

func callAvg(call *callCtx, args []cursor) (cursor, error) {
	total, count, err := accumulate(args[0], call.dynamic())
	if err != nil {
		return nil, err
	}
	if total == nil {
		return emptyCursor{}, nil
	}
	mean, err := xdm.Divide(total, xdm.Integer(count))
	if err != nil {
		return nil, xdm.Wrap(xdm.CodeBadArgument, err)
	}
	return only(xdm.NewAtomicItem(mean)), nil
}

func callMax(call *callCtx, args []cursor) (cursor, error) {
	return selectExtreme(call, args, false)
}

func callMin(call *callCtx, args []cursor) (cursor, error) {
	return selectExtreme(call, args, true)
}

// selectExtreme scans for the largest or smallest value. Any NaN makes
// the result NaN. Numeric winners are promoted to the widest numeric
// type seen in the sequence.
func selectExtreme(call *callCtx, args []cursor, smallest bool) (cursor, error) {
	coll, err := call.collationArg(args, 1)
	if err != nil {
		return nil, err
	}
	var (
		ctx   = call.dynamic()
		cmp   = coll.Compare
		best  xdm.Value
		widen *xdm.Type
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
		val, err := untypedTo(it.Value(), xdm.TypeDouble)
		if err != nil {
			return nil, err
		}
		switch val.(type) {
		case xdm.Double:
			widen = xdm.TypeDouble
		case xdm.Float:
			if widen != xdm.TypeDouble {
				widen = xdm.TypeFloat
			}
		}
		if val.Type().Numeric() && math.IsNaN(toDouble(val)) {
			return only(xdm.NewAtomicItem(xdm.Double(math.NaN()))), nil
		}
		if best == nil {
			best = val
			continue
		}
		a, b := best, val
		if smallest {
			a, b = val, best
		}
		less, err := xdm.Less(a, b, cmp)
		if err != nil {
			return nil, xdm.Wrap(xdm.CodeBadArgument, err)
		}
		if less {
			best = val
		}
	}
	if best == nil {
		return emptyCursor{}, nil
	}
	if widen != nil && best.Type().Numeric() && best.Type() != widen {
		best, err = xdm.Cast(best, widen)
		if err != nil {
			return nil, err
		}
	}
	return only(xdm.NewAtomicItem(best)), nil
}

func toDouble(v xdm.Value) float64 {
	switch v := v.(type) {
	case xdm.Integer:
		return float64(v)
	case xdm.Decimal:
		return float64(v)
	case xdm.Double:
		return float64(v)
	case xdm.Float:
		return float64(v)
	}
	return math.NaN()
}
