package xdm

import (
	"math"
	"time"
)

// Add computes a + b following the operator table: numeric addition
// with type promotion, durations between themselves, and durations
// added to dates and times in either operand order.
func Add(a, b Value) (Value, error) {
	if a.Type().Numeric() && b.Type().Numeric() {
		return numericAdd(a, b)
	}
	if _, _, ok := durationParts(a); ok {
		if _, _, ok := instant(b); ok {
			a, b = b, a
		}
	}
	if _, _, ok := instant(a); ok {
		return shiftInstant(a, b, 1)
	}
	if x, ok := a.(YearMonthDuration); ok {
		y, ok := b.(YearMonthDuration)
		if !ok {
			return nil, badOperands("+", a, b)
		}
		return YearMonthDuration(x + y), nil
	}
	if x, ok := a.(DayTimeDuration); ok {
		y, ok := b.(DayTimeDuration)
		if !ok {
			return nil, badOperands("+", a, b)
		}
		return DayTimeDuration(x + y), nil
	}
	return nil, badOperands("+", a, b)
}

// Subtract computes a - b. Subtracting two dates or times of the same
// kind gives the dayTimeDuration between them.
func Subtract(a, b Value) (Value, error) {
	if a.Type().Numeric() && b.Type().Numeric() {
		return numericSub(a, b)
	}
	if t, kind, ok := instant(a); ok {
		if u, other, ok := instant(b); ok {
			if kind != other {
				return nil, badOperands("-", a, b)
			}
			return DayTimeDuration(t.Sub(u)), nil
		}
		return shiftInstant(a, b, -1)
	}
	if x, ok := a.(YearMonthDuration); ok {
		y, ok := b.(YearMonthDuration)
		if !ok {
			return nil, badOperands("-", a, b)
		}
		return YearMonthDuration(x - y), nil
	}
	if x, ok := a.(DayTimeDuration); ok {
		y, ok := b.(DayTimeDuration)
		if !ok {
			return nil, badOperands("-", a, b)
		}
		return DayTimeDuration(x - y), nil
	}
	return nil, badOperands("-", a, b)
}

// Multiply computes a * b: numeric multiplication, or a duration scaled
// by a number in either operand order.
func Multiply(a, b Value) (Value, error) {
	if a.Type().Numeric() && b.Type().Numeric() {
		return numericMul(a, b)
	}
	if a.Type().Numeric() {
		a, b = b, a
	}
	if _, _, ok := durationParts(a); ok && b.Type().Numeric() {
		return scaleDuration(a, toFloat(b), false)
	}
	return nil, badOperands("*", a, b)
}

// Divide computes a div b. Dividing two integers gives a decimal;
// dividing two durations of the same kind gives a decimal ratio.
func Divide(a, b Value) (Value, error) {
	if a.Type().Numeric() && b.Type().Numeric() {
		return numericDiv(a, b)
	}
	if x, ok := a.(YearMonthDuration); ok {
		if y, ok := b.(YearMonthDuration); ok {
			if y == 0 {
				return nil, NewError(CodeDivZero, "division by zero")
			}
			return Decimal(float64(x) / float64(y)), nil
		}
	}
	if x, ok := a.(DayTimeDuration); ok {
		if y, ok := b.(DayTimeDuration); ok {
			if y == 0 {
				return nil, NewError(CodeDivZero, "division by zero")
			}
			return Decimal(float64(x) / float64(y)), nil
		}
	}
	if _, _, ok := durationParts(a); ok && b.Type().Numeric() {
		return scaleDuration(a, toFloat(b), true)
	}
	return nil, badOperands("div", a, b)
}

// IntegerDivide computes a idiv b, truncating toward zero.
func IntegerDivide(a, b Value) (Value, error) {
	if !a.Type().Numeric() || !b.Type().Numeric() {
		return nil, badOperands("idiv", a, b)
	}
	if promote(a, b) == TypeInteger {
		x, y := toInt(a), toInt(b)
		if y == 0 {
			return nil, NewError(CodeDivZero, "division by zero")
		}
		if x == math.MinInt64 && y == -1 {
			return nil, NewError(CodeNumericRange, "integer overflow")
		}
		return Integer(x / y), nil
	}
	x, y := toFloat(a), toFloat(b)
	if y == 0 {
		return nil, NewError(CodeDivZero, "division by zero")
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) {
		return nil, NewError(CodeNumericRange, "operand out of range for idiv")
	}
	q := math.Trunc(x / y)
	if q >= math.MaxInt64 || q < math.MinInt64 {
		return nil, NewError(CodeNumericRange, "integer overflow")
	}
	return Integer(int64(q)), nil
}

// Modulo computes a mod b. The result keeps the sign of the dividend.
func Modulo(a, b Value) (Value, error) {
	if !a.Type().Numeric() || !b.Type().Numeric() {
		return nil, badOperands("mod", a, b)
	}
	t := promote(a, b)
	if t == TypeInteger {
		x, y := toInt(a), toInt(b)
		if y == 0 {
			return nil, NewError(CodeDivZero, "division by zero")
		}
		return Integer(x % y), nil
	}
	x, y := toFloat(a), toFloat(b)
	if t == TypeDecimal && y == 0 {
		return nil, NewError(CodeDivZero, "division by zero")
	}
	return numericResult(t, math.Mod(x, y))
}

func badOperands(op string, a, b Value) error {
	return Errorf(CodeType, "operator %s is not defined on %s and %s", op, a.Type(), b.Type())
}

func promote(a, b Value) *Type {
	x, y := a.Type(), b.Type()
	if x.rank() >= y.rank() {
		return x
	}
	return y
}

func toInt(v Value) int64 {
	i, _ := v.(Integer)
	return int64(i)
}

func numericAdd(a, b Value) (Value, error) {
	if t := promote(a, b); t != TypeInteger {
		return numericResult(t, toFloat(a)+toFloat(b))
	}
	x, y := toInt(a), toInt(b)
	sum := x + y
	if (x > 0 && y > 0 && sum < 0) || (x < 0 && y < 0 && sum >= 0) {
		return nil, NewError(CodeNumericRange, "integer overflow")
	}
	return Integer(sum), nil
}

func numericSub(a, b Value) (Value, error) {
	if t := promote(a, b); t != TypeInteger {
		return numericResult(t, toFloat(a)-toFloat(b))
	}
	x, y := toInt(a), toInt(b)
	diff := x - y
	if (x > 0 && y < 0 && diff < 0) || (x < 0 && y > 0 && diff >= 0) {
		return nil, NewError(CodeNumericRange, "integer overflow")
	}
	return Integer(diff), nil
}

func numericMul(a, b Value) (Value, error) {
	if t := promote(a, b); t != TypeInteger {
		return numericResult(t, toFloat(a)*toFloat(b))
	}
	x, y := toInt(a), toInt(b)
	if x == 0 || y == 0 {
		return Integer(0), nil
	}
	prod := x * y
	if prod/y != x || (x == math.MinInt64 && y == -1) {
		return nil, NewError(CodeNumericRange, "integer overflow")
	}
	return Integer(prod), nil
}

func numericDiv(a, b Value) (Value, error) {
	t := promote(a, b)
	if t == TypeInteger {
		t = TypeDecimal
	}
	x, y := toFloat(a), toFloat(b)
	if t == TypeDecimal && y == 0 {
		return nil, NewError(CodeDivZero, "division by zero")
	}
	return numericResult(t, x/y)
}

func numericResult(t *Type, f float64) (Value, error) {
	switch t {
	case TypeDouble:
		return Double(f), nil
	case TypeFloat:
		return Float(float32(f)), nil
	default:
		if math.IsInf(f, 0) {
			return nil, NewError(CodeNumericRange, "decimal overflow")
		}
		return Decimal(f), nil
	}
}

func shiftInstant(src, dur Value, sign int) (Value, error) {
	t, kind, _ := instant(src)
	switch d := dur.(type) {
	case YearMonthDuration:
		if kind == TypeTime {
			return nil, Errorf(CodeType, "can not add a yearMonthDuration to a time")
		}
		t = addMonths(t, sign*int(d))
	case DayTimeDuration:
		t = t.Add(time.Duration(sign) * time.Duration(d))
	default:
		return nil, Errorf(CodeType, "%s can not be added to %s", dur.Type(), kind)
	}
	zoned := isZoned(src)
	switch kind {
	case TypeDateTime:
		return DateTime{Time: t, Zoned: zoned}, nil
	case TypeDate:
		y, m, d := t.Date()
		return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, t.Location()), Zoned: zoned}, nil
	default:
		return Time{Time: time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()), Zoned: zoned}, nil
	}
}

func isZoned(v Value) bool {
	switch v := v.(type) {
	case DateTime:
		return v.Zoned
	case Date:
		return v.Zoned
	case Time:
		return v.Zoned
	}
	return false
}

// addMonths shifts t by whole months, clamping the day of month to the
// last valid day instead of letting it roll over.
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + months
	y += total / 12
	total %= 12
	if total < 0 {
		total += 12
		y--
	}
	m = time.Month(total + 1)
	if last := daysIn(y, m); d > last {
		d = last
	}
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func scaleDuration(dur Value, f float64, invert bool) (Value, error) {
	if math.IsNaN(f) {
		return nil, NewError(CodeNotANumber, "NaN can not scale a duration")
	}
	if invert {
		if f == 0 {
			return nil, NewError(CodeDivZero, "division by zero")
		}
		f = 1 / f
	}
	if ym, ok := dur.(YearMonthDuration); ok {
		scaled := math.Round(float64(ym) * f)
		if math.IsInf(scaled, 0) || scaled > math.MaxInt32 || scaled < math.MinInt32 {
			return nil, NewError(CodeDurationRange, "duration overflow")
		}
		return YearMonthDuration(int(scaled)), nil
	}
	dt, _ := dur.(DayTimeDuration)
	scaled := math.Round(float64(dt) * f)
	if math.IsInf(scaled, 0) || scaled >= math.MaxInt64 || scaled < math.MinInt64 {
		return nil, NewError(CodeDurationRange, "duration overflow")
	}
	return DayTimeDuration(time.Duration(scaled)), nil
}
