package xdm

import (
	"bytes"
	"strings"
	"time"
)

// Collation orders strings. A nil Collation means codepoint order.
type Collation func(a, b string) int

func collate(c Collation, a, b string) int {
	if c == nil {
		return strings.Compare(a, b)
	}
	return c(a, b)
}

// Equal reports whether two atomic values are equal. Values of types
// that can not be compared with each other raise XPTY0004. NaN is equal
// to nothing, itself included.
func Equal(a, b Value, c Collation) (bool, error) {
	if i, ok := a.(Integer); ok {
		if j, ok := b.(Integer); ok {
			return i == j, nil
		}
	}
	if a.Type().Numeric() {
		if !b.Type().Numeric() {
			return false, incomparable(a, b)
		}
		return toFloat(a) == toFloat(b), nil
	}
	if x, ok := stringValue(a); ok {
		y, ok := stringValue(b)
		if !ok {
			return false, incomparable(a, b)
		}
		return collate(c, x, y) == 0, nil
	}
	if x, ok := a.(Boolean); ok {
		y, ok := b.(Boolean)
		if !ok {
			return false, incomparable(a, b)
		}
		return x == y, nil
	}
	if x, kind, ok := instant(a); ok {
		y, other, ok := instant(b)
		if !ok || kind != other {
			return false, incomparable(a, b)
		}
		return x.Equal(y), nil
	}
	if m1, d1, ok := durationParts(a); ok {
		m2, d2, ok := durationParts(b)
		if !ok {
			return false, incomparable(a, b)
		}
		return m1 == m2 && d1 == d2, nil
	}
	if x, ok := a.(QName); ok {
		y, ok := b.(QName)
		if !ok {
			return false, incomparable(a, b)
		}
		return x.Expanded() == y.Expanded(), nil
	}
	if x, ok := a.(Base64Binary); ok {
		y, ok := b.(Base64Binary)
		if !ok {
			return false, incomparable(a, b)
		}
		return bytes.Equal(x, y), nil
	}
	if x, ok := a.(HexBinary); ok {
		y, ok := b.(HexBinary)
		if !ok {
			return false, incomparable(a, b)
		}
		return bytes.Equal(x, y), nil
	}
	return false, incomparable(a, b)
}

// Less reports whether a sorts before b. Types that only support
// equality, QName and the binary types, raise XPTY0004 - so do ordered
// types mixed across families. NaN sorts before nothing.
func Less(a, b Value, c Collation) (bool, error) {
	if i, ok := a.(Integer); ok {
		if j, ok := b.(Integer); ok {
			return i < j, nil
		}
	}
	if a.Type().Numeric() {
		if !b.Type().Numeric() {
			return false, incomparable(a, b)
		}
		return toFloat(a) < toFloat(b), nil
	}
	if x, ok := stringValue(a); ok {
		y, ok := stringValue(b)
		if !ok {
			return false, incomparable(a, b)
		}
		return collate(c, x, y) < 0, nil
	}
	if x, ok := a.(Boolean); ok {
		y, ok := b.(Boolean)
		if !ok {
			return false, incomparable(a, b)
		}
		return !bool(x) && bool(y), nil
	}
	if x, kind, ok := instant(a); ok {
		y, other, ok := instant(b)
		if !ok || kind != other {
			return false, incomparable(a, b)
		}
		return x.Before(y), nil
	}
	if x, ok := a.(YearMonthDuration); ok {
		y, ok := b.(YearMonthDuration)
		if !ok {
			return false, incomparable(a, b)
		}
		return x < y, nil
	}
	if x, ok := a.(DayTimeDuration); ok {
		y, ok := b.(DayTimeDuration)
		if !ok {
			return false, incomparable(a, b)
		}
		return x < y, nil
	}
	return false, Errorf(CodeType, "%s values have no order", a.Type())
}

func incomparable(a, b Value) error {
	return Errorf(CodeType, "%s can not be compared with %s", a.Type(), b.Type())
}

func stringValue(v Value) (string, bool) {
	switch v := v.(type) {
	case String:
		return string(v), true
	case Untyped:
		return string(v), true
	case AnyURI:
		return string(v), true
	}
	return "", false
}

func instant(v Value) (time.Time, *Type, bool) {
	switch v := v.(type) {
	case DateTime:
		return v.Time, TypeDateTime, true
	case Date:
		return v.Time, TypeDate, true
	case Time:
		return v.Time, TypeTime, true
	}
	return time.Time{}, nil, false
}

func durationParts(v Value) (int, time.Duration, bool) {
	switch v := v.(type) {
	case YearMonthDuration:
		return int(v), 0, true
	case DayTimeDuration:
		return 0, time.Duration(v), true
	}
	return 0, 0, false
}

func toFloat(v Value) float64 {
	switch v := v.(type) {
	case Integer:
		return float64(v)
	case Decimal:
		return float64(v)
	case Double:
		return float64(v)
	case Float:
		return float64(v)
	}
	return 0
}
