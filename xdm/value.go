package xdm

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Value is an immutable atomic value. String returns the lexical form
// used by the string cast.
type Value interface {
	Type() *Type
	String() string
}

type (
	Boolean bool
	Integer int64
	Decimal float64
	Double  float64
	Float   float32
	String  string
	Untyped string
	AnyURI  string
)

func (v Boolean) Type() *Type { return TypeBoolean }
func (v Integer) Type() *Type { return TypeInteger }
func (v Decimal) Type() *Type { return TypeDecimal }
func (v Double) Type() *Type  { return TypeDouble }
func (v Float) Type() *Type   { return TypeFloat }
func (v String) Type() *Type  { return TypeString }
func (v Untyped) Type() *Type { return TypeUntyped }
func (v AnyURI) Type() *Type  { return TypeAnyURI }

func (v Boolean) String() string {
	return strconv.FormatBool(bool(v))
}

func (v Integer) String() string {
	return strconv.FormatInt(int64(v), 10)
}

func (v Decimal) String() string {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return formatDouble(f)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (v Double) String() string {
	return formatDouble(float64(v))
}

func (v Float) String() string {
	return formatDouble(float64(v))
}

func (v String) String() string  { return string(v) }
func (v Untyped) String() string { return string(v) }
func (v AnyURI) String() string  { return string(v) }

func (q QName) Type() *Type { return TypeQName }

func (q QName) String() string {
	return q.QualifiedName()
}

// DateTime, Date and Time keep the timezone decision explicit: Zoned
// reports whether the lexical form carried one.
type DateTime struct {
	Time  time.Time
	Zoned bool
}

func (v DateTime) Type() *Type { return TypeDateTime }

func (v DateTime) String() string {
	str := v.Time.Format("2006-01-02T15:04:05") + formatFraction(v.Time)
	return str + formatZone(v.Time, v.Zoned)
}

type Date struct {
	Time  time.Time
	Zoned bool
}

func (v Date) Type() *Type { return TypeDate }

func (v Date) String() string {
	return v.Time.Format("2006-01-02") + formatZone(v.Time, v.Zoned)
}

type Time struct {
	Time  time.Time
	Zoned bool
}

func (v Time) Type() *Type { return TypeTime }

func (v Time) String() string {
	str := v.Time.Format("15:04:05") + formatFraction(v.Time)
	return str + formatZone(v.Time, v.Zoned)
}

// YearMonthDuration counts months, DayTimeDuration wraps a nanosecond
// duration; both carry their own sign.
type YearMonthDuration int

func (v YearMonthDuration) Type() *Type { return TypeYearMonth }

func (v YearMonthDuration) String() string {
	months := int(v)
	var str strings.Builder
	if months < 0 {
		str.WriteByte('-')
		months = -months
	}
	str.WriteByte('P')
	if y := months / 12; y > 0 {
		fmt.Fprintf(&str, "%dY", y)
	}
	if m := months % 12; m > 0 || months == 0 {
		fmt.Fprintf(&str, "%dM", m)
	}
	return str.String()
}

type DayTimeDuration time.Duration

func (v DayTimeDuration) Type() *Type { return TypeDayTime }

func (v DayTimeDuration) String() string {
	d := time.Duration(v)
	var str strings.Builder
	if d < 0 {
		str.WriteByte('-')
		d = -d
	}
	str.WriteByte('P')
	if days := d / (24 * time.Hour); days > 0 {
		fmt.Fprintf(&str, "%dD", days)
		d -= days * 24 * time.Hour
	}
	if d == 0 {
		if str.String() == "P" || str.String() == "-P" {
			str.WriteString("T0S")
		}
		return str.String()
	}
	str.WriteByte('T')
	if h := d / time.Hour; h > 0 {
		fmt.Fprintf(&str, "%dH", h)
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		fmt.Fprintf(&str, "%dM", m)
		d -= m * time.Minute
	}
	if d > 0 {
		sec := strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
		fmt.Fprintf(&str, "%sS", sec)
	}
	return str.String()
}

// Seconds returns the duration in seconds, fraction included.
func (v DayTimeDuration) Seconds() float64 {
	return time.Duration(v).Seconds()
}

type Base64Binary []byte

func (v Base64Binary) Type() *Type { return TypeBase64 }

func (v Base64Binary) String() string {
	return base64.StdEncoding.EncodeToString(v)
}

type HexBinary []byte

func (v HexBinary) Type() *Type { return TypeHex }

func (v HexBinary) String() string {
	return strings.ToUpper(hex.EncodeToString(v))
}

func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case f == 0:
		if math.Signbit(f) {
			return "-0"
		}
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e6 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	str := strconv.FormatFloat(f, 'E', -1, 64)
	mant, exp, _ := strings.Cut(str, "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	neg := strings.HasPrefix(exp, "-")
	exp = strings.TrimLeft(strings.TrimPrefix(exp, "-"), "+0")
	if exp == "" {
		exp = "0"
	}
	if neg {
		exp = "-" + exp
	}
	return mant + "E" + exp
}

func formatFraction(t time.Time) string {
	ns := t.Nanosecond()
	if ns == 0 {
		return ""
	}
	str := strings.TrimRight(fmt.Sprintf(".%09d", ns), "0")
	return str
}

func formatZone(t time.Time, zoned bool) string {
	if !zoned {
		return ""
	}
	_, offset := t.Zone()
	if offset == 0 {
		return "Z"
	}
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%02d:%02d", sign, offset/3600, offset%3600/60)
}
