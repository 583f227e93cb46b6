package xdm

import (
	"encoding/base64"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Cast converts v to the target type following the casting table of the
// language. Lexical failures report FORG0001, impossible source/target
// pairs XPTY0004, range failures the FOCA codes.
func Cast(v Value, target *Type) (Value, error) {
	if v.Type() == target {
		return v, nil
	}
	switch target {
	case TypeString:
		return String(v.String()), nil
	case TypeUntyped:
		return Untyped(v.String()), nil
	case TypeAnyAtomic:
		return v, nil
	case TypeBoolean:
		return castBoolean(v)
	case TypeInteger, TypeDecimal, TypeFloat, TypeDouble:
		return castNumeric(v, target)
	case TypeAnyURI:
		switch v := v.(type) {
		case String:
			return AnyURI(strings.TrimSpace(string(v))), nil
		case Untyped:
			return AnyURI(strings.TrimSpace(string(v))), nil
		}
	case TypeQName:
		return castName(v)
	case TypeDateTime, TypeDate, TypeTime:
		return castTemporal(v, target)
	case TypeDuration, TypeYearMonth, TypeDayTime:
		return castDuration(v, target)
	case TypeBase64:
		return castBinary(v, target)
	case TypeHex:
		return castBinary(v, target)
	}
	return nil, Errorf(CodeType, "%s can not be cast to %s", v.Type(), target)
}

// Castable reports whether Cast would succeed.
func Castable(v Value, target *Type) bool {
	_, err := Cast(v, target)
	return err == nil
}

func castBoolean(v Value) (Value, error) {
	switch v := v.(type) {
	case Boolean:
		return v, nil
	case Integer:
		return Boolean(v != 0), nil
	case Decimal:
		return Boolean(v != 0 && !math.IsNaN(float64(v))), nil
	case Double:
		return Boolean(v != 0 && !math.IsNaN(float64(v))), nil
	case Float:
		return Boolean(v != 0 && !math.IsNaN(float64(v))), nil
	case String:
		return parseBoolean(string(v))
	case Untyped:
		return parseBoolean(string(v))
	}
	return nil, Errorf(CodeType, "%s can not be cast to xs:boolean", v.Type())
}

func parseBoolean(str string) (Value, error) {
	switch strings.TrimSpace(str) {
	case "true", "1":
		return Boolean(true), nil
	case "false", "0":
		return Boolean(false), nil
	default:
		return nil, Errorf(CodeInvalidValue, "%q is not a valid xs:boolean", str)
	}
}

func castNumeric(v Value, target *Type) (Value, error) {
	switch v := v.(type) {
	case Integer:
		return numericFromFloat(float64(v), target)
	case Decimal:
		return numericFromFloat(float64(v), target)
	case Double:
		return numericFromFloat(float64(v), target)
	case Float:
		return numericFromFloat(float64(v), target)
	case Boolean:
		var f float64
		if v {
			f = 1
		}
		return numericFromFloat(f, target)
	case String:
		return parseNumeric(string(v), target)
	case Untyped:
		return parseNumeric(string(v), target)
	}
	return nil, Errorf(CodeType, "%s can not be cast to %s", v.Type(), target)
}

func numericFromFloat(f float64, target *Type) (Value, error) {
	switch target {
	case TypeDouble:
		return Double(f), nil
	case TypeFloat:
		return Float(float32(f)), nil
	case TypeDecimal:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, NewError(CodeCastUndefined, "NaN and INF have no decimal value")
		}
		return Decimal(f), nil
	case TypeInteger:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, NewError(CodeCastUndefined, "NaN and INF have no integer value")
		}
		if f >= math.MaxInt64 || f < math.MinInt64 {
			return nil, NewError(CodeCastOverflow, "value out of range for xs:integer")
		}
		return Integer(int64(math.Trunc(f))), nil
	}
	return nil, Errorf(CodeType, "unsupported numeric target %s", target)
}

func parseNumeric(str string, target *Type) (Value, error) {
	str = strings.TrimSpace(str)
	fail := func() (Value, error) {
		return nil, Errorf(CodeInvalidValue, "%q is not a valid %s", str, target)
	}
	switch target {
	case TypeInteger:
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return fail()
		}
		return Integer(n), nil
	case TypeDecimal:
		if !validNumber(str, false) {
			return fail()
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fail()
		}
		return Decimal(f), nil
	case TypeDouble, TypeFloat:
		switch str {
		case "INF":
			return numericFromFloat(math.Inf(1), target)
		case "-INF":
			return numericFromFloat(math.Inf(-1), target)
		case "NaN":
			return numericFromFloat(math.NaN(), target)
		}
		if !validNumber(str, true) {
			return fail()
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fail()
		}
		return numericFromFloat(f, target)
	}
	return fail()
}

// validNumber checks the language lexical form: optional sign, digits
// with optional fraction, optional exponent when allowed. Go accepts
// forms like "0x1p4" or "inf" that must be rejected here.
func validNumber(str string, exponent bool) bool {
	if str == "" {
		return false
	}
	if str[0] == '+' || str[0] == '-' {
		str = str[1:]
	}
	mant, exp, has := strings.Cut(str, "e")
	if !has {
		mant, exp, has = strings.Cut(str, "E")
	}
	if has && !exponent {
		return false
	}
	intpart, frac, dot := strings.Cut(mant, ".")
	if !allDigits(intpart) || !allDigits(frac) {
		return false
	}
	if intpart == "" && (!dot || frac == "") {
		return false
	}
	if !dot && intpart == "" {
		return false
	}
	if has {
		if exp != "" && (exp[0] == '+' || exp[0] == '-') {
			exp = exp[1:]
		}
		if exp == "" || !allDigits(exp) {
			return false
		}
	}
	return true
}

func allDigits(str string) bool {
	for _, r := range str {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func castName(v Value) (Value, error) {
	switch v := v.(type) {
	case QName:
		return v, nil
	case String:
		return ParseName(string(v), nil)
	case Untyped:
		return ParseName(string(v), nil)
	}
	return nil, Errorf(CodeType, "%s can not be cast to xs:QName", v.Type())
}

// ParseName builds a QName value from a lexical name. Prefixed names need
// resolve to map the prefix onto a namespace; a nil resolve accepts only
// unprefixed names.
func ParseName(str string, resolve func(prefix string) (string, bool)) (Value, error) {
	str = strings.TrimSpace(str)
	prefix, local, found := strings.Cut(str, ":")
	if !found {
		if !validNCName(str) {
			return nil, Errorf(CodeInvalidValue, "%q is not a valid xs:QName", str)
		}
		return LocalName(str), nil
	}
	if !validNCName(prefix) || !validNCName(local) {
		return nil, Errorf(CodeInvalidValue, "%q is not a valid xs:QName", str)
	}
	if resolve == nil {
		return nil, Errorf(CodeUnknownPrefix, "prefix %q can not be resolved", prefix)
	}
	uri, ok := resolve(prefix)
	if !ok {
		return nil, Errorf(CodeUnknownPrefix, "prefix %q can not be resolved", prefix)
	}
	q := QualifiedName(local, prefix)
	q.Uri = uri
	return q, nil
}

func validNCName(str string) bool {
	if str == "" {
		return false
	}
	for i, r := range str {
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			return false
		}
		if i > 0 && !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' {
			return false
		}
	}
	return true
}

func castTemporal(v Value, target *Type) (Value, error) {
	switch v := v.(type) {
	case DateTime:
		switch target {
		case TypeDateTime:
			return v, nil
		case TypeDate:
			y, m, d := v.Time.Date()
			return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, v.Time.Location()), Zoned: v.Zoned}, nil
		case TypeTime:
			h, min, sec := v.Time.Clock()
			return Time{Time: time.Date(0, 1, 1, h, min, sec, v.Time.Nanosecond(), v.Time.Location()), Zoned: v.Zoned}, nil
		}
	case Date:
		switch target {
		case TypeDate:
			return v, nil
		case TypeDateTime:
			return DateTime{Time: v.Time, Zoned: v.Zoned}, nil
		}
	case Time:
		if target == TypeTime {
			return v, nil
		}
	case String:
		return parseTemporal(string(v), target)
	case Untyped:
		return parseTemporal(string(v), target)
	}
	return nil, Errorf(CodeType, "%s can not be cast to %s", v.Type(), target)
}

func parseTemporal(str string, target *Type) (Value, error) {
	str = strings.TrimSpace(str)
	var (
		layout string
		zoned  bool
	)
	switch {
	case strings.HasSuffix(str, "Z"):
		zoned = true
	case len(str) > 6 && (str[len(str)-6] == '+' || str[len(str)-6] == '-') && str[len(str)-3] == ':':
		// an offset suffix is +hh:mm or -hh:mm; a bare date ends in two
		// digits so the colon test can not misfire on its dashes
		zoned = true
	}
	switch target {
	case TypeDateTime:
		layout = "2006-01-02T15:04:05.999999999"
	case TypeDate:
		layout = "2006-01-02"
	case TypeTime:
		layout = "15:04:05.999999999"
	}
	if zoned {
		layout += "Z07:00"
	}
	t, err := time.Parse(layout, str)
	if err != nil {
		return nil, Errorf(CodeInvalidValue, "%q is not a valid %s", str, target)
	}
	switch target {
	case TypeDateTime:
		return DateTime{Time: t, Zoned: zoned}, nil
	case TypeDate:
		return Date{Time: t, Zoned: zoned}, nil
	default:
		return Time{Time: time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()), Zoned: zoned}, nil
	}
}

func castDuration(v Value, target *Type) (Value, error) {
	switch v := v.(type) {
	case YearMonthDuration:
		switch target {
		case TypeYearMonth, TypeDuration:
			return v, nil
		case TypeDayTime:
			return DayTimeDuration(0), nil
		}
	case DayTimeDuration:
		switch target {
		case TypeDayTime, TypeDuration:
			return v, nil
		case TypeYearMonth:
			return YearMonthDuration(0), nil
		}
	case String:
		return parseDuration(string(v), target)
	case Untyped:
		return parseDuration(string(v), target)
	}
	return nil, Errorf(CodeType, "%s can not be cast to %s", v.Type(), target)
}

func parseDuration(str string, target *Type) (Value, error) {
	months, nanos, err := scanDuration(strings.TrimSpace(str))
	if err != nil {
		return nil, Errorf(CodeInvalidValue, "%q is not a valid %s", str, target)
	}
	switch target {
	case TypeYearMonth:
		if nanos != 0 {
			return nil, Errorf(CodeInvalidValue, "%q is not a valid xs:yearMonthDuration", str)
		}
		return YearMonthDuration(months), nil
	case TypeDayTime:
		if months != 0 {
			return nil, Errorf(CodeInvalidValue, "%q is not a valid xs:dayTimeDuration", str)
		}
		return DayTimeDuration(nanos), nil
	default:
		// the model stores the two duration families separately; a mixed
		// lexical form has no representation
		if months != 0 && nanos != 0 {
			return nil, Errorf(CodeInvalidValue, "mixed duration %q is not supported", str)
		}
		if months != 0 {
			return YearMonthDuration(months), nil
		}
		return DayTimeDuration(nanos), nil
	}
}

func scanDuration(str string) (int, time.Duration, error) {
	var (
		neg    bool
		months int
		nanos  time.Duration
		seen   bool
	)
	fail := func() (int, time.Duration, error) {
		return 0, 0, NewError(CodeInvalidValue, "invalid duration")
	}
	if strings.HasPrefix(str, "-") {
		neg = true
		str = str[1:]
	}
	if !strings.HasPrefix(str, "P") {
		return fail()
	}
	str = str[1:]
	date, clock, hasT := strings.Cut(str, "T")
	if hasT && clock == "" {
		return fail()
	}
	read := func(s string, marks string) (map[byte]float64, bool) {
		got := make(map[byte]float64)
		for s != "" {
			i := 0
			for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
				i++
			}
			if i == 0 || i == len(s) {
				return nil, false
			}
			mark := s[i]
			if !strings.Contains(marks, string(mark)) {
				return nil, false
			}
			if mark != 'S' && strings.Contains(s[:i], ".") {
				return nil, false
			}
			f, err := strconv.ParseFloat(s[:i], 64)
			if err != nil {
				return nil, false
			}
			got[mark] = f
			s = s[i+1:]
			marks = marks[strings.Index(marks, string(mark))+1:]
		}
		return got, true
	}
	parts, ok := read(date, "YMD")
	if !ok {
		return fail()
	}
	for mark, f := range parts {
		seen = true
		switch mark {
		case 'Y':
			months += int(f) * 12
		case 'M':
			months += int(f)
		case 'D':
			nanos += time.Duration(f) * 24 * time.Hour
		}
	}
	if hasT {
		parts, ok = read(clock, "HMS")
		if !ok {
			return fail()
		}
		for mark, f := range parts {
			seen = true
			switch mark {
			case 'H':
				nanos += time.Duration(f) * time.Hour
			case 'M':
				nanos += time.Duration(f) * time.Minute
			case 'S':
				nanos += time.Duration(f * float64(time.Second))
			}
		}
	}
	if !seen {
		return fail()
	}
	if neg {
		months = -months
		nanos = -nanos
	}
	return months, nanos, nil
}

func castBinary(v Value, target *Type) (Value, error) {
	var (
		data []byte
		err  error
	)
	switch v := v.(type) {
	case Base64Binary:
		data = []byte(v)
	case HexBinary:
		data = []byte(v)
	case String:
		data, err = decodeBinary(string(v), target)
	case Untyped:
		data, err = decodeBinary(string(v), target)
	default:
		return nil, Errorf(CodeType, "%s can not be cast to %s", v.Type(), target)
	}
	if err != nil {
		return nil, err
	}
	if target == TypeBase64 {
		return Base64Binary(data), nil
	}
	return HexBinary(data), nil
}

func decodeBinary(str string, target *Type) ([]byte, error) {
	str = strings.TrimSpace(str)
	if target == TypeBase64 {
		data, err := base64.StdEncoding.DecodeString(str)
		if err != nil {
			return nil, Errorf(CodeInvalidValue, "%q is not a valid xs:base64Binary", str)
		}
		return data, nil
	}
	data, err := hex.DecodeString(str)
	if err != nil {
		return nil, Errorf(CodeInvalidValue, "%q is not a valid xs:hexBinary", str)
	}
	return data, nil
}
