package xdm

import (
	"math"
	"testing"
)

func TestCastNumeric(t *testing.T) {
	tests := []struct {
		Value  Value
		Target *Type
		Want   string
	}{
		{Value: String("42"), Target: TypeInteger, Want: "42"},
		{Value: String("  42  "), Target: TypeInteger, Want: "42"},
		{Value: String("-17"), Target: TypeInteger, Want: "-17"},
		{Value: String("3.14"), Target: TypeDecimal, Want: "3.14"},
		{Value: String(".5"), Target: TypeDecimal, Want: "0.5"},
		{Value: String("1e3"), Target: TypeDouble, Want: "1000"},
		{Value: String("INF"), Target: TypeDouble, Want: "INF"},
		{Value: String("-INF"), Target: TypeDouble, Want: "-INF"},
		{Value: String("NaN"), Target: TypeDouble, Want: "NaN"},
		{Value: Untyped("7"), Target: TypeDouble, Want: "7"},
		{Value: Double(3.7), Target: TypeInteger, Want: "3"},
		{Value: Double(-3.7), Target: TypeInteger, Want: "-3"},
		{Value: Integer(3), Target: TypeDouble, Want: "3"},
		{Value: Decimal(2.5), Target: TypeInteger, Want: "2"},
		{Value: Boolean(true), Target: TypeInteger, Want: "1"},
		{Value: Boolean(false), Target: TypeDouble, Want: "0"},
	}
	for _, c := range tests {
		got, err := Cast(c.Value, c.Target)
		if err != nil {
			t.Errorf("cast %s to %s: unexpected error %s", c.Value, c.Target, err)
			continue
		}
		if got.Type() != c.Target {
			t.Errorf("cast %s to %s: got type %s", c.Value, c.Target, got.Type())
			continue
		}
		if got.String() != c.Want {
			t.Errorf("cast %s to %s: want %s, got %s", c.Value, c.Target, c.Want, got.String())
		}
	}
}

func TestCastNumericErrors(t *testing.T) {
	tests := []struct {
		Value  Value
		Target *Type
		Code   string
	}{
		{Value: String("abc"), Target: TypeInteger, Code: CodeInvalidValue},
		{Value: String("1.5"), Target: TypeInteger, Code: CodeInvalidValue},
		{Value: String("1e3"), Target: TypeDecimal, Code: CodeInvalidValue},
		{Value: String("inf"), Target: TypeDouble, Code: CodeInvalidValue},
		{Value: String(""), Target: TypeDouble, Code: CodeInvalidValue},
		{Value: Double(math.NaN()), Target: TypeInteger, Code: CodeCastUndefined},
		{Value: Double(math.Inf(1)), Target: TypeInteger, Code: CodeCastUndefined},
		{Value: Double(math.Inf(-1)), Target: TypeDecimal, Code: CodeCastUndefined},
		{Value: Double(1e300), Target: TypeInteger, Code: CodeCastOverflow},
		{Value: Boolean(true), Target: TypeDateTime, Code: CodeType},
	}
	for _, c := range tests {
		_, err := Cast(c.Value, c.Target)
		if err == nil {
			t.Errorf("cast %s to %s: error expected", c.Value, c.Target)
			continue
		}
		if code := CodeOf(err); code != c.Code {
			t.Errorf("cast %s to %s: want code %s, got %s", c.Value, c.Target, c.Code, code)
		}
	}
}

func TestCastBoolean(t *testing.T) {
	tests := []struct {
		Input string
		Want  bool
		Bad   bool
	}{
		{Input: "true", Want: true},
		{Input: "1", Want: true},
		{Input: "false", Want: false},
		{Input: "0", Want: false},
		{Input: " true ", Want: true},
		{Input: "yes", Bad: true},
		{Input: "TRUE", Bad: true},
		{Input: "", Bad: true},
	}
	for _, c := range tests {
		got, err := Cast(String(c.Input), TypeBoolean)
		if c.Bad {
			if err == nil {
				t.Errorf("cast %q to boolean: error expected", c.Input)
			}
			continue
		}
		if err != nil {
			t.Errorf("cast %q to boolean: unexpected error %s", c.Input, err)
			continue
		}
		if bool(got.(Boolean)) != c.Want {
			t.Errorf("cast %q to boolean: want %t, got %s", c.Input, c.Want, got)
		}
	}
}

func TestCastTemporal(t *testing.T) {
	tests := []struct {
		Input  string
		Target *Type
		Want   string
	}{
		{Input: "2002-10-09T12:00:00", Target: TypeDateTime, Want: "2002-10-09T12:00:00"},
		{Input: "2002-10-09T12:00:00Z", Target: TypeDateTime, Want: "2002-10-09T12:00:00Z"},
		{Input: "2002-10-09T12:00:00+05:00", Target: TypeDateTime, Want: "2002-10-09T12:00:00+05:00"},
		{Input: "2002-10-09T12:00:00.5", Target: TypeDateTime, Want: "2002-10-09T12:00:00.5"},
		{Input: "2002-10-09", Target: TypeDate, Want: "2002-10-09"},
		{Input: "2002-10-09-05:00", Target: TypeDate, Want: "2002-10-09-05:00"},
		{Input: "12:30:45", Target: TypeTime, Want: "12:30:45"},
		{Input: "12:30:45.25Z", Target: TypeTime, Want: "12:30:45.25Z"},
	}
	for _, c := range tests {
		got, err := Cast(String(c.Input), c.Target)
		if err != nil {
			t.Errorf("cast %q to %s: unexpected error %s", c.Input, c.Target, err)
			continue
		}
		if got.String() != c.Want {
			t.Errorf("cast %q to %s: want %s, got %s", c.Input, c.Target, c.Want, got.String())
		}
	}
}

func TestCastTemporalTruncate(t *testing.T) {
	dt, err := Cast(String("2002-10-09T12:30:45Z"), TypeDateTime)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	date, err := Cast(dt, TypeDate)
	if err != nil {
		t.Fatalf("cast dateTime to date: %s", err)
	}
	if date.String() != "2002-10-09Z" {
		t.Errorf("dateTime to date: got %s", date.String())
	}
	clock, err := Cast(dt, TypeTime)
	if err != nil {
		t.Fatalf("cast dateTime to time: %s", err)
	}
	if clock.String() != "12:30:45Z" {
		t.Errorf("dateTime to time: got %s", clock.String())
	}
	back, err := Cast(date, TypeDateTime)
	if err != nil {
		t.Fatalf("cast date to dateTime: %s", err)
	}
	if back.String() != "2002-10-09T00:00:00Z" {
		t.Errorf("date to dateTime: got %s", back.String())
	}
	if _, err := Cast(clock, TypeDate); err == nil {
		t.Errorf("time to date: error expected")
	}
}

func TestCastDuration(t *testing.T) {
	tests := []struct {
		Input  string
		Target *Type
		Want   string
		Bad    bool
	}{
		{Input: "P1Y2M", Target: TypeYearMonth, Want: "P1Y2M"},
		{Input: "P14M", Target: TypeYearMonth, Want: "P1Y2M"},
		{Input: "-P1Y", Target: TypeYearMonth, Want: "-P1Y"},
		{Input: "P0Y", Target: TypeYearMonth, Want: "P0M"},
		{Input: "PT1H30M", Target: TypeDayTime, Want: "PT1H30M"},
		{Input: "P1DT2H", Target: TypeDayTime, Want: "P1DT2H"},
		{Input: "PT0.5S", Target: TypeDayTime, Want: "PT0.5S"},
		{Input: "-P2D", Target: TypeDayTime, Want: "-P2D"},
		{Input: "P1Y", Target: TypeDuration, Want: "P1Y"},
		{Input: "PT5S", Target: TypeDuration, Want: "PT5S"},
		{Input: "P1Y1D", Target: TypeDuration, Bad: true},
		{Input: "P1D", Target: TypeYearMonth, Bad: true},
		{Input: "P1M", Target: TypeDayTime, Bad: true},
		{Input: "P", Target: TypeDuration, Bad: true},
		{Input: "PT", Target: TypeDuration, Bad: true},
		{Input: "P1M1Y", Target: TypeDuration, Bad: true},
		{Input: "P1.5D", Target: TypeDuration, Bad: true},
	}
	for _, c := range tests {
		got, err := Cast(String(c.Input), c.Target)
		if c.Bad {
			if err == nil {
				t.Errorf("cast %q to %s: error expected", c.Input, c.Target)
			}
			continue
		}
		if err != nil {
			t.Errorf("cast %q to %s: unexpected error %s", c.Input, c.Target, err)
			continue
		}
		if got.String() != c.Want {
			t.Errorf("cast %q to %s: want %s, got %s", c.Input, c.Target, c.Want, got.String())
		}
	}
}

func TestCastDurationSubtypes(t *testing.T) {
	ym, _ := Cast(String("P1Y"), TypeYearMonth)
	dt, err := Cast(ym, TypeDayTime)
	if err != nil {
		t.Fatalf("yearMonth to dayTime: %s", err)
	}
	if dt.String() != "PT0S" {
		t.Errorf("yearMonth to dayTime: want PT0S, got %s", dt.String())
	}
	day, _ := Cast(String("P1D"), TypeDayTime)
	back, err := Cast(day, TypeYearMonth)
	if err != nil {
		t.Fatalf("dayTime to yearMonth: %s", err)
	}
	if back.String() != "P0M" {
		t.Errorf("dayTime to yearMonth: want P0M, got %s", back.String())
	}
}

func TestCastBinary(t *testing.T) {
	hx, err := Cast(String("48656c6c6f"), TypeHex)
	if err != nil {
		t.Fatalf("cast to hexBinary: %s", err)
	}
	if hx.String() != "48656C6C6F" {
		t.Errorf("hexBinary: got %s", hx.String())
	}
	b64, err := Cast(hx, TypeBase64)
	if err != nil {
		t.Fatalf("hexBinary to base64Binary: %s", err)
	}
	if b64.String() != "SGVsbG8=" {
		t.Errorf("base64Binary: got %s", b64.String())
	}
	if _, err := Cast(String("zz"), TypeHex); err == nil {
		t.Errorf("invalid hex: error expected")
	}
}

func TestCastName(t *testing.T) {
	got, err := Cast(String("item"), TypeQName)
	if err != nil {
		t.Fatalf("cast to QName: %s", err)
	}
	if got.String() != "item" {
		t.Errorf("QName: got %s", got.String())
	}
	if _, err := Cast(String("ns:item"), TypeQName); err == nil {
		t.Errorf("prefixed name without resolver: error expected")
	}
	if _, err := Cast(String("not a name"), TypeQName); err == nil {
		t.Errorf("invalid name: error expected")
	}
}

func TestCastString(t *testing.T) {
	tests := []struct {
		Value Value
		Want  string
	}{
		{Value: Integer(42), Want: "42"},
		{Value: Double(0.5), Want: "0.5"},
		{Value: Double(5e7), Want: "5.0E7"},
		{Value: Boolean(true), Want: "true"},
		{Value: AnyURI("http://localhost"), Want: "http://localhost"},
	}
	for _, c := range tests {
		got, err := Cast(c.Value, TypeString)
		if err != nil {
			t.Errorf("cast %s to string: unexpected error %s", c.Value, err)
			continue
		}
		if string(got.(String)) != c.Want {
			t.Errorf("cast to string: want %q, got %q", c.Want, got)
		}
	}
}
