package xdm

import (
	"math"
	"testing"
)

func TestNumericArith(t *testing.T) {
	tests := []struct {
		Op    string
		Left  Value
		Right Value
		Want  string
		Type  *Type
	}{
		{Op: "+", Left: Integer(1), Right: Integer(2), Want: "3", Type: TypeInteger},
		{Op: "+", Left: Integer(1), Right: Decimal(2.5), Want: "3.5", Type: TypeDecimal},
		{Op: "+", Left: Decimal(1.5), Right: Double(1), Want: "2.5", Type: TypeDouble},
		{Op: "-", Left: Integer(1), Right: Integer(5), Want: "-4", Type: TypeInteger},
		{Op: "*", Left: Integer(6), Right: Integer(7), Want: "42", Type: TypeInteger},
		{Op: "*", Left: Double(0.5), Right: Integer(4), Want: "2", Type: TypeDouble},
		{Op: "div", Left: Integer(1), Right: Integer(2), Want: "0.5", Type: TypeDecimal},
		{Op: "div", Left: Double(1), Right: Double(0), Want: "INF", Type: TypeDouble},
		{Op: "div", Left: Double(0), Right: Double(0), Want: "NaN", Type: TypeDouble},
		{Op: "idiv", Left: Integer(5), Right: Integer(2), Want: "2", Type: TypeInteger},
		{Op: "idiv", Left: Integer(-5), Right: Integer(2), Want: "-2", Type: TypeInteger},
		{Op: "idiv", Left: Double(7.5), Right: Integer(2), Want: "3", Type: TypeInteger},
		{Op: "mod", Left: Integer(5), Right: Integer(2), Want: "1", Type: TypeInteger},
		{Op: "mod", Left: Integer(-5), Right: Integer(2), Want: "-1", Type: TypeInteger},
		{Op: "mod", Left: Double(5.5), Right: Double(2), Want: "1.5", Type: TypeDouble},
	}
	for _, c := range tests {
		got, err := apply(c.Op, c.Left, c.Right)
		if err != nil {
			t.Errorf("%s %s %s: unexpected error %s", c.Left, c.Op, c.Right, err)
			continue
		}
		if got.Type() != c.Type {
			t.Errorf("%s %s %s: want type %s, got %s", c.Left, c.Op, c.Right, c.Type, got.Type())
			continue
		}
		if got.String() != c.Want {
			t.Errorf("%s %s %s: want %s, got %s", c.Left, c.Op, c.Right, c.Want, got.String())
		}
	}
}

func TestNumericArithErrors(t *testing.T) {
	tests := []struct {
		Op    string
		Left  Value
		Right Value
		Code  string
	}{
		{Op: "div", Left: Integer(1), Right: Integer(0), Code: CodeDivZero},
		{Op: "div", Left: Decimal(1), Right: Decimal(0), Code: CodeDivZero},
		{Op: "idiv", Left: Integer(1), Right: Integer(0), Code: CodeDivZero},
		{Op: "idiv", Left: Double(1), Right: Double(0), Code: CodeDivZero},
		{Op: "idiv", Left: Double(math.NaN()), Right: Double(1), Code: CodeNumericRange},
		{Op: "idiv", Left: Double(math.Inf(1)), Right: Double(1), Code: CodeNumericRange},
		{Op: "mod", Left: Integer(1), Right: Integer(0), Code: CodeDivZero},
		{Op: "+", Left: Integer(math.MaxInt64), Right: Integer(1), Code: CodeNumericRange},
		{Op: "-", Left: Integer(math.MinInt64), Right: Integer(1), Code: CodeNumericRange},
		{Op: "*", Left: Integer(math.MaxInt64), Right: Integer(2), Code: CodeNumericRange},
		{Op: "+", Left: Integer(1), Right: String("2"), Code: CodeType},
	}
	for _, c := range tests {
		_, err := apply(c.Op, c.Left, c.Right)
		if err == nil {
			t.Errorf("%s %s %s: error expected", c.Left, c.Op, c.Right)
			continue
		}
		if code := CodeOf(err); code != c.Code {
			t.Errorf("%s %s %s: want code %s, got %s", c.Left, c.Op, c.Right, c.Code, code)
		}
	}
}

func TestTemporalArith(t *testing.T) {
	tests := []struct {
		Op    string
		Left  string
		LType *Type
		Right string
		RType *Type
		Want  string
	}{
		{Op: "-", Left: "2002-10-11", LType: TypeDate, Right: "2002-10-09", RType: TypeDate, Want: "P2D"},
		{Op: "-", Left: "2002-10-09T12:00:00Z", LType: TypeDateTime, Right: "2002-10-09T10:30:00Z", RType: TypeDateTime, Want: "PT1H30M"},
		{Op: "-", Left: "10:00:00", LType: TypeTime, Right: "09:00:00", RType: TypeTime, Want: "PT1H"},
		{Op: "+", Left: "2002-10-09T12:00:00Z", LType: TypeDateTime, Right: "PT1H", RType: TypeDayTime, Want: "2002-10-09T13:00:00Z"},
		{Op: "+", Left: "2002-10-09T12:00:00Z", LType: TypeDateTime, Right: "P1Y2M", RType: TypeYearMonth, Want: "2003-12-09T12:00:00Z"},
		{Op: "+", Left: "2001-01-31", LType: TypeDate, Right: "P1M", RType: TypeYearMonth, Want: "2001-02-28"},
		{Op: "+", Left: "2004-01-31", LType: TypeDate, Right: "P1M", RType: TypeYearMonth, Want: "2004-02-29"},
		{Op: "+", Left: "2002-10-09", LType: TypeDate, Right: "P2D", RType: TypeDayTime, Want: "2002-10-11"},
		{Op: "+", Left: "23:00:00", LType: TypeTime, Right: "PT2H", RType: TypeDayTime, Want: "01:00:00"},
		{Op: "+", Left: "P1M", LType: TypeYearMonth, Right: "2001-01-15", RType: TypeDate, Want: "2001-02-15"},
		{Op: "-", Left: "2002-10-09", LType: TypeDate, Right: "P1M", RType: TypeYearMonth, Want: "2002-09-09"},
		{Op: "+", Left: "P1Y", LType: TypeYearMonth, Right: "P2M", RType: TypeYearMonth, Want: "P1Y2M"},
		{Op: "-", Left: "PT2H", LType: TypeDayTime, Right: "PT30M", RType: TypeDayTime, Want: "PT1H30M"},
	}
	for _, c := range tests {
		left, err := Cast(String(c.Left), c.LType)
		if err != nil {
			t.Errorf("cast %q: %s", c.Left, err)
			continue
		}
		right, err := Cast(String(c.Right), c.RType)
		if err != nil {
			t.Errorf("cast %q: %s", c.Right, err)
			continue
		}
		got, err := apply(c.Op, left, right)
		if err != nil {
			t.Errorf("%s %s %s: unexpected error %s", c.Left, c.Op, c.Right, err)
			continue
		}
		if got.String() != c.Want {
			t.Errorf("%s %s %s: want %s, got %s", c.Left, c.Op, c.Right, c.Want, got.String())
		}
	}
}

func TestTemporalArithErrors(t *testing.T) {
	day, _ := Cast(String("2002-10-09"), TypeDate)
	dt, _ := Cast(String("2002-10-09T12:00:00Z"), TypeDateTime)
	clock, _ := Cast(String("12:00:00"), TypeTime)
	if _, err := Subtract(dt, day); err == nil {
		t.Errorf("dateTime - date: error expected")
	}
	if _, err := Add(clock, YearMonthDuration(1)); err == nil {
		t.Errorf("time + yearMonthDuration: error expected")
	}
	if _, err := Add(YearMonthDuration(1), DayTimeDuration(1)); err == nil {
		t.Errorf("mixed duration sum: error expected")
	}
	if _, err := Subtract(day, dt); err == nil {
		t.Errorf("date - dateTime: error expected")
	}
}

func TestDurationScale(t *testing.T) {
	got, err := Multiply(YearMonthDuration(14), Integer(2))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.String() != "P2Y4M" {
		t.Errorf("P1Y2M * 2: want P2Y4M, got %s", got.String())
	}
	got, err = Multiply(Double(2.5), YearMonthDuration(2))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.String() != "P5M" {
		t.Errorf("2.5 * P2M: want P5M, got %s", got.String())
	}
	got, err = Divide(DayTimeDuration(3*60*60*1e9), Integer(2))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.String() != "PT1H30M" {
		t.Errorf("PT3H div 2: want PT1H30M, got %s", got.String())
	}
	got, err = Divide(YearMonthDuration(36), YearMonthDuration(12))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.String() != "3" {
		t.Errorf("P3Y div P1Y: want 3, got %s", got.String())
	}
	if _, err := Multiply(YearMonthDuration(1), Double(math.NaN())); err == nil {
		t.Errorf("duration * NaN: error expected")
	}
	if _, err := Divide(DayTimeDuration(10), Integer(0)); err == nil {
		t.Errorf("duration div 0: error expected")
	}
}

func apply(op string, left, right Value) (Value, error) {
	switch op {
	case "+":
		return Add(left, right)
	case "-":
		return Subtract(left, right)
	case "*":
		return Multiply(left, right)
	case "div":
		return Divide(left, right)
	case "idiv":
		return IntegerDivide(left, right)
	default:
		return Modulo(left, right)
	}
}
