package xpath_test

import (
	"strings"
	"testing"
	"time"

	"github.com/midbel/xpath/xpath"
)

func TestDurationComponents(t *testing.T) {
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "years-from-duration(xs:yearMonthDuration('P20Y15M'))", Want: []string{"21"}},
		{Query: "months-from-duration(xs:yearMonthDuration('P20Y15M'))", Want: []string{"3"}},
		{Query: "years-from-duration(xs:yearMonthDuration('-P15M'))", Want: []string{"-1"}},
		{Query: "months-from-duration(xs:yearMonthDuration('-P15M'))", Want: []string{"-3"}},
		{Query: "years-from-duration(xs:dayTimeDuration('P3D'))", Want: []string{"0"}},
		{Query: "days-from-duration(xs:dayTimeDuration('P3DT10H'))", Want: []string{"3"}},
		{Query: "hours-from-duration(xs:dayTimeDuration('P3DT10H'))", Want: []string{"10"}},
		{Query: "minutes-from-duration(xs:dayTimeDuration('P3DT10H30M'))", Want: []string{"30"}},
		{Query: "seconds-from-duration(xs:dayTimeDuration('P1DT2H3M4.5S'))", Want: []string{"4.5"}},
		{Query: "seconds-from-duration(xs:dayTimeDuration('P1D'))", Want: []string{"0"}},
		{Query: "count(years-from-duration(()))", Want: []string{"0"}},
	}
	for _, c := range tests {
		checkEval(t, nil, c.Query, c.Want)
	}
}

func TestDateTimeComponents(t *testing.T) {
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "year-from-dateTime(xs:dateTime('1999-05-31T13:20:00-05:00'))", Want: []string{"1999"}},
		{Query: "month-from-dateTime(xs:dateTime('1999-05-31T13:20:00-05:00'))", Want: []string{"5"}},
		{Query: "day-from-dateTime(xs:dateTime('1999-05-31T13:20:00-05:00'))", Want: []string{"31"}},
		{Query: "hours-from-dateTime(xs:dateTime('1999-05-31T13:20:00-05:00'))", Want: []string{"13"}},
		{Query: "minutes-from-dateTime(xs:dateTime('1999-05-31T13:20:00-05:00'))", Want: []string{"20"}},
		{Query: "seconds-from-dateTime(xs:dateTime('1999-05-31T13:20:12.5Z'))", Want: []string{"12.5"}},
		{Query: "timezone-from-dateTime(xs:dateTime('1999-05-31T13:20:00-05:00'))", Want: []string{"-PT5H"}},
		{Query: "timezone-from-dateTime(xs:dateTime('1999-05-31T13:20:00Z'))", Want: []string{"PT0S"}},
		{Query: "count(timezone-from-dateTime(xs:dateTime('1999-05-31T13:20:00')))", Want: []string{"0"}},
		{Query: "year-from-date(xs:date('2019-05-04'))", Want: []string{"2019"}},
		{Query: "month-from-date(xs:date('2019-05-04'))", Want: []string{"5"}},
		{Query: "day-from-date(xs:date('2019-05-04'))", Want: []string{"4"}},
		{Query: "timezone-from-date(xs:date('2019-05-04Z'))", Want: []string{"PT0S"}},
		{Query: "count(timezone-from-date(xs:date('2019-05-04')))", Want: []string{"0"}},
		{Query: "hours-from-time(xs:time('13:20:10.5'))", Want: []string{"13"}},
		{Query: "minutes-from-time(xs:time('13:20:10.5'))", Want: []string{"20"}},
		{Query: "seconds-from-time(xs:time('13:20:10.5'))", Want: []string{"10.5"}},
		{Query: "timezone-from-time(xs:time('13:20:00Z'))", Want: []string{"PT0S"}},
		{Query: "count(timezone-from-time(xs:time('13:20:00')))", Want: []string{"0"}},
	}
	for _, c := range tests {
		checkEval(t, nil, c.Query, c.Want)
	}
}

func TestDateTimeCombine(t *testing.T) {
	tests := []struct {
		Query string
		Want  []string
	}{
		{Query: "dateTime(xs:date('1999-12-31'), xs:time('12:00:00'))", Want: []string{"1999-12-31T12:00:00"}},
		{Query: "dateTime(xs:date('1999-12-31Z'), xs:time('12:00:00'))", Want: []string{"1999-12-31T12:00:00Z"}},
		{Query: "dateTime(xs:date('1999-12-31'), xs:time('12:00:00-05:00'))", Want: []string{"1999-12-31T12:00:00-05:00"}},
		{Query: "dateTime(xs:date('1999-12-31-05:00'), xs:time('12:00:00-05:00'))", Want: []string{"1999-12-31T12:00:00-05:00"}},
		{Query: "count(dateTime((), xs:time('12:00:00')))", Want: []string{"0"}},
		{Query: "count(dateTime(xs:date('1999-12-31'), ()))", Want: []string{"0"}},
	}
	for _, c := range tests {
		checkEval(t, nil, c.Query, c.Want)
	}
	checkCode(t, nil, "dateTime(xs:date('1999-12-31-05:00'), xs:time('12:00:00-06:00'))", "FORG0001")
}

func TestCurrentDateTime(t *testing.T) {
	now := time.Date(2019, 5, 4, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		Query string
		Want  string
	}{
		{Query: "current-dateTime()", Want: "2019-05-04T10:30:00Z"},
		{Query: "current-date()", Want: "2019-05-04Z"},
		{Query: "current-time()", Want: "10:30:00Z"},
		{Query: "implicit-timezone()", Want: "PT0S"},
		{Query: "year-from-dateTime(current-dateTime())", Want: "2019"},
	}
	for _, c := range tests {
		got := evalAt(t, c.Query, now)
		if got != c.Want {
			t.Errorf("%s: want %s, got %s", c.Query, c.Want, got)
		}
	}

	east := time.FixedZone("", 2*3600)
	if got := evalAt(t, "implicit-timezone()", time.Date(2019, 5, 4, 10, 30, 0, 0, east)); got != "PT2H" {
		t.Errorf("implicit-timezone in +02:00: want PT2H, got %s", got)
	}
}

func TestAdjustToTimezone(t *testing.T) {
	now := time.Date(2019, 5, 4, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		Query string
		Want  string
	}{
		{
			Query: "adjust-dateTime-to-timezone(xs:dateTime('2002-03-07T10:00:00-07:00'), xs:dayTimeDuration('-PT10H'))",
			Want:  "2002-03-07T07:00:00-10:00",
		},
		{
			Query: "adjust-dateTime-to-timezone(xs:dateTime('2002-03-07T10:00:00'), xs:dayTimeDuration('-PT10H'))",
			Want:  "2002-03-07T10:00:00-10:00",
		},
		{
			Query: "adjust-dateTime-to-timezone(xs:dateTime('2002-03-07T10:00:00-07:00'), ())",
			Want:  "2002-03-07T10:00:00",
		},
		{
			Query: "adjust-dateTime-to-timezone(xs:dateTime('2002-03-07T10:00:00-05:00'))",
			Want:  "2002-03-07T15:00:00Z",
		},
		{
			Query: "adjust-date-to-timezone(xs:date('2002-03-07-07:00'), ())",
			Want:  "2002-03-07",
		},
		{
			Query: "adjust-date-to-timezone(xs:date('2002-03-07'), xs:dayTimeDuration('-PT10H'))",
			Want:  "2002-03-07-10:00",
		},
		{
			Query: "adjust-time-to-timezone(xs:time('10:00:00'), xs:dayTimeDuration('-PT10H'))",
			Want:  "10:00:00-10:00",
		},
		{
			Query: "adjust-time-to-timezone(xs:time('10:00:00Z'))",
			Want:  "10:00:00Z",
		},
	}
	for _, c := range tests {
		got := evalAt(t, c.Query, now)
		if got != c.Want {
			t.Errorf("%s: want %s, got %s", c.Query, c.Want, got)
		}
	}

	checkCode(t, nil, "adjust-time-to-timezone(xs:time('10:00:00'), xs:dayTimeDuration('PT15H'))", "FODT0003")
	checkCode(t, nil, "adjust-time-to-timezone(xs:time('10:00:00'), xs:dayTimeDuration('PT1M1S'))", "FODT0003")
	checkCode(t, nil, "years-from-duration('P1Y')", "XPTY0004")
}

func TestStaticEnvironmentFunctions(t *testing.T) {
	got, err := xpath.Find(nil, "default-collation()")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.Len() != 1 || got[0].String() != xpath.CollationCodepoint {
		t.Errorf("default-collation: want %s, got %v", xpath.CollationCodepoint, got)
	}

	got, err = xpath.Find(nil, "count(static-base-uri())")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got[0].String() != "0" {
		t.Errorf("static-base-uri without a base: want an empty sequence")
	}

	exec, err := xpath.CompileString("static-base-uri()", xpath.WithBaseURI("http://example.com/base"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	got, err = exec.Find(nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.Len() != 1 || got[0].String() != "http://example.com/base" {
		t.Errorf("static-base-uri: want http://example.com/base, got %v", got)
	}
}

func evalAt(t *testing.T, query string, now time.Time) string {
	t.Helper()
	exec, err := xpath.CompileString(query)
	if err != nil {
		t.Fatalf("%s: unexpected error: %s", query, err)
	}
	stream, err := exec.Evaluate(xpath.NewContext(nil, xpath.WithNow(now)))
	if err != nil {
		t.Fatalf("%s: unexpected error: %s", query, err)
	}
	seq, err := stream.Collect()
	if err != nil {
		t.Fatalf("%s: unexpected error: %s", query, err)
	}
	return strings.Join(seqStrings(seq), ",")
}
