package xpath

import (
	"time"

	"github.com/midbel/xpath/xdm"
)

func registerTemporalFuncs(b builder) {
	b.add("years-from-duration", callYearsFromDuration, pvOpt(xdm.TypeDuration))
	b.add("months-from-duration", callMonthsFromDuration, pvOpt(xdm.TypeDuration))
	b.add("days-from-duration", callDaysFromDuration, pvOpt(xdm.TypeDuration))
	b.add("hours-from-duration", callHoursFromDuration, pvOpt(xdm.TypeDuration))
	b.add("minutes-from-duration", callMinutesFromDuration, pvOpt(xdm.TypeDuration))
	b.add("seconds-from-duration", callSecondsFromDuration, pvOpt(xdm.TypeDuration))
	b.add("year-from-dateTime", callYearFromDateTime, pvOpt(xdm.TypeDateTime))
	b.add("month-from-dateTime", callMonthFromDateTime, pvOpt(xdm.TypeDateTime))
	b.add("day-from-dateTime", callDayFromDateTime, pvOpt(xdm.TypeDateTime))
	b.add("hours-from-dateTime", callHoursFromDateTime, pvOpt(xdm.TypeDateTime))
	b.add("minutes-from-dateTime", callMinutesFromDateTime, pvOpt(xdm.TypeDateTime))
	b.add("seconds-from-dateTime", callSecondsFromDateTime, pvOpt(xdm.TypeDateTime))
	b.add("timezone-from-dateTime", callTimezoneFromDateTime, pvOpt(xdm.TypeDateTime))
	b.add("year-from-date", callYearFromDate, pvOpt(xdm.TypeDate))
	b.add("month-from-date", callMonthFromDate, pvOpt(xdm.TypeDate))
	b.add("day-from-date", callDayFromDate, pvOpt(xdm.TypeDate))
	b.add("timezone-from-date", callTimezoneFromDate, pvOpt(xdm.TypeDate))
	b.add("hours-from-time", callHoursFromTime, pvOpt(xdm.TypeTime))
	b.add("minutes-from-time", callMinutesFromTime, pvOpt(xdm.TypeTime))
	b.add("seconds-from-time", callSecondsFromTime, pvOpt(xdm.TypeTime))
	b.add("timezone-from-time", callTimezoneFromTime, pvOpt(xdm.TypeTime))
	b.add("adjust-dateTime-to-timezone", callAdjustDateTime, pvOpt(xdm.TypeDateTime))
	b.add("adjust-dateTime-to-timezone", callAdjustDateTime, pvOpt(xdm.TypeDateTime), pvOpt(xdm.TypeDayTime))
	b.add("adjust-date-to-timezone", callAdjustDate, pvOpt(xdm.TypeDate))
	b.add("adjust-date-to-timezone", callAdjustDate, pvOpt(xdm.TypeDate), pvOpt(xdm.TypeDayTime))
	b.add("adjust-time-to-timezone", callAdjustTime, pvOpt(xdm.TypeTime))
	b.add("adjust-time-to-timezone", callAdjustTime, pvOpt(xdm.TypeTime), pvOpt(xdm.TypeDayTime))
	b.add("dateTime", callDateTime, pvOpt(xdm.TypeDate), pvOpt(xdm.TypeTime))
}

func registerContextFuncs(b builder) {
	b.add("current-dateTime", callCurrentDateTime)
	b.add("current-date", callCurrentDate)
	b.add("current-time", callCurrentTime)
	b.add("implicit-timezone", callImplicitTimezone)
	b.add("default-collation", callDefaultCollation)
	b.add("static-base-uri", callStaticBaseURI)
}

// durationParts splits any duration into its month and clock component;
// the component the concrete type does not carry reads as zero.
func durationArg(c cursor) (int, time.Duration, bool, error) {
	val, ok, err := argValue(c)
	if err != nil || !ok {
		return 0, 0, ok, err
	}
	switch v := val.(type) {
	case xdm.YearMonthDuration:
		return int(v), 0, true, nil
	case xdm.DayTimeDuration:
		return 0, time.Duration(v), true, nil
	}
	return 0, 0, false, xdm.Errorf(xdm.CodeType, "%s is not a duration", val.Type())
}

func integerResult(n int64, ok bool) (cursor, error) {
	if !ok {
		return emptyCursor{}, nil
	}
	return only(xdm.NewAtomicItem(xdm.Integer(n))), nil
}

func callYearsFromDuration(call *callCtx, args []cursor) (cursor, error) {
	months, _, ok, err := durationArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(months/12), ok)
}

func callMonthsFromDuration(call *callCtx, args []cursor) (cursor, error) {
	months, _, ok, err := durationArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(months%12), ok)
}

func callDaysFromDuration(call *callCtx, args []cursor) (cursor, error) {
	_, clock, ok, err := durationArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(clock/(24*time.Hour)), ok)
}

func callHoursFromDuration(call *callCtx, args []cursor) (cursor, error) {
	_, clock, ok, err := durationArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(clock%(24*time.Hour)/time.Hour), ok)
}

func callMinutesFromDuration(call *callCtx, args []cursor) (cursor, error) {
	_, clock, ok, err := durationArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(clock%time.Hour/time.Minute), ok)
}

func callSecondsFromDuration(call *callCtx, args []cursor) (cursor, error) {
	_, clock, ok, err := durationArg(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return emptyCursor{}, nil
	}
	rest := clock % time.Minute
	return only(xdm.NewAtomicItem(xdm.Decimal(rest.Seconds()))), nil
}

func dateTimeArg(c cursor) (xdm.DateTime, bool, error) {
	val, ok, err := argValue(c)
	if err != nil || !ok {
		return xdm.DateTime{}, ok, err
	}
	v, ok := val.(xdm.DateTime)
	if !ok {
		return xdm.DateTime{}, false, xdm.Errorf(xdm.CodeType, "%s is not a dateTime", val.Type())
	}
	return v, true, nil
}

func dateArg(c cursor) (xdm.Date, bool, error) {
	val, ok, err := argValue(c)
	if err != nil || !ok {
		return xdm.Date{}, ok, err
	}
	v, ok := val.(xdm.Date)
	if !ok {
		return xdm.Date{}, false, xdm.Errorf(xdm.CodeType, "%s is not a date", val.Type())
	}
	return v, true, nil
}

func timeArg(c cursor) (xdm.Time, bool, error) {
	val, ok, err := argValue(c)
	if err != nil || !ok {
		return xdm.Time{}, ok, err
	}
	v, ok := val.(xdm.Time)
	if !ok {
		return xdm.Time{}, false, xdm.Errorf(xdm.CodeType, "%s is not a time", val.Type())
	}
	return v, true, nil
}

func secondsOf(t time.Time, ok bool) (cursor, error) {
	if !ok {
		return emptyCursor{}, nil
	}
	sec := xdm.Decimal(float64(t.Second()) + float64(t.Nanosecond())/1e9)
	return only(xdm.NewAtomicItem(sec)), nil
}

// zoneOf returns the timezone component as a dayTimeDuration, empty for
// values without one.
func zoneOf(t time.Time, zoned, ok bool) (cursor, error) {
	if !ok || !zoned {
		return emptyCursor{}, nil
	}
	_, offset := t.Zone()
	dur := xdm.DayTimeDuration(time.Duration(offset) * time.Second)
	return only(xdm.NewAtomicItem(dur)), nil
}

func callYearFromDateTime(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := dateTimeArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(v.Time.Year()), ok)
}

func callMonthFromDateTime(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := dateTimeArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(v.Time.Month()), ok)
}

func callDayFromDateTime(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := dateTimeArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(v.Time.Day()), ok)
}

func callHoursFromDateTime(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := dateTimeArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(v.Time.Hour()), ok)
}

func callMinutesFromDateTime(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := dateTimeArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(v.Time.Minute()), ok)
}

func callSecondsFromDateTime(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := dateTimeArg(args[0])
	if err != nil {
		return nil, err
	}
	return secondsOf(v.Time, ok)
}

func callTimezoneFromDateTime(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := dateTimeArg(args[0])
	if err != nil {
		return nil, err
	}
	return zoneOf(v.Time, v.Zoned, ok)
}

func callYearFromDate(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := dateArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(v.Time.Year()), ok)
}

func callMonthFromDate(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := dateArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(v.Time.Month()), ok)
}

func callDayFromDate(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := dateArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(v.Time.Day()), ok)
}

func callTimezoneFromDate(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := dateArg(args[0])
	if err != nil {
		return nil, err
	}
	return zoneOf(v.Time, v.Zoned, ok)
}

func callHoursFromTime(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := timeArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(v.Time.Hour()), ok)
}

func callMinutesFromTime(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := timeArg(args[0])
	if err != nil {
		return nil, err
	}
	return integerResult(int64(v.Time.Minute()), ok)
}

func callSecondsFromTime(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := timeArg(args[0])
	if err != nil {
		return nil, err
	}
	return secondsOf(v.Time, ok)
}

func callTimezoneFromTime(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := timeArg(args[0])
	if err != nil {
		return nil, err
	}
	return zoneOf(v.Time, v.Zoned, ok)
}

// targetZone reads the timezone the adjust functions move to. Absent
// argument means the implicit timezone, an empty one means stripping
// the timezone, reported by a nil location.
func targetZone(call *callCtx, args []cursor) (*time.Location, error) {
	if len(args) == 1 {
		return call.dynamic().snapshot().Location(), nil
	}
	val, ok, err := argValue(args[1])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	dur, ok := val.(xdm.DayTimeDuration)
	if !ok {
		return nil, xdm.Errorf(xdm.CodeType, "%s is not a dayTimeDuration", val.Type())
	}
	clock := time.Duration(dur)
	if clock%time.Minute != 0 || clock < -14*time.Hour || clock > 14*time.Hour {
		return nil, xdm.Errorf(xdm.CodeBadTimezone, "%s is not a valid timezone", dur)
	}
	return time.FixedZone("", int(clock/time.Second)), nil
}

// shiftZone applies the timezone rules shared by the adjust functions:
// zoned values move to the same instant in the target zone, unzoned
// values keep their wall clock and gain the zone, and a nil target
// drops the zone while keeping the wall clock.
func shiftZone(t time.Time, zoned bool, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		y, mo, d := t.Date()
		h, mi, s := t.Clock()
		return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC), false
	}
	if zoned {
		return t.In(loc), true
	}
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), loc), true
}

func callAdjustDateTime(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := dateTimeArg(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return emptyCursor{}, nil
	}
	loc, err := targetZone(call, args)
	if err != nil {
		return nil, err
	}
	v.Time, v.Zoned = shiftZone(v.Time, v.Zoned, loc)
	return only(xdm.NewAtomicItem(v)), nil
}

func callAdjustDate(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := dateArg(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return emptyCursor{}, nil
	}
	loc, err := targetZone(call, args)
	if err != nil {
		return nil, err
	}
	shifted, zoned := shiftZone(v.Time, v.Zoned, loc)
	y, mo, d := shifted.Date()
	v.Time = time.Date(y, mo, d, 0, 0, 0, 0, shifted.Location())
	v.Zoned = zoned
	return only(xdm.NewAtomicItem(v)), nil
}

func callAdjustTime(call *callCtx, args []cursor) (cursor, error) {
	v, ok, err := timeArg(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return emptyCursor{}, nil
	}
	loc, err := targetZone(call, args)
	if err != nil {
		return nil, err
	}
	v.Time, v.Zoned = shiftZone(v.Time, v.Zoned, loc)
	return only(xdm.NewAtomicItem(v)), nil
}

// callDateTime combines a date and a time into a dateTime. The timezone
// comes from whichever argument has one; both having different ones is
// an error.
func callDateTime(call *callCtx, args []cursor) (cursor, error) {
	d, dok, err := dateArg(args[0])
	if err != nil {
		return nil, err
	}
	t, tok, err := timeArg(args[1])
	if err != nil {
		return nil, err
	}
	if !dok || !tok {
		return emptyCursor{}, nil
	}
	loc := time.UTC
	switch {
	case d.Zoned && t.Zoned:
		_, dz := d.Time.Zone()
		_, tz := t.Time.Zone()
		if dz != tz {
			return nil, xdm.Errorf(xdm.CodeInvalidValue, "date and time carry different timezones")
		}
		loc = d.Time.Location()
	case d.Zoned:
		loc = d.Time.Location()
	case t.Zoned:
		loc = t.Time.Location()
	}
	y, mo, day := d.Time.Date()
	h, mi, s := t.Time.Clock()
	out := xdm.DateTime{
		Time:  time.Date(y, mo, day, h, mi, s, t.Time.Nanosecond(), loc),
		Zoned: d.Zoned || t.Zoned,
	}
	return only(xdm.NewAtomicItem(out)), nil
}

func callCurrentDateTime(call *callCtx, args []cursor) (cursor, error) {
	now := call.dynamic().snapshot()
	out := xdm.DateTime{Time: now, Zoned: true}
	return only(xdm.NewAtomicItem(out)), nil
}

func callCurrentDate(call *callCtx, args []cursor) (cursor, error) {
	now := call.dynamic().snapshot()
	y, mo, d := now.Date()
	out := xdm.Date{
		Time:  time.Date(y, mo, d, 0, 0, 0, 0, now.Location()),
		Zoned: true,
	}
	return only(xdm.NewAtomicItem(out)), nil
}

func callCurrentTime(call *callCtx, args []cursor) (cursor, error) {
	now := call.dynamic().snapshot()
	out := xdm.Time{Time: now, Zoned: true}
	return only(xdm.NewAtomicItem(out)), nil
}

func callImplicitTimezone(call *callCtx, args []cursor) (cursor, error) {
	_, offset := call.dynamic().snapshot().Zone()
	dur := xdm.DayTimeDuration(time.Duration(offset) * time.Second)
	return only(xdm.NewAtomicItem(dur)), nil
}

func callDefaultCollation(call *callCtx, args []cursor) (cursor, error) {
	coll, err := call.collationArg(args, 0)
	if err != nil {
		return nil, err
	}
	return stringItem(coll.Uri), nil
}

func callStaticBaseURI(call *callCtx, args []cursor) (cursor, error) {
	base := call.frame.env.BaseURI()
	if base == "" {
		return emptyCursor{}, nil
	}
	return only(xdm.NewAtomicItem(xdm.AnyURI(base))), nil
}
