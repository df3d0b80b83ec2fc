package challenge

import (
	"strings"
	"time"
)

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay is the last representable instant of t's day in Postgres
// precision, so it can be used as an inclusive upper bound.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Microsecond)
}

// StartOfWeek returns the Sunday midnight that opens t's week.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func EndOfWeek(t time.Time, loc *time.Location) time.Time {
	return StartOfWeek(t, loc).AddDate(0, 0, 7).Add(-time.Microsecond)
}

// IsWeekday compares t's weekday in loc with a name like "MONDAY" or "monday".
func IsWeekday(t time.Time, loc *time.Location, name string) bool {
	return strings.EqualFold(t.In(loc).Weekday().String(), strings.TrimSpace(name))
}

func ParseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return d, true
		}
	}
	return time.Sunday, false
}
