package reminder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	// Reminder timezones are user supplied; do not depend on the host zoneinfo.
	_ "time/tzdata"
)

const (
	fallbackHour   = 9
	fallbackMinute = 0
)

// ParseClock parses a 24-hour "HH:mm" string.
func ParseClock(pref string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(pref), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("time preference %q is not HH:mm", pref)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("time preference %q has invalid hour", pref)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time preference %q has invalid minute", pref)
	}
	return hour, minute, nil
}

func LoadTimezone(tz string) (*time.Location, error) {
	if strings.TrimSpace(tz) == "" {
		tz = DefaultTimezone
	}
	return time.LoadLocation(tz)
}

// TomorrowAt converts a preference to the UTC instant of that wall-clock
// time on the day after now, in timezone tz. Any parse failure yields
// 09:00 UTC tomorrow.
func TomorrowAt(pref, tz string, now time.Time) time.Time {
	at, err := dayAt(pref, tz, now, 1)
	if err != nil {
		return fallback(now)
	}
	return at
}

// NextOccurrence is the first instant strictly after now at which the
// preference falls in timezone tz: today if still ahead, else tomorrow.
func NextOccurrence(pref, tz string, now time.Time) time.Time {
	today, err := dayAt(pref, tz, now, 0)
	if err != nil {
		return fallback(now)
	}
	if today.After(now) {
		return today
	}
	return TomorrowAt(pref, tz, now)
}

// NextAfterSend picks the slot following a delivery made at now. A second
// preference later the same local day wins over tomorrow's first slot.
func NextAfterSend(s *Schedule, now time.Time) time.Time {
	if s.SecondPreference != "" {
		second, err := dayAt(s.SecondPreference, s.Timezone, now, 0)
		if err == nil && second.After(now) {
			return second
		}
	}
	return TomorrowAt(s.TimePreference, s.Timezone, now)
}

// FirstScheduled is the first delivery time for a newly created reminder.
func FirstScheduled(s *Schedule, now time.Time) time.Time {
	first := NextOccurrence(s.TimePreference, s.Timezone, now)
	if s.SecondPreference != "" {
		second, err := dayAt(s.SecondPreference, s.Timezone, now, 0)
		if err == nil && second.After(now) && second.Before(first) {
			return second
		}
	}
	return first
}

func dayAt(pref, tz string, now time.Time, offsetDays int) (time.Time, error) {
	hour, minute, err := ParseClock(pref)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := LoadTimezone(tz)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(loc)
	at := time.Date(local.Year(), local.Month(), local.Day()+offsetDays, hour, minute, 0, 0, loc)
	return at.UTC(), nil
}

func fallback(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day()+1, fallbackHour, fallbackMinute, 0, 0, time.UTC)
}
