// Package clock derives local calendar-day and local week boundaries from
// instants. Every "today", "same day" and "same week" comparison in the
// service goes through here so day and week edges are consistent regardless
// of the offset an instant was recorded with.
package clock

import (
	"math"
	"time"
)

// DayLayout is the canonical storage and wire form of a local calendar day.
const DayLayout = "2006-01-02"

// LocalDay returns midnight of value's calendar day in location.
func LocalDay(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// DayRange returns the half-open [start, end) interval covering value's
// local calendar day.
func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := LocalDay(value, location)
	return start, start.AddDate(0, 0, 1)
}

// DayKey formats value's local calendar day as DayLayout.
func DayKey(value time.Time, location *time.Location) string {
	return LocalDay(value, location).Format(DayLayout)
}

// ParseDayKey parses a DayLayout day back into a date-only value (UTC
// midnight). Day keys carry no zone, so arithmetic on parsed keys is free of
// DST effects.
func ParseDayKey(key string) (time.Time, error) {
	return time.Parse(DayLayout, key)
}

// WeekStart returns Monday 00:00 of value's local week.
func WeekStart(value time.Time, location *time.Location) time.Time {
	day := LocalDay(value, location)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekKey formats the Monday of value's local week as DayLayout.
func WeekKey(value time.Time, location *time.Location) string {
	return WeekStart(value, location).Format(DayLayout)
}

// WeekStartOfKey maps a day key to the key of its Monday-anchored week.
func WeekStartOfKey(dayKey string) (string, error) {
	day, err := ParseDayKey(dayKey)
	if err != nil {
		return "", err
	}
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset).Format(DayLayout), nil
}

// DaysBetween returns the whole-day offset from earlier to later, both of
// which must be day boundaries (as produced by LocalDay or ParseDayKey).
// Rounding absorbs the odd hour a DST transition adds or removes. Negative
// when later precedes earlier.
func DaysBetween(earlier time.Time, later time.Time) int {
	return int(math.Round(later.Sub(earlier).Hours() / 24))
}

// WeeksBetween returns the whole-week offset from earlier to later, both of
// which must be week starts.
func WeeksBetween(earlier time.Time, later time.Time) int {
	return int(math.Round(later.Sub(earlier).Hours() / (24 * 7)))
}
