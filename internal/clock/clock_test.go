package clock

import (
	"testing"
	"time"
)

func mustParseInstant(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse instant %q: %v", value, err)
	}
	return parsed
}

func TestLocalDayUsesConfiguredZoneNotInstantOffset(t *testing.T) {
	t.Parallel()

	// 23:30 UTC on the 14th is already the 15th at UTC+3.
	zone := time.FixedZone("UTC+3", 3*60*60)
	instant := mustParseInstant(t, "2026-03-14T23:30:00Z")

	day := LocalDay(instant, zone)
	if got := day.Format(DayLayout); got != "2026-03-15" {
		t.Fatalf("expected local day 2026-03-15, got %s", got)
	}
	if day.Hour() != 0 || day.Minute() != 0 {
		t.Fatalf("expected midnight, got %s", day.Format(time.RFC3339))
	}
}

func TestLocalDayNilLocationFallsBackToUTC(t *testing.T) {
	t.Parallel()

	instant := mustParseInstant(t, "2026-03-14T23:30:00Z")
	if got := DayKey(instant, nil); got != "2026-03-14" {
		t.Fatalf("expected UTC fallback day 2026-03-14, got %s", got)
	}
}

func TestDayRangeIsHalfOpen(t *testing.T) {
	t.Parallel()

	zone := time.FixedZone("UTC+2", 2*60*60)
	start, end := DayRange(mustParseInstant(t, "2026-06-01T10:00:00Z"), zone)
	if got := end.Sub(start); got != 24*time.Hour {
		t.Fatalf("expected 24h day range, got %s", got)
	}
	if start.Day() != 1 || end.Day() != 2 {
		t.Fatalf("expected [June 1, June 2), got [%s, %s)", start, end)
	}
}

func TestWeekStartAnchorsOnMonday(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		day  string
		want string
	}{
		{name: "monday maps to itself", day: "2026-03-09T12:00:00Z", want: "2026-03-09"},
		{name: "wednesday maps back", day: "2026-03-11T08:00:00Z", want: "2026-03-09"},
		{name: "sunday maps back six days", day: "2026-03-15T22:00:00Z", want: "2026-03-09"},
	}

	for _, testCase := range cases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			got := WeekKey(mustParseInstant(t, testCase.day), time.UTC)
			if got != testCase.want {
				t.Fatalf("expected week start %s, got %s", testCase.want, got)
			}
		})
	}
}

func TestWeekStartOfKey(t *testing.T) {
	t.Parallel()

	got, err := WeekStartOfKey("2026-03-15")
	if err != nil {
		t.Fatalf("week start of key: %v", err)
	}
	if got != "2026-03-09" {
		t.Fatalf("expected 2026-03-09, got %s", got)
	}

	if _, err := WeekStartOfKey("not-a-day"); err == nil {
		t.Fatal("expected error for malformed day key")
	}
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		earlier string
		later   string
		want    int
	}{
		{name: "same day", earlier: "2026-03-10", later: "2026-03-10", want: 0},
		{name: "one day forward", earlier: "2026-03-10", later: "2026-03-11", want: 1},
		{name: "a week forward", earlier: "2026-03-10", later: "2026-03-17", want: 7},
		{name: "backwards is negative", earlier: "2026-03-10", later: "2026-03-08", want: -2},
	}

	for _, testCase := range cases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			earlier, err := ParseDayKey(testCase.earlier)
			if err != nil {
				t.Fatalf("parse earlier: %v", err)
			}
			later, err := ParseDayKey(testCase.later)
			if err != nil {
				t.Fatalf("parse later: %v", err)
			}
			if got := DaysBetween(earlier, later); got != testCase.want {
				t.Fatalf("expected %d days, got %d", testCase.want, got)
			}
		})
	}
}

func TestDaysBetweenAbsorbsDSTTransition(t *testing.T) {
	t.Parallel()

	zone, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("zoneinfo unavailable: %v", err)
	}

	// The night of 2026-03-29 is only 23 hours long in Berlin.
	before := LocalDay(mustParseInstant(t, "2026-03-28T12:00:00Z"), zone)
	after := LocalDay(mustParseInstant(t, "2026-03-30T12:00:00Z"), zone)
	if got := DaysBetween(before, after); got != 2 {
		t.Fatalf("expected 2 days across DST change, got %d", got)
	}
}

func TestWeeksBetween(t *testing.T) {
	t.Parallel()

	earlier, _ := ParseDayKey("2026-03-02")
	later, _ := ParseDayKey("2026-03-23")
	if got := WeeksBetween(earlier, later); got != 3 {
		t.Fatalf("expected 3 weeks, got %d", got)
	}
	if got := WeeksBetween(later, earlier); got != -3 {
		t.Fatalf("expected -3 weeks, got %d", got)
	}
}
