package services

import (
	"sort"
	"time"

	"github.com/pondera-health/pondera/internal/clock"
)

const (
	// ComplianceRateWindowWeeks is the trailing window the weekly rate is
	// computed over, current week included.
	ComplianceRateWindowWeeks = 12

	// StreakLookbackWeeks bounds how much weekly presence storage is asked
	// for when computing streaks.
	StreakLookbackWeeks = 52
)

// ComplianceStatistics summarizes how regularly an owner logs weight.
type ComplianceStatistics struct {
	TotalEntries         int64      `json:"totalEntries"`
	WeeklyComplianceRate float64    `json:"weeklyComplianceRate"`
	CurrentStreak        int        `json:"currentStreak"`
	LongestStreak        int        `json:"longestStreak"`
	LastMeasuredAt       *time.Time `json:"lastMeasuredAt"`
}

// WeeklyComplianceRate is the share of the trailing windowWeeks local weeks
// that contain at least one measurement. weekKeys are Monday day keys as
// produced by clock.WeekKey, deduplicated.
func WeeklyComplianceRate(weekKeys []string, now time.Time, location *time.Location, windowWeeks int) float64 {
	if windowWeeks <= 0 || len(weekKeys) == 0 {
		return 0
	}

	currentWeek, err := clock.ParseDayKey(clock.WeekKey(now, location))
	if err != nil {
		return 0
	}

	present := 0
	for _, key := range weekKeys {
		week, err := clock.ParseDayKey(key)
		if err != nil {
			continue
		}
		offset := clock.WeeksBetween(week, currentWeek)
		if offset >= 0 && offset < windowWeeks {
			present++
		}
	}
	return float64(present) / float64(windowWeeks)
}

// CurrentStreak walks backward from the current local week while each week is
// present, current week included. A quiet current week means streak zero.
func CurrentStreak(weekKeys []string, now time.Time, location *time.Location) int {
	present := make(map[string]struct{}, len(weekKeys))
	for _, key := range weekKeys {
		present[key] = struct{}{}
	}

	week, err := clock.ParseDayKey(clock.WeekKey(now, location))
	if err != nil {
		return 0
	}

	streak := 0
	for {
		if _, ok := present[week.Format(clock.DayLayout)]; !ok {
			return streak
		}
		streak++
		week = week.AddDate(0, 0, -7)
	}
}

// LongestStreak finds the longest run of consecutive present weeks anywhere
// in the set. A pair of weeks extends a run only when their starts are
// exactly seven days apart.
func LongestStreak(weekKeys []string) int {
	if len(weekKeys) == 0 {
		return 0
	}

	weeks := make([]time.Time, 0, len(weekKeys))
	for _, key := range weekKeys {
		week, err := clock.ParseDayKey(key)
		if err != nil {
			continue
		}
		weeks = append(weeks, week)
	}
	if len(weeks) == 0 {
		return 0
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	longest := 1
	running := 1
	for index := 1; index < len(weeks); index++ {
		if clock.DaysBetween(weeks[index-1], weeks[index]) == 7 {
			running++
		} else {
			running = 1
		}
		if running > longest {
			longest = running
		}
	}
	return longest
}
