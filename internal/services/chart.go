package services

import (
	"math"

	"github.com/pondera-health/pondera/internal/models"
)

const (
	// MovingAverageWindow is the trailing window for the smoothed chart
	// series. Early points average over however many points exist.
	MovingAverageWindow = 7

	// TrendDeadBandKg is the half-width of the "stable" band: a series whose
	// absolute start-to-end change is below this counts as stable.
	TrendDeadBandKg = 0.5
)

const (
	TrendStable     = "stable"
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
)

// ChartPoint is one plotted reading plus its trailing moving average.
type ChartPoint struct {
	Date            string  `json:"date"`
	WeightKg        float64 `json:"weightKg"`
	Source          string  `json:"source"`
	IsOutlier       bool    `json:"isOutlier"`
	TrailingAverage float64 `json:"trailingAverage"`
}

// SeriesStatistics summarizes a charted range. StartWeightKg and EndWeightKg
// are nil for an empty range.
type SeriesStatistics struct {
	StartWeightKg *float64 `json:"startWeightKg"`
	EndWeightKg   *float64 `json:"endWeightKg"`
	ChangeKg      float64  `json:"changeKg"`
	Trend         string   `json:"trend"`
}

// BuildChartPoints maps measurements, already ordered by instant ascending,
// to chart points with a trailing moving average.
func BuildChartPoints(entries []models.Measurement) []ChartPoint {
	points := make([]ChartPoint, 0, len(entries))
	windowSum := 0.0
	for index, entry := range entries {
		windowSum += entry.WeightKg
		if index >= MovingAverageWindow {
			windowSum -= entries[index-MovingAverageWindow].WeightKg
		}
		windowSize := index + 1
		if windowSize > MovingAverageWindow {
			windowSize = MovingAverageWindow
		}

		points = append(points, ChartPoint{
			Date:            entry.LocalDay,
			WeightKg:        entry.WeightKg,
			Source:          entry.Source,
			IsOutlier:       entry.IsOutlier,
			TrailingAverage: roundTenth(windowSum / float64(windowSize)),
		})
	}
	return points
}

// SummarizeSeries derives start/end/change and the coarse trend for a range
// of measurements ordered by instant ascending. An empty range is a valid
// answer, not an error.
func SummarizeSeries(entries []models.Measurement) SeriesStatistics {
	if len(entries) == 0 {
		return SeriesStatistics{Trend: TrendStable}
	}

	start := entries[0].WeightKg
	end := entries[len(entries)-1].WeightKg
	change := roundTenth(end - start)
	return SeriesStatistics{
		StartWeightKg: &start,
		EndWeightKg:   &end,
		ChangeKg:      change,
		Trend:         classifyTrend(change),
	}
}

func classifyTrend(change float64) string {
	if math.Abs(change) < TrendDeadBandKg {
		return TrendStable
	}
	if change > 0 {
		return TrendIncreasing
	}
	return TrendDecreasing
}

func roundTenth(value float64) float64 {
	return math.Round(value*10) / 10
}
