package services

import (
	"math"
	"time"

	"github.com/pondera-health/pondera/internal/clock"
	"github.com/pondera-health/pondera/internal/models"
)

const (
	// MinWeightKg and MaxWeightKg bound accepted readings.
	MinWeightKg = 30.0
	MaxWeightKg = 250.0

	// MaxBackfillDays is how far back (in local calendar days) a reading may
	// be dated at creation time.
	MaxBackfillDays = 7

	// OutlierDeltaKg and OutlierWindowHours define the anomaly rule: a change
	// strictly greater than OutlierDeltaKg within at most OutlierWindowHours
	// of the previous reading is flagged. The delta bound is strict, the hour
	// bound is inclusive.
	OutlierDeltaKg     = 3.0
	OutlierWindowHours = 48.0
)

// AnomalyWarning describes why a reading was flagged. DeltaKg is signed
// (current minus previous), so a loss is negative.
type AnomalyWarning struct {
	DeltaKg            float64   `json:"deltaKg"`
	PreviousWeightKg   float64   `json:"previousWeightKg"`
	PreviousMeasuredAt time.Time `json:"previousMeasuredAt"`
}

// NormalizeWeight rounds value to one fractional digit and checks the domain
// bound. Callers run it before any policy check so the core only ever sees
// in-range weights.
func NormalizeWeight(value float64) (float64, error) {
	rounded := math.Round(value*10) / 10
	if rounded < MinWeightKg || rounded > MaxWeightKg {
		return 0, ErrWeightOutOfRange
	}
	return rounded, nil
}

// CheckMeasurementTiming enforces the temporal bound on a new reading and
// reports whether it is a backfill. daysBack is computed on local calendar
// days, so a reading taken late on day D and validated just after the next
// midnight counts as one day back.
func CheckMeasurementTiming(measuredAt time.Time, now time.Time, location *time.Location) (bool, error) {
	measurementDay := clock.LocalDay(measuredAt, location)
	today := clock.LocalDay(now, location)

	daysBack := clock.DaysBetween(measurementDay, today)
	if daysBack < 0 {
		return false, ErrFutureDate
	}
	if daysBack > MaxBackfillDays {
		return false, ErrBackfillLimit
	}
	return daysBack > 0, nil
}

// DetectAnomaly compares a new reading against the most recent reading
// strictly before it by measurement instant. previous is nil when no earlier
// reading exists; the first reading is never an outlier.
func DetectAnomaly(weightKg float64, measuredAt time.Time, previous *models.Measurement) (bool, *AnomalyWarning) {
	if previous == nil {
		return false, nil
	}

	delta := weightKg - previous.WeightKg
	hours := math.Abs(measuredAt.Sub(previous.MeasuredAt).Hours())
	if math.Abs(delta) <= OutlierDeltaKg || hours > OutlierWindowHours {
		return false, nil
	}

	return true, &AnomalyWarning{
		DeltaKg:            math.Round(delta*10) / 10,
		PreviousWeightKg:   previous.WeightKg,
		PreviousMeasuredAt: previous.MeasuredAt,
	}
}
