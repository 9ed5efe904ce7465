package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pondera-health/pondera/internal/clock"
	"github.com/pondera-health/pondera/internal/models"
	"gorm.io/gorm"
)

// MeasurementRepository is the storage the measurement engine reads and
// writes through. Implementations must enforce (owner, local day) uniqueness
// as a hard constraint; the pre-check here and the insert are not atomic.
type MeasurementRepository interface {
	FindByID(id string) (models.Measurement, bool, error)
	ExistsForOwnerDay(ownerID uint, localDay string) (bool, error)
	FindMostRecentBefore(ownerID uint, instant time.Time) (models.Measurement, bool, error)
	ListInRange(ownerID uint, fromDay string, toDay string) ([]models.Measurement, error)
	ListWeeksWithPresence(ownerID uint, fromDay string) ([]string, error)
	CountByOwner(ownerID uint) (int64, error)
	LastMeasuredAt(ownerID uint) (*time.Time, error)
	Create(entry *models.Measurement) error
	Save(entry *models.Measurement) error
	DeleteByID(id string) error
}

type MeasurementService struct {
	measurements MeasurementRepository
	location     *time.Location
}

func NewMeasurementService(measurements MeasurementRepository, location *time.Location) *MeasurementService {
	if location == nil {
		location = time.UTC
	}
	return &MeasurementService{
		measurements: measurements,
		location:     location,
	}
}

// MeasurementInput is a creation request after edge validation. RecordedBy is
// the acting user, which differs from OwnerID when a professional records a
// reading for a patient.
type MeasurementInput struct {
	OwnerID    uint
	WeightKg   float64
	MeasuredAt time.Time
	Source     string
	Note       string
	RecordedBy uint
}

// MeasurementPatch carries the only two fields a patient may change after
// creation. Nil means "leave as is".
type MeasurementPatch struct {
	WeightKg *float64
	Note     *string
}

// Create validates and stores a new reading, returning the stored record and
// any anomaly warnings. The duplicate pre-check and the insert race; a
// uniqueness conflict the constraint catches is translated into the same
// ErrDuplicateEntry the pre-check would have produced.
func (service *MeasurementService) Create(input MeasurementInput, now time.Time) (models.Measurement, []AnomalyWarning, error) {
	weightKg, err := NormalizeWeight(input.WeightKg)
	if err != nil {
		return models.Measurement{}, nil, err
	}

	isBackfill, err := CheckMeasurementTiming(input.MeasuredAt, now, service.location)
	if err != nil {
		return models.Measurement{}, nil, err
	}

	localDay := clock.DayKey(input.MeasuredAt, service.location)
	exists, err := service.measurements.ExistsForOwnerDay(input.OwnerID, localDay)
	if err != nil {
		return models.Measurement{}, nil, err
	}
	if exists {
		return models.Measurement{}, nil, ErrDuplicateEntry
	}

	// Prior-by-instant, not prior-by-insertion: backfilled entries must be
	// compared against what chronologically precedes them.
	var previous *models.Measurement
	previousEntry, found, err := service.measurements.FindMostRecentBefore(input.OwnerID, input.MeasuredAt)
	if err != nil {
		return models.Measurement{}, nil, err
	}
	if found {
		previous = &previousEntry
	}

	isOutlier, warning := DetectAnomaly(weightKg, input.MeasuredAt, previous)

	entry := models.Measurement{
		ID:            uuid.NewString(),
		OwnerID:       input.OwnerID,
		LocalDay:      localDay,
		WeightKg:      weightKg,
		MeasuredAt:    input.MeasuredAt,
		Source:        input.Source,
		IsBackfill:    isBackfill,
		IsOutlier:     isOutlier,
		OutlierReview: models.ReviewUnset,
		Note:          strings.TrimSpace(input.Note),
		CreatedBy:     input.RecordedBy,
		CreatedAt:     now,
		UpdatedBy:     input.RecordedBy,
		UpdatedAt:     now,
	}
	if err := service.measurements.Create(&entry); err != nil {
		if isUniqueViolation(err) {
			return models.Measurement{}, nil, ErrDuplicateEntry
		}
		return models.Measurement{}, nil, err
	}

	warnings := make([]AnomalyWarning, 0, 1)
	if warning != nil {
		warnings = append(warnings, *warning)
	}
	return entry, warnings, nil
}

// Update applies a patch to a patient-authored reading inside its edit
// window. At least one field must actually change; the instant, source and
// owner are immutable through this path.
func (service *MeasurementService) Update(id string, requestingUserID uint, patch MeasurementPatch, now time.Time) (models.Measurement, error) {
	entry, found, err := service.measurements.FindByID(id)
	if err != nil {
		return models.Measurement{}, err
	}
	if err := AssertMutable(&entry, found, requestingUserID, now, service.location); err != nil {
		return models.Measurement{}, err
	}

	changed := false
	if patch.WeightKg != nil {
		weightKg, err := NormalizeWeight(*patch.WeightKg)
		if err != nil {
			return models.Measurement{}, err
		}
		if weightKg != entry.WeightKg {
			entry.WeightKg = weightKg
			changed = true
		}
	}
	if patch.Note != nil {
		note := strings.TrimSpace(*patch.Note)
		if note != entry.Note {
			entry.Note = note
			changed = true
		}
	}
	if !changed {
		return models.Measurement{}, ErrNothingToUpdate
	}

	entry.UpdatedBy = requestingUserID
	entry.UpdatedAt = now
	if err := service.measurements.Save(&entry); err != nil {
		return models.Measurement{}, err
	}
	return entry, nil
}

// Delete removes a patient-authored reading inside its edit window. An
// absent record and a foreign record answer identically.
func (service *MeasurementService) Delete(id string, requestingUserID uint, now time.Time) error {
	entry, found, err := service.measurements.FindByID(id)
	if err != nil {
		return err
	}
	if err := AssertMutable(&entry, found, requestingUserID, now, service.location); err != nil {
		return err
	}
	return service.measurements.DeleteByID(entry.ID)
}

// ReviewOutlier records a human judgment on a flagged reading. Not subject to
// the edit window; requires ownership or a professional override.
func (service *MeasurementService) ReviewOutlier(id string, requestingUserID uint, professionalOverride bool, confirmed bool, now time.Time) (models.Measurement, error) {
	entry, found, err := service.measurements.FindByID(id)
	if err != nil {
		return models.Measurement{}, err
	}
	if err := AssertOutlierReviewable(&entry, found, requestingUserID, professionalOverride); err != nil {
		return models.Measurement{}, err
	}

	if confirmed {
		entry.OutlierReview = models.ReviewGenuine
	} else {
		entry.OutlierReview = models.ReviewDismissed
	}
	entry.UpdatedBy = requestingUserID
	entry.UpdatedAt = now
	if err := service.measurements.Save(&entry); err != nil {
		return models.Measurement{}, err
	}
	return entry, nil
}

// ComplianceStatistics derives weekly adherence figures from the set of
// local weeks that contain at least one reading.
func (service *MeasurementService) ComplianceStatistics(ownerID uint, now time.Time) (ComplianceStatistics, error) {
	lookbackStart := clock.WeekStart(now, service.location).AddDate(0, 0, -7*(StreakLookbackWeeks-1))
	weekKeys, err := service.measurements.ListWeeksWithPresence(ownerID, lookbackStart.Format(clock.DayLayout))
	if err != nil {
		return ComplianceStatistics{}, err
	}

	totalEntries, err := service.measurements.CountByOwner(ownerID)
	if err != nil {
		return ComplianceStatistics{}, err
	}
	lastMeasuredAt, err := service.measurements.LastMeasuredAt(ownerID)
	if err != nil {
		return ComplianceStatistics{}, err
	}

	return ComplianceStatistics{
		TotalEntries:         totalEntries,
		WeeklyComplianceRate: WeeklyComplianceRate(weekKeys, now, service.location, ComplianceRateWindowWeeks),
		CurrentStreak:        CurrentStreak(weekKeys, now, service.location),
		LongestStreak:        LongestStreak(weekKeys),
		LastMeasuredAt:       lastMeasuredAt,
	}, nil
}

// ChartSeries returns the plotted points and summary statistics for readings
// whose local day falls in [fromDay, toDay].
func (service *MeasurementService) ChartSeries(ownerID uint, fromDay string, toDay string) ([]ChartPoint, SeriesStatistics, error) {
	entries, err := service.measurements.ListInRange(ownerID, fromDay, toDay)
	if err != nil {
		return nil, SeriesStatistics{}, err
	}
	return BuildChartPoints(entries), SummarizeSeries(entries), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
