package services

import (
	"time"

	"github.com/pondera-health/pondera/internal/clock"
	"github.com/pondera-health/pondera/internal/models"
)

// EditWindowGraceDays bounds self-service mutation: a patient-authored
// reading stays editable through the end of the local calendar day this many
// days after the reading's own day.
const EditWindowGraceDays = 1

// AssertMutable decides whether requestingUserID may edit or delete a
// reading. Ownership is checked before existence is disclosed: a reading
// owned by someone else answers exactly like a missing one.
func AssertMutable(entry *models.Measurement, found bool, requestingUserID uint, now time.Time, location *time.Location) error {
	if !found || entry == nil || entry.OwnerID != requestingUserID {
		return ErrMeasurementNotFound
	}
	if entry.Source != models.SourcePatient {
		return ErrForbidden
	}

	measurementDay := clock.LocalDay(entry.MeasuredAt, location)
	today := clock.LocalDay(now, location)
	if clock.DaysBetween(measurementDay, today) > EditWindowGraceDays {
		return ErrEditWindowExpired
	}
	return nil
}

// AssertOutlierReviewable guards the narrower confirm/dismiss operation. It
// is a judgment on the flag, not a data correction, so the edit window does
// not apply; the owner or a supervising professional may review any flagged
// reading.
func AssertOutlierReviewable(entry *models.Measurement, found bool, requestingUserID uint, professionalOverride bool) error {
	if !found || entry == nil {
		return ErrMeasurementNotFound
	}
	if entry.OwnerID != requestingUserID && !professionalOverride {
		return ErrMeasurementNotFound
	}
	if !entry.IsOutlier {
		return ErrOutlierNotFlagged
	}
	return nil
}
