package services

import "errors"

// Domain rejections. Every one of these reflects a business rule, not a
// transient fault; callers must surface them, never retry them.
var (
	ErrFutureDate          = errors.New("measurement date is in the future")
	ErrBackfillLimit       = errors.New("measurement date is beyond the backfill window")
	ErrDuplicateEntry      = errors.New("a measurement already exists for this day")
	ErrWeightOutOfRange    = errors.New("weight is outside the accepted range")
	ErrMeasurementNotFound = errors.New("measurement not found")
	ErrForbidden           = errors.New("measurement was not recorded by the patient")
	ErrEditWindowExpired   = errors.New("edit window has expired")
	ErrNothingToUpdate     = errors.New("nothing to update")
	ErrOutlierNotFlagged   = errors.New("measurement was never flagged as an outlier")
)
