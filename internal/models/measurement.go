package models

import "time"

const (
	SourcePatient      = "patient"
	SourceProfessional = "professional"
)

// OutlierReview is a human judgment on a measurement the anomaly check
// flagged. It stays ReviewUnset both for measurements that were never flagged
// and for flagged measurements nobody has reviewed yet; IsOutlier tells the
// two apart.
type OutlierReview string

const (
	ReviewUnset     OutlierReview = "unset"
	ReviewGenuine   OutlierReview = "genuine"
	ReviewDismissed OutlierReview = "dismissed"
)

// Measurement is one body-weight reading. LocalDay is the reading's calendar
// day in the configured timezone, stored as "2006-01-02"; the unique index on
// (owner, local day) is the hard backstop for the one-entry-per-day rule.
type Measurement struct {
	ID            string        `gorm:"primaryKey"`
	OwnerID       uint          `gorm:"not null;uniqueIndex:uidx_owner_local_day;index:idx_owner_measured_at,priority:1"`
	LocalDay      string        `gorm:"not null;uniqueIndex:uidx_owner_local_day"`
	WeightKg      float64       `gorm:"not null"`
	MeasuredAt    time.Time     `gorm:"not null;index:idx_owner_measured_at,priority:2"`
	Source        string        `gorm:"not null;default:patient"`
	IsBackfill    bool          `gorm:"not null;default:false"`
	IsOutlier     bool          `gorm:"not null;default:false"`
	OutlierReview OutlierReview `gorm:"not null;default:unset"`
	Note          string
	CreatedBy     uint
	CreatedAt     time.Time
	UpdatedBy     uint
	UpdatedAt     time.Time
}
