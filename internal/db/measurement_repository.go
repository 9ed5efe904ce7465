package db

import (
	"time"

	"github.com/pondera-health/pondera/internal/clock"
	"github.com/pondera-health/pondera/internal/models"
	"gorm.io/gorm"
)

type MeasurementRepository struct {
	database *gorm.DB
}

func NewMeasurementRepository(database *gorm.DB) *MeasurementRepository {
	return &MeasurementRepository{database: database}
}

func (repo *MeasurementRepository) FindByID(id string) (models.Measurement, bool, error) {
	entry := models.Measurement{}
	result := repo.database.Where("id = ?", id).Limit(1).Find(&entry)
	if result.Error != nil {
		return models.Measurement{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Measurement{}, false, nil
	}
	return entry, true, nil
}

func (repo *MeasurementRepository) ExistsForOwnerDay(ownerID uint, localDay string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Measurement{}).
		Where("owner_id = ? AND local_day = ?", ownerID, localDay).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// FindMostRecentBefore returns the latest measurement strictly before instant
// by measurement time, not by insertion order, so backfilled entries are
// compared against what chronologically precedes them.
func (repo *MeasurementRepository) FindMostRecentBefore(ownerID uint, instant time.Time) (models.Measurement, bool, error) {
	entry := models.Measurement{}
	result := repo.database.
		Where("owner_id = ? AND measured_at < ?", ownerID, instant).
		Order("measured_at DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.Measurement{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Measurement{}, false, nil
	}
	return entry, true, nil
}

func (repo *MeasurementRepository) ListInRange(ownerID uint, fromDay string, toDay string) ([]models.Measurement, error) {
	entries := make([]models.Measurement, 0)
	if err := repo.database.
		Where("owner_id = ? AND local_day >= ? AND local_day <= ?", ownerID, fromDay, toDay).
		Order("measured_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListWeeksWithPresence returns the deduplicated Monday day keys of every
// local week with at least one measurement on or after fromDay.
func (repo *MeasurementRepository) ListWeeksWithPresence(ownerID uint, fromDay string) ([]string, error) {
	days := make([]string, 0)
	if err := repo.database.Model(&models.Measurement{}).
		Distinct("local_day").
		Where("owner_id = ? AND local_day >= ?", ownerID, fromDay).
		Order("local_day ASC").
		Pluck("local_day", &days).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(days))
	weeks := make([]string, 0, len(days))
	for _, day := range days {
		weekKey, err := clock.WeekStartOfKey(day)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[weekKey]; ok {
			continue
		}
		seen[weekKey] = struct{}{}
		weeks = append(weeks, weekKey)
	}
	return weeks, nil
}

func (repo *MeasurementRepository) CountByOwner(ownerID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Measurement{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *MeasurementRepository) LastMeasuredAt(ownerID uint) (*time.Time, error) {
	entry := models.Measurement{}
	result := repo.database.
		Where("owner_id = ?", ownerID).
		Order("measured_at DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	measuredAt := entry.MeasuredAt
	return &measuredAt, nil
}

func (repo *MeasurementRepository) Create(entry *models.Measurement) error {
	return repo.database.Create(entry).Error
}

func (repo *MeasurementRepository) Save(entry *models.Measurement) error {
	return repo.database.Save(entry).Error
}

func (repo *MeasurementRepository) DeleteByID(id string) error {
	return repo.database.Where("id = ?", id).Delete(&models.Measurement{}).Error
}
