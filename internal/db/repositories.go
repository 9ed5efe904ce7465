package db

import "gorm.io/gorm"

type Repositories struct {
	Users        *UserRepository
	Measurements *MeasurementRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(database),
		Measurements: NewMeasurementRepository(database),
	}
}
