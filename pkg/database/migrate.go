package database

import (
	"riff-be/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the service persists to.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Chain{},
		&model.Share{},
		&model.Run{},
		&model.RunEvent{},
		&model.Fingerprint{},
		&model.Insight{},
	)
}
