package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByRunID struct {
	RunID string
}

func (s ByRunID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("run_id = ?", s.RunID)
}

type ByFingerprint struct {
	Fp string
}

func (s ByFingerprint) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("fp = ?", s.Fp)
}

// CreatedAfter keeps rows created strictly after T.
type CreatedAfter struct {
	T time.Time
}

func (s CreatedAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at > ?", s.T)
}
