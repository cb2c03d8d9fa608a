package model

import "time"

type Run struct {
	Id          string    `gorm:"type:varchar(64);primaryKey"`
	ChainId     string    `gorm:"type:varchar(64);index"`
	Fingerprint string    `gorm:"type:varchar(64);index"`
	TextHash    string    `gorm:"type:varchar(32);not null"`
	Status      string    `gorm:"type:varchar(16);not null;default:running"`
	Error       string    `gorm:"type:text"`
	SourceRunId *string   `gorm:"type:varchar(64)"`
	StartedAt   time.Time `gorm:"not null"`
	FinishedAt  *time.Time
}

func (Run) TableName() string {
	return "runs"
}

type RunEvent struct {
	Id      int64  `gorm:"primaryKey;autoIncrement"`
	RunId   string `gorm:"type:varchar(64);not null;uniqueIndex:idx_run_events_run_seq"`
	Seq     int    `gorm:"not null;uniqueIndex:idx_run_events_run_seq"`
	Kind    string `gorm:"type:varchar(32);not null"`
	Payload string `gorm:"type:text;not null"` // stored verbatim, replayed byte for byte
	Ts      int64  `gorm:"not null"`
}

func (RunEvent) TableName() string {
	return "run_events"
}
