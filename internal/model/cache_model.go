package model

import "time"

type Fingerprint struct {
	Fp        string    `gorm:"column:fp;type:varchar(64);primaryKey"`
	Mode      string    `gorm:"type:varchar(16);not null"`
	RunId     *string   `gorm:"type:varchar(64)"`
	CreatedAt time.Time `gorm:"not null;index:idx_fingerprints_created"`
}

func (Fingerprint) TableName() string {
	return "fingerprints"
}

type Insight struct {
	Id        int64  `gorm:"primaryKey;autoIncrement"`
	InsightId string `gorm:"type:varchar(64);not null"`
	Fp        string `gorm:"column:fp;type:varchar(64);not null;index"`
	Persona   string `gorm:"type:varchar(64);not null"`
	Position  int    `gorm:"not null"`
	Kind      string `gorm:"type:varchar(32);not null"`
	Content   string `gorm:"type:text;not null"`
	Ts        int64  `gorm:"not null"`
}

func (Insight) TableName() string {
	return "insights"
}
