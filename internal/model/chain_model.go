package model

import (
	"time"

	"gorm.io/datatypes"
)

type Chain struct {
	Id        string         `gorm:"type:varchar(64);primaryKey"`
	Name      string         `gorm:"type:varchar(255);not null"`
	StepsJson datatypes.JSON `gorm:"column:steps_json;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (Chain) TableName() string {
	return "chains"
}

type Share struct {
	Slug      string    `gorm:"type:varchar(64);primaryKey"`
	ChainId   string    `gorm:"type:varchar(64);not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Share) TableName() string {
	return "shares"
}
