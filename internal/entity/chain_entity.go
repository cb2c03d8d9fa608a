package entity

import (
	"time"

	"riff-be/pkg/pipeline"
)

type Chain struct {
	Id        string
	Name      string
	Steps     []pipeline.StepSpec
	CreatedAt time.Time
}

type Share struct {
	Slug      string
	ChainId   string
	CreatedAt time.Time
}
