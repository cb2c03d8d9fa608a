package dto

import "riff-be/pkg/pipeline"

// Envelope is decoded first to pick the command shape.
type Envelope struct {
	Type string `json:"type"`
}

type ChainCreateCommand struct {
	Type  string              `json:"type" validate:"required,eq=chain.create"`
	Name  string              `json:"name" validate:"required,min=1,max=255"`
	Steps []pipeline.StepSpec `json:"steps" validate:"required,dive"`
}

type ChainGetCommand struct {
	Type string `json:"type" validate:"required,eq=chain.get"`
	Id   string `json:"id,omitempty" validate:"required_without=Slug,omitempty,max=64"`
	Slug string `json:"slug,omitempty" validate:"required_without=Id,omitempty,max=64"`
}

type RunExecuteCommand struct {
	Type    string `json:"type" validate:"required,eq=run.execute"`
	ChainId string `json:"chainId,omitempty" validate:"required_without=Slug,omitempty,max=64"`
	Slug    string `json:"slug,omitempty" validate:"required_without=ChainId,omitempty,max=64"`
	Text    string `json:"text" validate:"min=10"`
}

type AnalyzeCommand struct {
	Type       string   `json:"type" validate:"required,eq=analyze"`
	Text       string   `json:"text" validate:"min=10"`
	Personas   []string `json:"personas" validate:"omitempty,dive,required,max=64"`
	DetectBias bool     `json:"detectBias,omitempty"`
}
