package dto

import (
	"time"

	"riff-be/pkg/pipeline"
)

type CreateChainRequest struct {
	Name  string              `json:"name" validate:"required,min=1,max=255"`
	Steps []pipeline.StepSpec `json:"steps" validate:"required,dive"`
}

type CreateChainResponse struct {
	Id string `json:"id"`
}

type ChainResponse struct {
	Id        string              `json:"id"`
	Name      string              `json:"name"`
	Steps     []pipeline.StepSpec `json:"steps"`
	CreatedAt *time.Time          `json:"createdAt,omitempty"`
}

type ShareChainResponse struct {
	Slug    string `json:"slug"`
	ChainId string `json:"chainId"`
}

type RunExecuteResponse struct {
	RunId string `json:"runId"`
}

type AnalyzeSkippedResponse struct {
	Skipped bool `json:"skipped"`
}

type RunResponse struct {
	Id          string     `json:"id"`
	ChainId     string     `json:"chainId"`
	Fingerprint string     `json:"fp"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	SourceRunId *string    `json:"sourceRunId,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}

type RunEventResponse struct {
	Seq     int       `json:"seq"`
	Kind    string    `json:"kind"`
	Payload any       `json:"payload"`
	Ts      time.Time `json:"ts"`
}

type PersonaResponse struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	InstanceId string `json:"instanceId"`
	Sessions   int    `json:"sessions"`
	CacheSize  int    `json:"cacheSize"`
}
