package dto

import "riff-be/pkg/insight"

// BiasDetectionMessage is the queued job asking for bias analysis of Text on behalf of a session.
type BiasDetectionMessage struct {
	SessionId string `json:"session_id"`
	Text      string `json:"text"`
}

// BiasesEvent always carries the biases array, empty when none were found.
type BiasesEvent struct {
	Type   string         `json:"type"`
	Biases []insight.Bias `json:"biases"`
}
