package dto

import (
	"riff-be/internal/constant"
	"riff-be/pkg/insight"
)

// Event is every message pushed to a session. Fields irrelevant to Type stay empty.
type Event struct {
	Type         string                       `json:"type"`
	RunId        string                       `json:"runId,omitempty"`
	StepId       string                       `json:"stepId,omitempty"`
	PersonaId    string                       `json:"personaId,omitempty"`
	Chunk        string                       `json:"chunk,omitempty"`
	Insights     any                          `json:"insights,omitempty"`
	BandInsights map[string][]insight.Insight `json:"bandInsights,omitempty"`
	Fp           string                       `json:"fp,omitempty"`
	Personas     []string                     `json:"personas,omitempty"`
	Error        string                       `json:"error,omitempty"`
	Ok           *bool                        `json:"ok,omitempty"`
	Data         any                          `json:"data,omitempty"`
}

// RpcResult is what every command handler returns.
type RpcResult struct {
	Ok    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func Ok(data any) RpcResult {
	return RpcResult{Ok: true, Data: data}
}

func Fail(code string) RpcResult {
	return RpcResult{Ok: false, Error: code}
}

// ToEvent renders the result as the message sent back on the socket, or nil when
// a successful command has nothing to report.
func (r RpcResult) ToEvent() *Event {
	if !r.Ok {
		return &Event{Type: constant.EventError, Error: r.Error}
	}
	if r.Data == nil {
		return nil
	}
	ok := true
	return &Event{Type: constant.EventRpcResponse, Ok: &ok, Data: r.Data}
}
