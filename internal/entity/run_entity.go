package entity

import (
	"encoding/json"
	"time"

	"riff-be/internal/constant"
)

type Run struct {
	Id          string
	ChainId     string
	Fingerprint string
	TextHash    string
	Status      constant.RunStatus
	Error       string
	SourceRunId *string // set when the run was served by replaying another run
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// RunEvent is one ledger row. Payload is the exact message that was published.
type RunEvent struct {
	Id      int64
	RunId   string
	Seq     int
	Kind    string
	Payload json.RawMessage
	Ts      time.Time
}
