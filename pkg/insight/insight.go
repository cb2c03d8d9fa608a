// Package insight holds the critique items produced by analysis lanes and the
// two-path parser that turns untrusted generation output into them.
package insight

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type Type string

const (
	TypeCounterArgument Type = "counter-argument"
	TypeQuestion        Type = "question"
	TypeLateralPrompt   Type = "lateral-prompt"
)

// SingleLane is the lane key used when an analysis ran without named lanes.
const SingleLane = "_single"

// Insight is one piece of critique. It is immutable once created.
type Insight struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	LaneID    string `json:"laneId,omitempty"`
}

// Bias annotates the half-open range [Start, End) of the analyzed text.
type Bias struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	Explanation string `json:"explanation"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
}

// ValidFor reports whether the offsets still address a range inside text.
// Offsets count runes.
func (b Bias) ValidFor(text string) bool {
	return b.Start >= 0 && b.End > b.Start && b.End <= utf8.RuneCountInString(text)
}

// NormalizeType maps anything outside the closed set to TypeLateralPrompt.
func NormalizeType(raw string) Type {
	switch Type(raw) {
	case TypeCounterArgument, TypeQuestion, TypeLateralPrompt:
		return Type(raw)
	default:
		return TypeLateralPrompt
	}
}

// New builds an insight stamped with the current time.
func New(t Type, content, laneID string) Insight {
	now := time.Now()
	return Insight{
		ID:        fmt.Sprintf("insight-%s", uuid.NewString()),
		Type:      t,
		Content:   content,
		Timestamp: now.UnixMilli(),
		LaneID:    laneID,
	}
}
