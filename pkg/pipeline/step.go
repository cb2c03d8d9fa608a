package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type Kind string

const (
	KindPersona   Kind = "persona"
	KindSummarize Kind = "summarize"
	KindMap       Kind = "map"
)

var (
	ErrUnknownKind      = errors.New("unknown step kind")
	ErrUnknownTransform = errors.New("unknown transform")
	ErrDuplicateStepID  = errors.New("duplicate step id")
	ErrInvalidConfig    = errors.New("invalid step config")
)

// StepSpec is one declared step of a chain. Config is kept raw so the chain
// round-trips through storage exactly as it was created; Decode gives the
// typed view.
type StepSpec struct {
	ID     string          `json:"id" validate:"required,max=128"`
	Kind   Kind            `json:"kind" validate:"required,oneof=persona summarize map"`
	Config json.RawMessage `json:"config,omitempty"`
}

// StepConfig is the typed configuration of a step; exactly one variant per Kind.
type StepConfig interface {
	Kind() Kind
}

type PersonaConfig struct {
	Personas []string `json:"personas"`
}

type SummarizeConfig struct{}

type MapConfig struct {
	// Transform names an entry of the transform registry; empty means pass-through.
	Transform string `json:"transform"`
}

func (PersonaConfig) Kind() Kind   { return KindPersona }
func (SummarizeConfig) Kind() Kind { return KindSummarize }
func (MapConfig) Kind() Kind       { return KindMap }

// Decode validates Config against the variant for s.Kind.
func (s StepSpec) Decode() (StepConfig, error) {
	raw := s.Config
	if isEmptyConfig(raw) {
		raw = nil
	}

	switch s.Kind {
	case KindPersona:
		var cfg PersonaConfig
		if err := decodeInto(raw, &cfg); err != nil {
			return nil, fmt.Errorf("step %q: %w: %w", s.ID, ErrInvalidConfig, err)
		}
		for _, p := range cfg.Personas {
			if p == "" {
				return nil, fmt.Errorf("step %q: %w: empty lane id", s.ID, ErrInvalidConfig)
			}
		}
		return cfg, nil
	case KindSummarize:
		var shape map[string]any
		if err := decodeInto(raw, &shape); err != nil {
			return nil, fmt.Errorf("step %q: %w: %w", s.ID, ErrInvalidConfig, err)
		}
		return SummarizeConfig{}, nil
	case KindMap:
		var cfg MapConfig
		if err := decodeInto(raw, &cfg); err != nil {
			return nil, fmt.Errorf("step %q: %w: %w", s.ID, ErrInvalidConfig, err)
		}
		if cfg.Transform != "" {
			if _, ok := transforms[cfg.Transform]; !ok {
				return nil, fmt.Errorf("step %q: %w: %s", s.ID, ErrUnknownTransform, cfg.Transform)
			}
		}
		return cfg, nil
	default:
		return nil, fmt.Errorf("step %q: %w: %s", s.ID, ErrUnknownKind, s.Kind)
	}
}

// ValidateSteps decodes every step and rejects duplicate ids.
func ValidateSteps(steps []StepSpec) error {
	seen := make(map[string]struct{}, len(steps))
	for _, s := range steps {
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateStepID, s.ID)
		}
		seen[s.ID] = struct{}{}
		if _, err := s.Decode(); err != nil {
			return err
		}
	}
	return nil
}

func decodeInto(raw json.RawMessage, v any) error {
	if raw == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isEmptyConfig(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
