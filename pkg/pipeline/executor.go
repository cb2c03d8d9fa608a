// Package pipeline runs a chain's steps in order against a tracked current
// value and exposes the run as a lazy sequence of chunks.
package pipeline

import (
	"context"
	"iter"
	"strings"

	"riff-be/pkg/generation"
	"riff-be/pkg/insight"
)

// Generator is the streaming generation surface the executor needs.
type Generator interface {
	Insights(ctx context.Context, text string) iter.Seq2[string, error]
	Summary(ctx context.Context, text string) iter.Seq2[string, error]
	Lanes(ctx context.Context, text string, lanes []string) iter.Seq2[generation.LaneChunk, error]
}

// Chunk is either a progress token (Done false) or the single terminal
// artifact of a step (Done true).
//
// Artifact is []insight.Insight for single-lane persona steps,
// map[string][]insight.Insight for multi-lane persona steps and a string for
// summarize and map steps.
type Chunk struct {
	StepID   string
	Token    string
	LaneID   string
	Done     bool
	Artifact any
}

type Executor struct {
	gen Generator
}

func NewExecutor(gen Generator) *Executor {
	return &Executor{gen: gen}
}

// Run executes steps against input. The sequence must be drained to finish the
// run; breaking out of the range loop abandons it. A non-nil error is always
// the last element yielded.
func (e *Executor) Run(ctx context.Context, steps []StepSpec, input string) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		current := input
		for _, step := range steps {
			if err := ctx.Err(); err != nil {
				yield(Chunk{StepID: step.ID}, err)
				return
			}
			cfg, err := step.Decode()
			if err != nil {
				yield(Chunk{StepID: step.ID}, err)
				return
			}

			var next string
			var ok bool
			switch c := cfg.(type) {
			case PersonaConfig:
				if len(c.Personas) == 0 {
					next, ok = e.singleLane(ctx, step.ID, current, yield)
				} else {
					next, ok = e.multiLane(ctx, step.ID, current, c.Personas, yield)
				}
			case SummarizeConfig:
				next, ok = e.summarize(ctx, step.ID, current, yield)
			case MapConfig:
				next = current
				if fn, found := transforms[c.Transform]; found {
					next = fn(current)
				}
				ok = yield(Chunk{StepID: step.ID, Done: true, Artifact: next}, nil)
			}
			if !ok {
				return
			}
			current = next
		}
	}
}

func (e *Executor) singleLane(ctx context.Context, stepID, current string, yield func(Chunk, error) bool) (string, bool) {
	raw, ok := e.stream(stepID, e.gen.Insights(ctx, current), yield)
	if !ok {
		return "", false
	}
	list := insight.DecodeList(raw)
	if !yield(Chunk{StepID: stepID, Done: true, Artifact: list}, nil) {
		return "", false
	}
	return insight.Serialize(list), true
}

func (e *Executor) multiLane(ctx context.Context, stepID, current string, lanes []string, yield func(Chunk, error) bool) (string, bool) {
	var result map[string][]insight.Insight
	for c, err := range e.gen.Lanes(ctx, current, lanes) {
		if err != nil {
			yield(Chunk{StepID: stepID}, err)
			return "", false
		}
		if c.Final {
			result = c.Result
			continue
		}
		if !yield(Chunk{StepID: stepID, Token: c.Chunk, LaneID: c.LaneID}, nil) {
			return "", false
		}
	}
	if result == nil {
		result = make(map[string][]insight.Insight, len(lanes))
		for _, lane := range lanes {
			result[lane] = []insight.Insight{}
		}
	}
	if !yield(Chunk{StepID: stepID, Done: true, Artifact: result}, nil) {
		return "", false
	}
	return insight.SerializeLanes(result, lanes), true
}

func (e *Executor) summarize(ctx context.Context, stepID, current string, yield func(Chunk, error) bool) (string, bool) {
	acc, ok := e.stream(stepID, e.gen.Summary(ctx, current), yield)
	if !ok {
		return "", false
	}
	if !yield(Chunk{StepID: stepID, Done: true, Artifact: acc}, nil) {
		return "", false
	}
	return acc, true
}

// stream forwards tokens and returns their concatenation.
func (e *Executor) stream(stepID string, tokens iter.Seq2[string, error], yield func(Chunk, error) bool) (string, bool) {
	var acc strings.Builder
	for tok, err := range tokens {
		if err != nil {
			yield(Chunk{StepID: stepID}, err)
			return "", false
		}
		acc.WriteString(tok)
		if !yield(Chunk{StepID: stepID, Token: tok}, nil) {
			return "", false
		}
	}
	return acc.String(), true
}
