package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riff-be/pkg/generation"
	"riff-be/pkg/insight"
)

type fakeGenerator struct {
	inputs  []string
	err     error
	summary string
}

func (f *fakeGenerator) words(text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if f.err != nil {
			yield("", f.err)
			return
		}
		for i, w := range strings.Split(text, " ") {
			if i > 0 {
				w = " " + w
			}
			if !yield(w, nil) {
				return
			}
		}
	}
}

func (f *fakeGenerator) Insights(_ context.Context, text string) iter.Seq2[string, error] {
	f.inputs = append(f.inputs, text)
	return f.words(`[{"type":"question","content":"test insight"}]`)
}

func (f *fakeGenerator) Summary(_ context.Context, text string) iter.Seq2[string, error] {
	f.inputs = append(f.inputs, text)
	s := f.summary
	if s == "" {
		s = "summary of " + text
	}
	return f.words(s)
}

func (f *fakeGenerator) Lanes(_ context.Context, text string, lanes []string) iter.Seq2[generation.LaneChunk, error] {
	f.inputs = append(f.inputs, text)
	return func(yield func(generation.LaneChunk, error) bool) {
		result := map[string][]insight.Insight{}
		for _, lane := range lanes {
			if !yield(generation.LaneChunk{LaneID: lane, Chunk: "word"}, nil) {
				return
			}
			result[lane] = []insight.Insight{insight.New(insight.TypeLateralPrompt, "from "+lane, lane)}
		}
		yield(generation.LaneChunk{Final: true, Result: result}, nil)
	}
}

func drain(t *testing.T, seq iter.Seq2[Chunk, error]) ([]Chunk, error) {
	t.Helper()
	var out []Chunk
	for c, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

func terminals(chunks []Chunk) []Chunk {
	var out []Chunk
	for _, c := range chunks {
		if c.Done {
			out = append(out, c)
		}
	}
	return out
}

func TestRun_SummarizeTwiceInOrder(t *testing.T) {
	gen := &fakeGenerator{}
	steps := []StepSpec{{ID: "step1", Kind: KindSummarize}, {ID: "step2", Kind: KindSummarize}}

	chunks, err := drain(t, NewExecutor(gen).Run(context.Background(), steps, "test input"))
	require.NoError(t, err)

	done := terminals(chunks)
	require.Len(t, done, 2)
	assert.Equal(t, "step1", done[0].StepID)
	assert.Equal(t, "step2", done[1].StepID)
	assert.Equal(t, "summary of test input", done[0].Artifact)
	assert.Equal(t, "summary of summary of test input", done[1].Artifact)
	assert.Equal(t, []string{"test input", "summary of test input"}, gen.inputs)

	// every progress chunk of a step precedes its terminal chunk
	lastStep := ""
	for _, c := range chunks {
		if c.StepID != lastStep {
			assert.True(t, lastStep == "" || c.StepID == "step2")
			lastStep = c.StepID
		}
	}
}

func TestRun_SingleLanePersona(t *testing.T) {
	gen := &fakeGenerator{}
	steps := []StepSpec{
		{ID: "p", Kind: KindPersona, Config: json.RawMessage(`{"personas":[]}`)},
		{ID: "s", Kind: KindSummarize},
	}

	chunks, err := drain(t, NewExecutor(gen).Run(context.Background(), steps, "test input"))
	require.NoError(t, err)

	done := terminals(chunks)
	require.Len(t, done, 2)
	list, ok := done[0].Artifact.([]insight.Insight)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "test insight", list[0].Content)
	assert.JSONEq(t, `[{"type":"question","content":"test insight"}]`, gen.inputs[1])
}

func TestRun_MultiLanePersona(t *testing.T) {
	gen := &fakeGenerator{}
	steps := []StepSpec{{ID: "band", Kind: KindPersona, Config: json.RawMessage(`{"personas":["steelman","socratic"]}`)}}

	chunks, err := drain(t, NewExecutor(gen).Run(context.Background(), steps, "test input"))
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "steelman", chunks[0].LaneID)
	assert.Equal(t, "socratic", chunks[1].LaneID)

	result, ok := chunks[2].Artifact.(map[string][]insight.Insight)
	require.True(t, ok)
	assert.Equal(t, "from socratic", result["socratic"][0].Content)
}

func TestRun_MapTransforms(t *testing.T) {
	steps := []StepSpec{
		{ID: "up", Kind: KindMap, Config: json.RawMessage(`{"transform":"uppercase"}`)},
		{ID: "noop", Kind: KindMap},
	}

	chunks, err := drain(t, NewExecutor(&fakeGenerator{}).Run(context.Background(), steps, "test input"))
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "TEST INPUT", chunks[0].Artifact)
	assert.Equal(t, "TEST INPUT", chunks[1].Artifact)
}

func TestRun_GenerationErrorStops(t *testing.T) {
	boom := errors.New("boom")
	steps := []StepSpec{{ID: "s1", Kind: KindSummarize}, {ID: "s2", Kind: KindSummarize}}

	chunks, err := drain(t, NewExecutor(&fakeGenerator{err: boom}).Run(context.Background(), steps, "test input"))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, chunks)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := drain(t, NewExecutor(&fakeGenerator{}).Run(ctx, []StepSpec{{ID: "s", Kind: KindSummarize}}, "test input"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Abandon(t *testing.T) {
	gen := &fakeGenerator{summary: "a b c d e"}
	steps := []StepSpec{{ID: "s1", Kind: KindSummarize}, {ID: "s2", Kind: KindSummarize}}

	n := 0
	for range NewExecutor(gen).Run(context.Background(), steps, "test input") {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
	assert.Len(t, gen.inputs, 1)
}

func TestValidateSteps(t *testing.T) {
	tests := []struct {
		name    string
		steps   []StepSpec
		wantErr error
	}{
		{"ok", []StepSpec{{ID: "a", Kind: KindPersona, Config: json.RawMessage(`{"personas":["x"]}`)}}, nil},
		{"null config", []StepSpec{{ID: "a", Kind: KindSummarize, Config: json.RawMessage(`null`)}}, nil},
		{"duplicate ids", []StepSpec{{ID: "a", Kind: KindSummarize}, {ID: "a", Kind: KindMap}}, ErrDuplicateStepID},
		{"unknown kind", []StepSpec{{ID: "a", Kind: "explode"}}, ErrUnknownKind},
		{"unknown transform", []StepSpec{{ID: "a", Kind: KindMap, Config: json.RawMessage(`{"transform":"rot13"}`)}}, ErrUnknownTransform},
		{"personas not a list", []StepSpec{{ID: "a", Kind: KindPersona, Config: json.RawMessage(`{"personas":"steelman"}`)}}, ErrInvalidConfig},
		{"unknown config field", []StepSpec{{ID: "a", Kind: KindPersona, Config: json.RawMessage(`{"lanes":[]}`)}}, ErrInvalidConfig},
		{"blank lane", []StepSpec{{ID: "a", Kind: KindPersona, Config: json.RawMessage(`{"personas":[""]}`)}}, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSteps(tt.steps)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
