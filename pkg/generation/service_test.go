package generation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riff-be/pkg/insight"
	"riff-be/pkg/llm"
)

type stubProvider struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   bool
	prompts []string
	temps   []float64
}

func (p *stubProvider) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	return p.Generate(ctx, history[len(history)-1].Content)
}

func (p *stubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.temps = append(p.temps, llm.Apply(opts...).Temperature)
	p.mu.Unlock()
	if p.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return p.reply, p.err
}

func collect(t *testing.T, seq func(func(string, error) bool)) (string, []string, error) {
	t.Helper()
	var chunks []string
	var err error
	for c, e := range seq {
		if e != nil {
			err = e
			break
		}
		chunks = append(chunks, c)
	}
	return strings.Join(chunks, ""), chunks, err
}

func TestInsights_StreamsWordsExactly(t *testing.T) {
	reply := `[{"type":"question","content":"What  changes if costs double?"}]`
	svc := NewService(&stubProvider{reply: reply}, Config{})

	full, chunks, err := collect(t, svc.Insights(context.Background(), "some input text"))
	require.NoError(t, err)
	assert.Equal(t, reply, full)
	assert.Greater(t, len(chunks), 1)
	assert.False(t, strings.HasPrefix(chunks[0], " "))
}

func TestGenerate_TemperatureOverride(t *testing.T) {
	stub := &stubProvider{reply: "ok"}
	_, _, err := collect(t, NewService(stub, Config{}).Summary(context.Background(), "x"))
	require.NoError(t, err)
	_, _, err = collect(t, NewService(stub, Config{Temperature: 0.2}).Summary(context.Background(), "x"))
	require.NoError(t, err)

	assert.Equal(t, []float64{0.7, 0.2}, stub.temps)
}

func TestInsights_ProviderError(t *testing.T) {
	boom := errors.New("quota exceeded")
	svc := NewService(&stubProvider{err: boom}, Config{})

	_, _, err := collect(t, svc.Insights(context.Background(), "some input text"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, boom)
}

func TestGenerate_Timeout(t *testing.T) {
	svc := NewService(&stubProvider{block: true}, Config{Timeout: 20 * time.Millisecond})

	_, _, err := collect(t, svc.Summary(context.Background(), "some input text"))
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGenerate_CallerCancel(t *testing.T) {
	svc := NewService(&stubProvider{block: true}, Config{Timeout: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := collect(t, svc.Summary(ctx, "some input text"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_NoProvider(t *testing.T) {
	_, err := NewService(nil, Config{}).Biases(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestLanes_InterleavesAndFinishes(t *testing.T) {
	reply := `{"steelman":[{"type":"counter-argument","content":"one two"}],"socratic":[{"type":"question","content":"why"}]}`
	svc := NewService(&stubProvider{reply: reply}, Config{})

	var order []string
	text := map[string]string{}
	var final map[string][]insight.Insight
	for c, err := range svc.Lanes(context.Background(), "input text here", []string{"steelman", "socratic"}) {
		require.NoError(t, err)
		if c.Final {
			final = c.Result
			continue
		}
		order = append(order, c.LaneID)
		text[c.LaneID] += c.Chunk
	}

	assert.Equal(t, []string{"steelman", "socratic", "steelman", "socratic", "steelman"}, order)
	assert.Equal(t, "Counterpoint: one two", text["steelman"])
	assert.Equal(t, "Question: why", text["socratic"])
	require.NotNil(t, final)
	assert.Equal(t, "one two", final["steelman"][0].Content)
}

func TestLanes_FallbackOnFreeText(t *testing.T) {
	svc := NewService(&stubProvider{reply: "alpha beta gamma delta"}, Config{})

	var final map[string][]insight.Insight
	for c, err := range svc.Lanes(context.Background(), "input text here", []string{"a", "b"}) {
		require.NoError(t, err)
		if c.Final {
			final = c.Result
		}
	}
	assert.Equal(t, "alpha beta", final["a"][0].Content)
	assert.Equal(t, "gamma delta", final["b"][0].Content)
}

func TestStream_StopsWhenAbandoned(t *testing.T) {
	svc := NewService(&stubProvider{reply: "a b c d e f"}, Config{})
	n := 0
	for range svc.Insights(context.Background(), "input text here") {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestBiases(t *testing.T) {
	text := "Obviously this always works."
	svc := NewService(&stubProvider{reply: `[{"type":"certainty","content":"Obviously","start":0,"end":9}]`}, Config{})

	biases, err := svc.Biases(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, biases, 1)
	assert.Equal(t, "certainty", biases[0].Type)
}
