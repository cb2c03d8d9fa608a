package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"riff-be/internal/constant"
	"riff-be/internal/dto"
	"riff-be/internal/pkg/logger"
	"riff-be/internal/websocket"
	"riff-be/pkg/generation"
	"riff-be/pkg/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runText = "Our startup should pivot to selling to enterprises."

func executeRun(t *testing.T, ctx context.Context, h *harness, chainID, sessionID string) string {
	t.Helper()
	ok, data, code := h.dispatch(t, ctx, sessionID, `{"type":"run.execute","chainId":"`+chainID+`","text":"`+runText+`"}`)
	require.True(t, ok, code)
	return data.(dto.RunExecuteResponse).RunId
}

func TestRun_EventsInStepOrderAndLedgered(t *testing.T) {
	h := newHarness(t)
	chainID := createChain(t, h, testChain)

	runID := executeRun(t, context.Background(), h, chainID, "s1")
	h.runs.Wait()

	events := h.sessions.events(t, "s1")
	require.NotEmpty(t, events)

	var terminals []string
	for _, ev := range events {
		assert.Equal(t, runID, ev["runId"])
		if ev["type"] == constant.EventStepComplete {
			terminals = append(terminals, ev["stepId"].(string))
		}
	}
	assert.Equal(t, []string{"critique", "digest", "shout"}, terminals)
	assert.Equal(t, constant.EventComplete, events[len(events)-1]["type"])

	last := events[len(events)-2]
	assert.Equal(t, "shout", last["stepId"])
	assert.Equal(t, "A SHORT SUMMARY OF THE MATERIAL.", last["insights"])

	ledger, err := h.runs.Events(context.Background(), runID)
	require.NoError(t, err)
	published := h.sessions.raw("s1")
	require.Len(t, ledger, len(published))
	for i, e := range ledger {
		assert.Equal(t, i+1, e.Seq)
		assert.Equal(t, string(published[i]), string(e.Payload.(json.RawMessage)))
	}

	run, err := h.runs.Show(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, string(constant.RunStatusDone), run.Status)
	assert.Equal(t, chainID, run.ChainId)
	assert.NotNil(t, run.FinishedAt)
}

func TestRun_CacheHitReplaysSourceLedger(t *testing.T) {
	h := newHarness(t)
	chainID := createChain(t, h, testChain)

	sourceID := executeRun(t, context.Background(), h, chainID, "s1")
	h.runs.Wait()
	calls := h.provider.calls()
	original := h.sessions.raw("s1")

	replayID := executeRun(t, context.Background(), h, chainID, "s2")
	h.runs.Wait()
	assert.NotEqual(t, sourceID, replayID)
	assert.Equal(t, calls, h.provider.calls())

	replayed := h.sessions.raw("s2")
	require.Len(t, replayed, len(original)+1)

	var hit dto.Event
	require.NoError(t, json.Unmarshal(replayed[0], &hit))
	assert.Equal(t, constant.EventCacheHit, hit.Type)
	assert.Equal(t, replayID, hit.RunId)
	assert.NotEmpty(t, hit.Fp)
	for i := range original {
		assert.Equal(t, string(original[i]), string(replayed[i+1]))
	}

	run, err := h.runs.Show(context.Background(), replayID)
	require.NoError(t, err)
	assert.Equal(t, string(constant.RunStatusDone), run.Status)
	require.NotNil(t, run.SourceRunId)
	assert.Equal(t, sourceID, *run.SourceRunId)

	events, err := h.runs.Events(context.Background(), replayID)
	require.NoError(t, err)
	assert.Len(t, events, len(original))
}

func TestRun_GenerationFailureMarksRunFailed(t *testing.T) {
	h := newHarness(t)
	h.provider.err = assert.AnError
	chainID := createChain(t, h, testChain)

	runID := executeRun(t, context.Background(), h, chainID, "s1")
	h.runs.Wait()

	events := h.sessions.events(t, "s1")
	require.Len(t, events, 1)
	assert.Equal(t, constant.EventError, events[0]["type"])
	assert.Equal(t, constant.ErrCodeGenerationError, events[0]["error"])
	assert.Equal(t, runID, events[0]["runId"])

	run, err := h.runs.Show(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, string(constant.RunStatusFailed), run.Status)
	assert.Equal(t, constant.ErrCodeGenerationError, run.Error)
	assert.Zero(t, h.cache.Len())
}

func TestRun_SessionCancelAbortsRun(t *testing.T) {
	h := newHarness(t)
	h.provider.block = true
	chainID := createChain(t, h, testChain)

	ctx, cancel := context.WithCancel(context.Background())
	runID := executeRun(t, ctx, h, chainID, "s1")

	require.Eventually(t, func() bool { return h.provider.calls() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	h.runs.Wait()

	for _, typ := range h.sessions.types(t, "s1") {
		assert.NotEqual(t, constant.EventComplete, typ)
	}

	run, err := h.runs.Show(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, string(constant.RunStatusAborted), run.Status)
	assert.Zero(t, h.cache.Len())
}

func TestRun_ShowUnknown(t *testing.T) {
	h := newHarness(t)

	_, err := h.runs.Show(context.Background(), "run-missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = h.runs.Events(context.Background(), "run-missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

// member is a hub endpoint standing in for one websocket connection.
type member struct {
	mu   sync.Mutex
	msgs []map[string]any
}

func (m *member) Ready() bool { return true }

func (m *member) Send(data []byte) error {
	var ev map[string]any
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	m.mu.Lock()
	m.msgs = append(m.msgs, ev)
	m.mu.Unlock()
	return nil
}

func (m *member) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.msgs))
	for _, ev := range m.msgs {
		out = append(out, ev["type"].(string))
	}
	return out
}

// sharedSession starts a gated run on a session two members are attached to.
func sharedSession(t *testing.T) (h *harness, hub *websocket.Hub, runs IRunService, a, b *member, gate chan struct{}, runID string) {
	t.Helper()
	h = newHarness(t)
	chainID := createChain(t, h, testChain)
	chain, err := h.chains.Resolve(context.Background(), chainID, "")
	require.NoError(t, err)

	log := logger.NewNopLogger()
	hub = websocket.NewHub(nil, "node-1", log)
	a, b = &member{}, &member{}
	sessionCtx := hub.Attach("shared", a)
	hub.Attach("shared", b)

	gate = make(chan struct{})
	h.provider.mu.Lock()
	h.provider.gate = gate
	h.provider.mu.Unlock()

	runs = NewRunService(h.uowFactory, h.ledger, h.cache,
		pipeline.NewExecutor(generation.NewService(h.provider, generation.Config{})),
		hub, NewRunAuditor(nil, log), log)
	t.Cleanup(runs.Wait)

	runID, err = runs.Execute(sessionCtx, "shared", chain, runText)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.provider.calls() == 1 }, time.Second, 5*time.Millisecond)
	return h, hub, runs, a, b, gate, runID
}

func TestRun_SurvivesStarterLeavingSharedSession(t *testing.T) {
	_, hub, runs, a, b, gate, runID := sharedSession(t)

	hub.Detach("shared", a)
	close(gate)
	runs.Wait()

	types := b.types()
	require.NotEmpty(t, types)
	assert.Equal(t, constant.EventComplete, types[len(types)-1])
	assert.NotContains(t, a.types(), constant.EventComplete)

	run, err := runs.Show(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, string(constant.RunStatusDone), run.Status)
}

func TestRun_AbortedWhenSharedSessionEmpties(t *testing.T) {
	h, hub, runs, a, b, gate, runID := sharedSession(t)
	defer close(gate)

	hub.Detach("shared", a)
	hub.Detach("shared", b)
	runs.Wait()

	assert.NotContains(t, b.types(), constant.EventComplete)

	run, err := runs.Show(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, string(constant.RunStatusAborted), run.Status)
	assert.Zero(t, h.cache.Len())
}
