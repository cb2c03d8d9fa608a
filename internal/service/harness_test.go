package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"riff-be/internal/pkg/logger"
	"riff-be/internal/repository/memory"
	"riff-be/internal/repository/unitofwork"
	"riff-be/pkg/cache"
	"riff-be/pkg/database"
	"riff-be/pkg/generation"
	"riff-be/pkg/llm"
	"riff-be/pkg/pipeline"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	insightsReply = `[{"type":"counter-argument","content":"Costs may rise."},{"type":"question","content":"Who pays?"}]`
	lanesReply    = `{"steelman":[{"type":"lateral-prompt","content":"Think of bridges."}],"red-team":[{"type":"question","content":"What breaks first?"}]}`
	summaryReply  = "A short summary of the material."
	biasesReply   = `[{"type":"anchoring","content":"first number","explanation":"leans on it","start":0,"end":5}]`
)

// scriptedProvider answers by prompt shape, the way the real model is asked.
type scriptedProvider struct {
	mu    sync.Mutex
	err   error
	block bool
	// gate, when set, holds every call until it is closed or ctx ends.
	gate    chan struct{}
	prompts []string
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	return p.Generate(ctx, history[len(history)-1].Content)
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, _ ...llm.Option) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	block, err, gate := p.block, p.err, p.gate
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}

	switch {
	case strings.HasPrefix(prompt, "Summarize"):
		return summaryReply, nil
	case strings.HasPrefix(prompt, "Several critics"):
		return lanesReply, nil
	case strings.HasPrefix(prompt, "Identify cognitive biases"):
		return biasesReply, nil
	default:
		return insightsReply, nil
	}
}

func (p *scriptedProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

// recorder is a SessionPublisher keeping every message as the bytes a socket would carry.
type recorder struct {
	mu   sync.Mutex
	msgs map[string][][]byte
}

func newRecorder() *recorder {
	return &recorder{msgs: make(map[string][][]byte)}
}

func (r *recorder) Publish(key string, msg any) {
	var data []byte
	switch m := msg.(type) {
	case json.RawMessage:
		data = append([]byte(nil), m...)
	default:
		data, _ = json.Marshal(msg)
	}
	r.mu.Lock()
	r.msgs[key] = append(r.msgs[key], data)
	r.mu.Unlock()
}

func (r *recorder) raw(key string) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.msgs[key]...)
}

func (r *recorder) events(t *testing.T, key string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, data := range r.raw(key) {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(data, &ev))
		out = append(out, ev)
	}
	return out
}

func (r *recorder) types(t *testing.T, key string) []string {
	t.Helper()
	var out []string
	for _, ev := range r.events(t, key) {
		out = append(out, ev["type"].(string))
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.msgs = make(map[string][][]byte)
	r.mu.Unlock()
}

type noopScheduler struct {
	mu    sync.Mutex
	texts []string
}

func (s *noopScheduler) Schedule(_ context.Context, _ string, text string) {
	s.mu.Lock()
	s.texts = append(s.texts, text)
	s.mu.Unlock()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:", gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

type harness struct {
	uowFactory unitofwork.RepositoryFactory
	provider   *scriptedProvider
	sessions   *recorder
	cache      *cache.Cache
	ledger     IRunLedger
	bias       *noopScheduler
	chains     IChainService
	runs       IRunService
	analyze    IAnalyzeService
	dispatcher IDispatcherService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := newTestDB(t)
	log := logger.NewNopLogger()

	h := &harness{
		uowFactory: unitofwork.NewRepositoryFactory(db),
		provider:   &scriptedProvider{},
		sessions:   newRecorder(),
		bias:       &noopScheduler{},
	}

	resultCache, err := cache.New(NewCacheStore(h.uowFactory), cache.Options{})
	require.NoError(t, err)
	h.cache = resultCache
	h.ledger = NewRunLedger(h.uowFactory)

	generator := generation.NewService(h.provider, generation.Config{})
	h.chains = NewChainService(h.uowFactory)
	h.runs = NewRunService(h.uowFactory, h.ledger, h.cache, pipeline.NewExecutor(generator), h.sessions, NewRunAuditor(nil, log), log)
	h.analyze = NewAnalyzeService(h.cache, generator, h.sessions, memory.NewSessionRepository(0), h.bias, log, AnalyzeOptions{})
	h.dispatcher = NewDispatcherService(h.chains, h.runs, h.analyze, log)

	t.Cleanup(h.runs.Wait)
	return h
}

func (h *harness) dispatch(t *testing.T, ctx context.Context, sessionID, raw string) (ok bool, data any, code string) {
	t.Helper()
	res := h.dispatcher.Dispatch(ctx, sessionID, []byte(raw))
	return res.Ok, res.Data, res.Error
}
