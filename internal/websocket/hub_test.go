package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"riff-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeEndpoint struct {
	mu       sync.Mutex
	received [][]byte
	ready    bool
	sendErr  error
}

func newEndpoint() *fakeEndpoint {
	return &fakeEndpoint{ready: true}
}

func (e *fakeEndpoint) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

func (e *fakeEndpoint) Send(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sendErr != nil {
		return e.sendErr
	}
	e.received = append(e.received, data)
	return nil
}

func (e *fakeEndpoint) messages() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.received))
	for i, m := range e.received {
		out[i] = string(m)
	}
	return out
}

func newTestHub() *Hub {
	return NewHub(nil, "node-1", logger.NewNopLogger())
}

func TestHub_PublishReachesEveryMember(t *testing.T) {
	hub := newTestHub()
	a, b, other := newEndpoint(), newEndpoint(), newEndpoint()
	hub.Attach("s1", a)
	hub.Attach("s1", b)
	hub.Attach("s2", other)

	hub.Publish("s1", map[string]string{"type": "stream", "chunk": "hi"})

	assert.Equal(t, []string{`{"chunk":"hi","type":"stream"}`}, a.messages())
	assert.Equal(t, a.messages(), b.messages())
	assert.Empty(t, other.messages())
}

func TestHub_RawMessagesSentUnchanged(t *testing.T) {
	hub := newTestHub()
	ep := newEndpoint()
	hub.Attach("s1", ep)

	raw := json.RawMessage(`{"type":"complete", "runId":"run-1"}`)
	hub.Publish("s1", raw)

	assert.Equal(t, []string{string(raw)}, ep.messages())
}

func TestHub_PublishToUnknownKeyIsNoop(t *testing.T) {
	hub := newTestHub()
	assert.NotPanics(t, func() { hub.Publish("nobody", map[string]string{"type": "stream"}) })
	assert.Zero(t, hub.SessionCount())
}

func TestHub_PrunesDeadEndpoints(t *testing.T) {
	hub := newTestHub()
	live, closed, failing := newEndpoint(), newEndpoint(), newEndpoint()
	closed.ready = false
	failing.sendErr = errors.New("broken pipe")
	hub.Attach("s1", live)
	hub.Attach("s1", closed)
	hub.Attach("s1", failing)

	hub.Publish("s1", map[string]string{"type": "stream"})

	assert.Len(t, live.messages(), 1)
	assert.Equal(t, 1, hub.ChannelSize("s1"))

	hub.Detach("s1", live)
	assert.Zero(t, hub.ChannelSize("s1"))
	assert.Zero(t, hub.SessionCount())
}

func TestHub_AttachTwiceKeepsOneMember(t *testing.T) {
	hub := newTestHub()
	ep := newEndpoint()

	first := hub.Attach("s1", ep)
	second := hub.Attach("s1", ep)

	assert.Equal(t, 1, hub.ChannelSize("s1"))
	assert.Equal(t, first, second)

	hub.Publish("s1", json.RawMessage(`{"type":"complete"}`))
	assert.Len(t, ep.messages(), 1)

	hub.Detach("s1", ep)
	assert.Equal(t, 0, hub.ChannelSize("s1"))
}

func TestHub_SessionContextLivesUntilLastMemberLeaves(t *testing.T) {
	hub := newTestHub()
	a, b := newEndpoint(), newEndpoint()

	ctxA := hub.Attach("s1", a)
	ctxB := hub.Attach("s1", b)
	assert.Equal(t, ctxA, ctxB)

	hub.Detach("s1", a)
	assert.NoError(t, ctxA.Err())

	hub.Detach("s1", b)
	assert.ErrorIs(t, ctxA.Err(), context.Canceled)

	fresh := hub.Attach("s1", a)
	assert.NoError(t, fresh.Err())
	hub.Detach("s1", a)
}

func TestHub_PruningLastMemberEndsSession(t *testing.T) {
	hub := newTestHub()
	ep := newEndpoint()
	ctx := hub.Attach("s1", ep)

	ep.mu.Lock()
	ep.ready = false
	ep.mu.Unlock()
	hub.Publish("s1", json.RawMessage(`{}`))

	assert.Equal(t, 0, hub.ChannelSize("s1"))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestHub_DetachUnknownIsNoop(t *testing.T) {
	hub := newTestHub()
	ep := newEndpoint()
	hub.Detach("s1", ep)
	hub.Attach("s1", ep)
	hub.Detach("s1", newEndpoint())
	assert.Equal(t, 1, hub.ChannelSize("s1"))
}

func TestHub_ConcurrentAttachPublishDetach(t *testing.T) {
	hub := newTestHub()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ep := newEndpoint()
			hub.Attach("s1", ep)
			hub.Publish("s1", map[string]int{"n": 1})
			hub.Detach("s1", ep)
		}()
	}
	wg.Wait()
	assert.Zero(t, hub.ChannelSize("s1"))
}

func TestHub_RunWithoutRedisStopsOnCancel(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
}

func TestClient_SendAfterCloseFails(t *testing.T) {
	c := NewClient(nil, "s1", 1, logger.NewNopLogger())
	require.True(t, c.Ready())
	require.NoError(t, c.Send([]byte("a")))

	assert.ErrorIs(t, c.Send([]byte("b")), ErrBufferFull)
	assert.False(t, c.Ready())
	assert.ErrorIs(t, c.Send([]byte("c")), ErrClientClosed)
	c.Close()
}
