package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"riff-be/internal/constant"
	"riff-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const relayPublishTimeout = 2 * time.Second

// Endpoint is one member of a session channel.
type Endpoint interface {
	Ready() bool
	Send(data []byte) error
}

// relayMessage is what instances exchange over Redis.
type relayMessage struct {
	Origin  string          `json:"origin"`
	Key     string          `json:"key"`
	Message json.RawMessage `json:"message"`
}

// channel is one session: its local members and the context work started on
// behalf of the session runs under. ctx is canceled when the last member leaves.
type channel struct {
	members map[Endpoint]struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

// Hub maps session keys to the endpoints attached to them and fans messages
// out to every member. When rdb is set, publishes are mirrored to the other
// instances sharing the Redis server.
type Hub struct {
	channels   map[string]*channel
	mu         sync.RWMutex
	rdb        *redis.Client
	instanceID string
	logger     logger.ILogger
}

func NewHub(rdb *redis.Client, instanceID string, log logger.ILogger) *Hub {
	return &Hub{
		channels:   make(map[string]*channel),
		rdb:        rdb,
		instanceID: instanceID,
		logger:     log,
	}
}

// Attach adds ep to the channel of key and returns the session context, which
// stays alive until the channel has no members left. Attaching twice is a no-op.
func (h *Hub) Attach(key string, ep Endpoint) context.Context {
	h.mu.Lock()
	ch, ok := h.channels[key]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		ch = &channel{members: make(map[Endpoint]struct{}), ctx: ctx, cancel: cancel}
		h.channels[key] = ch
	}
	ch.members[ep] = struct{}{}
	size := len(ch.members)
	h.mu.Unlock()

	h.logger.Debug("Hub", "Endpoint attached", map[string]interface{}{"session_id": key, "members": size})
	return ch.ctx
}

// Detach removes ep from the channel; the channel is dropped and its session
// context canceled once empty.
func (h *Hub) Detach(key string, ep Endpoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(key, ep)
}

func (h *Hub) remove(key string, ep Endpoint) {
	ch, ok := h.channels[key]
	if !ok {
		return
	}
	delete(ch.members, ep)
	if len(ch.members) == 0 {
		delete(h.channels, key)
		ch.cancel()
	}
}

func (h *Hub) ChannelSize(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if ch, ok := h.channels[key]; ok {
		return len(ch.members)
	}
	return 0
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels)
}

// Publish serializes msg once and delivers it to every member of key.
// json.RawMessage and []byte are sent unchanged.
func (h *Hub) Publish(key string, msg any) {
	var data []byte
	switch m := msg.(type) {
	case json.RawMessage:
		data = m
	case []byte:
		data = m
	default:
		encoded, err := json.Marshal(msg)
		if err != nil {
			h.logger.Error("Hub", "Failed to encode message", map[string]interface{}{"session_id": key, "error": err.Error()})
			return
		}
		data = encoded
	}

	h.deliver(key, data)
	h.relay(key, data)
}

// deliver sends data to the local members of key. Members that are not ready
// or reject the message are pruned after the pass.
func (h *Hub) deliver(key string, data []byte) {
	h.mu.RLock()
	var members []Endpoint
	if ch, ok := h.channels[key]; ok {
		members = make([]Endpoint, 0, len(ch.members))
		for ep := range ch.members {
			members = append(members, ep)
		}
	}
	h.mu.RUnlock()

	var dead []Endpoint
	for _, ep := range members {
		if !ep.Ready() {
			dead = append(dead, ep)
			continue
		}
		if err := ep.Send(data); err != nil {
			dead = append(dead, ep)
		}
	}
	if len(dead) == 0 {
		return
	}

	h.mu.Lock()
	for _, ep := range dead {
		h.remove(key, ep)
	}
	h.mu.Unlock()

	h.logger.Warn("Hub", "Pruned unreachable endpoints", map[string]interface{}{"session_id": key, "count": len(dead)})
}

func (h *Hub) relay(key string, data []byte) {
	if h.rdb == nil {
		return
	}

	payload, err := json.Marshal(relayMessage{Origin: h.instanceID, Key: key, Message: data})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), relayPublishTimeout)
	defer cancel()
	if err := h.rdb.Publish(ctx, constant.SessionRelayChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Relay publish failed", map[string]interface{}{"session_id": key, "error": err.Error()})
	}
}

// Run delivers messages relayed by other instances until ctx is done.
// Without Redis it only waits for ctx.
func (h *Hub) Run(ctx context.Context) error {
	if h.rdb == nil {
		<-ctx.Done()
		return nil
	}

	pubsub := h.rdb.Subscribe(ctx, constant.SessionRelayChannel)
	defer pubsub.Close()

	h.logger.Info("Hub", "Relay subscriber started", map[string]interface{}{"instance_id": h.instanceID})

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var relayed relayMessage
			if err := json.Unmarshal([]byte(msg.Payload), &relayed); err != nil {
				h.logger.Warn("Hub", "Relay message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if relayed.Origin == h.instanceID {
				continue
			}
			h.deliver(relayed.Key, relayed.Message)
		}
	}
}
