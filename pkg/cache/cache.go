// Package cache keeps generated insight sets keyed by fingerprint in a bounded
// in-memory tier backed by an optional durable store.
package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"riff-be/pkg/insight"
)

const (
	DefaultCapacity = 100
	DefaultTTL      = 5 * time.Minute
)

type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
	ModeRun    Mode = "run"
)

// Entry is one cached result. Single-lane results live under insight.SingleLane.
// Run entries carry the id of the run whose ledger holds the events.
type Entry struct {
	Fingerprint string
	Mode        Mode
	Lanes       map[string][]insight.Insight
	RunID       string
	CreatedAt   time.Time
}

// Store is the durable tier.
type Store interface {
	// Load returns the entry for fp created strictly after after, or nil.
	Load(ctx context.Context, fp string, after time.Time) (*Entry, error)
	Save(ctx context.Context, entry Entry) error
	Purge(ctx context.Context) error
}

// ErrorFunc receives durable tier failures. The cache never surfaces them from Get or Set.
type ErrorFunc func(op string, err error)

type Options struct {
	Capacity int
	TTL      time.Duration
	Now      func() time.Time
	OnError  ErrorFunc
}

// Cache guards only the memory tier with mu; durable calls run unlocked.
type Cache struct {
	mu sync.Mutex
	// epoch is bumped by Clear so loads that started before it are not promoted.
	epoch   uint64
	mem     *lru.Cache[string, Entry]
	store   Store
	ttl     time.Duration
	now     func() time.Time
	onError ErrorFunc
}

// New builds a cache. store may be nil for a memory-only cache.
func New(store Store, opts Options) (*Cache, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OnError == nil {
		opts.OnError = func(string, error) {}
	}

	mem, err := lru.New[string, Entry](opts.Capacity)
	if err != nil {
		return nil, err
	}

	return &Cache{
		mem:     mem,
		store:   store,
		ttl:     opts.TTL,
		now:     opts.Now,
		onError: opts.OnError,
	}, nil
}

// Get returns a fresh entry for fp. Stale memory entries are dropped, and durable
// hits are promoted into memory.
func (c *Cache) Get(ctx context.Context, fp string) (Entry, bool) {
	now := c.now()

	c.mu.Lock()
	if e, ok := c.mem.Get(fp); ok {
		if c.fresh(e, now) {
			c.mu.Unlock()
			return e, true
		}
		c.mem.Remove(fp)
	}
	epoch := c.epoch
	c.mu.Unlock()

	if c.store == nil {
		return Entry{}, false
	}

	e, err := c.store.Load(ctx, fp, now.Add(-c.ttl))
	if err != nil {
		c.onError("load", err)
		return Entry{}, false
	}
	if e == nil || !c.fresh(*e, now) {
		return Entry{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return Entry{}, false
	}
	if cur, ok := c.mem.Peek(fp); ok && cur.CreatedAt.After(e.CreatedAt) {
		return cur, true
	}
	c.mem.Add(fp, *e)
	return *e, true
}

// Set writes the entry through both tiers. CreatedAt is stamped when zero.
func (c *Cache) Set(ctx context.Context, entry Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = c.now()
	}

	c.mu.Lock()
	c.mem.Add(entry.Fingerprint, entry)
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, entry); err != nil {
		c.onError("save", err)
	}
}

// Clear empties memory unconditionally and purges the durable tier.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.epoch++
	c.mem.Purge()
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.Purge(ctx)
}

func (c *Cache) Len() int {
	return c.mem.Len()
}

func (c *Cache) fresh(e Entry, now time.Time) bool {
	return now.Sub(e.CreatedAt) < c.ttl
}
