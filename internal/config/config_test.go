package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CACHE_TTL", "")
	t.Setenv("STREAM_DELAY", "")

	cfg := Load()

	assert.Equal(t, 100, cfg.Engine.CacheCapacity)
	assert.Equal(t, 5*time.Minute, cfg.Engine.CacheTTL)
	assert.Equal(t, 60*time.Second, cfg.Engine.GenerationTimeout)
	assert.Equal(t, 20*time.Millisecond, cfg.Engine.StreamDelay)
	assert.False(t, cfg.Engine.NoveltyGateEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CACHE_CAPACITY", "7")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("STREAM_DELAY", "0")
	t.Setenv("NOVELTY_GATE_ENABLED", "true")
	t.Setenv("DB_CONNECTION_STRING", "sqlite::memory:")
	t.Setenv("LLM_TEMPERATURE", "0.3")

	cfg := Load()

	assert.Equal(t, 7, cfg.Engine.CacheCapacity)
	assert.Equal(t, 90*time.Second, cfg.Engine.CacheTTL)
	assert.Equal(t, time.Duration(0), cfg.Engine.StreamDelay)
	assert.True(t, cfg.Engine.NoveltyGateEnabled)
	assert.Equal(t, "sqlite::memory:", cfg.Database.Connection)
	assert.Equal(t, 0.3, cfg.Ai.Temperature)
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", time.Second},
		{"150ms", 150 * time.Millisecond},
		{"250", 250 * time.Millisecond},
		{"nonsense", time.Second},
	}
	for _, tt := range tests {
		t.Setenv("RIFF_TEST_DURATION", tt.value)
		assert.Equal(t, tt.want, getEnvAsDuration("RIFF_TEST_DURATION", time.Second), tt.value)
	}
}
