package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "riff.RUN_STARTED", Subject("RUN_STARTED"))
}

func TestOccurredAt(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	got := occurredAt(map[string]interface{}{"occurred_at": at.Format(time.RFC3339Nano)})
	assert.True(t, got.Equal(at))

	assert.WithinDuration(t, time.Now(), occurredAt(map[string]interface{}{}), time.Second)
}
