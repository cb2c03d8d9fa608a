package memory

import (
	"testing"
	"time"

	"riff-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_Lifecycle(t *testing.T) {
	repo := NewSessionRepository(time.Minute)

	s := repo.GetOrCreate("s1")
	require.NotNil(t, s)
	text := "hello world again"
	s.LastText = &text
	repo.Save(s)

	got, ok := repo.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "hello world again", *got.LastText)
	assert.Equal(t, 1, repo.Count())

	repo.Delete("s1")
	_, ok = repo.Get("s1")
	assert.False(t, ok)
}

func TestSessionRepository_Expires(t *testing.T) {
	repo := NewSessionRepository(30 * time.Millisecond)
	repo.Save(&store.Session{ID: "s1"})

	assert.Eventually(t, func() bool {
		_, ok := repo.Get("s1")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
