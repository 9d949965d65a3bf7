package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	id, err := s.Create(ctx, 5, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	userID, err := s.Lookup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), userID)

	require.NoError(t, s.Revoke(ctx, id))
	_, err = s.Lookup(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Revoke(ctx, id))
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	id, err := s.Create(ctx, 8, time.Minute)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = s.Lookup(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Create(ctx, 9, time.Minute)
	require.NoError(t, err)
	assert.Len(t, s.sessions, 1, "expired entries are swept on create")
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		id := NewID()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
