package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStorePurge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryTokenStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "expired", now.Add(-time.Minute)))
	require.NoError(t, store.Revoke(ctx, "live", now.Add(time.Hour)))

	revoked, err := store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = store.IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.Equal(t, 1, store.Purge())
	assert.Equal(t, 0, store.Purge())
}

func TestMemoryTokenStoreStartPurger(t *testing.T) {
	store := NewMemoryTokenStore()

	_, err := store.StartPurger("not a schedule", nil)
	assert.Error(t, err)

	c, err := store.StartPurger("@every 10m", nil)
	require.NoError(t, err)
	c.Stop()
	assert.Len(t, c.Entries(), 1)
}
