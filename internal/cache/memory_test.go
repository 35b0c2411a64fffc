package cache

import (
	"context"
	"testing"
	"time"

	"github.com/DriveLinkHQ/dl-backend/internal/authz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleCache_GetSet(t *testing.T) {
	c := NewBundleCache(30 * time.Second)
	ctx := context.Background()
	b := authz.Bundle{CanView: true, CanEdit: true}

	_, ok := c.Get(ctx, "e1", "u1")
	require.False(t, ok)

	c.Set(ctx, "e1", "u1", b)

	got, ok := c.Get(ctx, "e1", "u1")
	require.True(t, ok)
	assert.Equal(t, b, got)
}

func TestBundleCache_TTLExpiry(t *testing.T) {
	c := NewBundleCache(30 * time.Second)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set(ctx, "e1", "u1", authz.Bundle{CanView: true})

	// Just inside the TTL.
	c.now = func() time.Time { return now.Add(29 * time.Second) }
	_, ok := c.Get(ctx, "e1", "u1")
	assert.True(t, ok)

	// Past the TTL the entry is discarded.
	c.now = func() time.Time { return now.Add(31 * time.Second) }
	_, ok = c.Get(ctx, "e1", "u1")
	assert.False(t, ok)

	// And it stays gone even if time rolls back.
	c.now = func() time.Time { return now }
	_, ok = c.Get(ctx, "e1", "u1")
	assert.False(t, ok)
}

func TestBundleCache_InvalidateByEntity(t *testing.T) {
	c := NewBundleCache(time.Minute)
	ctx := context.Background()

	c.Set(ctx, "e1", "u1", authz.Bundle{CanView: true})
	c.Set(ctx, "e1", "u2", authz.Bundle{CanView: true})
	c.Set(ctx, "e2", "u1", authz.Bundle{CanView: true})

	c.Invalidate(ctx, "e1")

	_, ok := c.Get(ctx, "e1", "u1")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "e1", "u2")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "e2", "u1")
	assert.True(t, ok, "other entities must survive")
}

func TestBundleCache_InvalidateAll(t *testing.T) {
	c := NewBundleCache(time.Minute)
	ctx := context.Background()

	c.Set(ctx, "e1", "u1", authz.Bundle{CanView: true})
	c.Set(ctx, "e2", "u2", authz.Bundle{CanView: true})

	c.InvalidateAll(ctx)

	_, ok := c.Get(ctx, "e1", "u1")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "e2", "u2")
	assert.False(t, ok)
}

func TestTierCache_Lifecycle(t *testing.T) {
	c := NewTierCache(5 * time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, "u1")
	require.False(t, ok)

	c.Set(ctx, "u1", authz.TierCoordinator)

	got, ok := c.Get(ctx, "u1")
	require.True(t, ok)
	assert.Equal(t, authz.TierCoordinator, got)

	c.Invalidate(ctx, "u1")
	_, ok = c.Get(ctx, "u1")
	assert.False(t, ok)
}

func TestTierCache_TTLExpiry(t *testing.T) {
	c := NewTierCache(5 * time.Minute)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set(ctx, "u1", authz.TierSystemAdmin)

	c.now = func() time.Time { return now.Add(6 * time.Minute) }
	_, ok := c.Get(ctx, "u1")
	assert.False(t, ok)
}

func TestTierCache_InvalidateAll(t *testing.T) {
	c := NewTierCache(time.Minute)
	ctx := context.Background()

	c.Set(ctx, "u1", authz.TierStakeholder)
	c.Set(ctx, "u2", authz.TierCoordinator)

	c.InvalidateAll(ctx)

	_, ok := c.Get(ctx, "u1")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "u2")
	assert.False(t, ok)
}
