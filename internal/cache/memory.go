// Package cache provides the bundle and tier caches behind the authz
// resolver: an in-process implementation used by default, and a
// Redis-backed one for multi-instance deployments.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/DriveLinkHQ/dl-backend/internal/authz"
)

type bundleEntry struct {
	bundle    authz.Bundle
	timestamp time.Time
}

// BundleCache is the in-process bundle cache. Entries expire after a
// short TTL so that a mutating action performed by another actor or tab
// is only ever stale for that window.
type BundleCache struct {
	mu      sync.Mutex
	entries map[string]bundleEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewBundleCache(ttl time.Duration) *BundleCache {
	return &BundleCache{
		entries: make(map[string]bundleEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *BundleCache) Get(_ context.Context, entityID, userID string) (authz.Bundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := bundleKeySuffix(entityID, userID)
	entry, ok := c.entries[key]
	if !ok {
		return authz.Bundle{}, false
	}
	if c.now().Sub(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		return authz.Bundle{}, false
	}
	return entry.bundle, true
}

func (c *BundleCache) Set(_ context.Context, entityID, userID string, b authz.Bundle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[bundleKeySuffix(entityID, userID)] = bundleEntry{bundle: b, timestamp: c.now()}
}

// Invalidate removes every entry for the entity, regardless of user.
func (c *BundleCache) Invalidate(_ context.Context, entityID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := entityID + ":"
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

func (c *BundleCache) InvalidateAll(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]bundleEntry)
}

type tierEntry struct {
	tier      authz.Tier
	timestamp time.Time
}

// TierCache is the in-process authority-tier cache, keyed by user id
// alone with a longer TTL than bundles.
type TierCache struct {
	mu      sync.Mutex
	entries map[string]tierEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewTierCache(ttl time.Duration) *TierCache {
	return &TierCache{
		entries: make(map[string]tierEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *TierCache) Get(_ context.Context, userID string) (authz.Tier, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[userID]
	if !ok {
		return authz.TierBasicUser, false
	}
	if c.now().Sub(entry.timestamp) > c.ttl {
		delete(c.entries, userID)
		return authz.TierBasicUser, false
	}
	return entry.tier, true
}

func (c *TierCache) Set(_ context.Context, userID string, t authz.Tier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = tierEntry{tier: t, timestamp: c.now()}
}

func (c *TierCache) Invalidate(_ context.Context, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

func (c *TierCache) InvalidateAll(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]tierEntry)
}

func bundleKeySuffix(entityID, userID string) string {
	return entityID + ":" + userID
}
