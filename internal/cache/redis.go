package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/DriveLinkHQ/dl-backend/internal/authz"
	"github.com/DriveLinkHQ/dl-backend/internal/logging"
	"github.com/redis/go-redis/v9"
)

// RedisBundleCache stores bundles in Redis so that multiple backend
// instances share invalidations. Redis failures are logged and treated as
// cache misses; the resolver recomputes instead of erroring.
type RedisBundleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBundleCache(client *redis.Client, ttl time.Duration) *RedisBundleCache {
	return &RedisBundleCache{client: client, ttl: ttl}
}

func (c *RedisBundleCache) Get(ctx context.Context, entityID, userID string) (authz.Bundle, bool) {
	val, err := c.client.Get(ctx, bundleKey(entityID, userID)).Result()
	if err != nil {
		if err != redis.Nil {
			logging.Warn("bundle cache read failed", "entity_id", entityID, "error", err)
		}
		return authz.Bundle{}, false
	}

	var b authz.Bundle
	if err := json.Unmarshal([]byte(val), &b); err != nil {
		logging.Warn("bundle cache entry corrupt", "entity_id", entityID, "error", err)
		return authz.Bundle{}, false
	}
	return b, true
}

func (c *RedisBundleCache) Set(ctx context.Context, entityID, userID string, b authz.Bundle) {
	payload, err := json.Marshal(b)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, bundleKey(entityID, userID), payload, c.ttl).Err(); err != nil {
		logging.Warn("bundle cache write failed", "entity_id", entityID, "error", err)
	}
}

func (c *RedisBundleCache) Invalidate(ctx context.Context, entityID string) {
	c.deletePattern(ctx, fmt.Sprintf("perm:bundle:%s:*", entityID))
}

func (c *RedisBundleCache) InvalidateAll(ctx context.Context) {
	c.deletePattern(ctx, "perm:bundle:*")
}

func (c *RedisBundleCache) deletePattern(ctx context.Context, pattern string) {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logging.Warn("bundle cache scan failed", "pattern", pattern, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logging.Warn("bundle cache purge failed", "pattern", pattern, "error", err)
	}
}

// RedisTierCache stores authority tiers in Redis keyed by user id.
type RedisTierCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTierCache(client *redis.Client, ttl time.Duration) *RedisTierCache {
	return &RedisTierCache{client: client, ttl: ttl}
}

func (c *RedisTierCache) Get(ctx context.Context, userID string) (authz.Tier, bool) {
	val, err := c.client.Get(ctx, tierKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			logging.Warn("tier cache read failed", "user_id", userID, "error", err)
		}
		return authz.TierBasicUser, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return authz.TierBasicUser, false
	}
	return authz.Tier(n), true
}

func (c *RedisTierCache) Set(ctx context.Context, userID string, t authz.Tier) {
	if err := c.client.Set(ctx, tierKey(userID), strconv.Itoa(int(t)), c.ttl).Err(); err != nil {
		logging.Warn("tier cache write failed", "user_id", userID, "error", err)
	}
}

func (c *RedisTierCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, tierKey(userID)).Err(); err != nil {
		logging.Warn("tier cache delete failed", "user_id", userID, "error", err)
	}
}

func (c *RedisTierCache) InvalidateAll(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, "perm:tier:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logging.Warn("tier cache scan failed", "error", err)
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			logging.Warn("tier cache purge failed", "error", err)
		}
	}
}

func bundleKey(entityID, userID string) string {
	return fmt.Sprintf("perm:bundle:%s:%s", entityID, userID)
}

func tierKey(userID string) string {
	return fmt.Sprintf("perm:tier:%s", userID)
}
