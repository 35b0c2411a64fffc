package api

import (
	"context"

	"github.com/DriveLinkHQ/dl-backend/internal/authz"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ResolverService defines the permission-resolution operations handlers
// depend on.
type ResolverService interface {
	Resolve(ctx context.Context, entity map[string]any, userID uuid.UUID, perms authz.PermissionSet, force bool) authz.Bundle
	TierFor(ctx context.Context, userID uuid.UUID, perms authz.PermissionSet) authz.Tier
}

// BundleCacheService exposes the invalidation surface of the bundle
// cache.
type BundleCacheService interface {
	Invalidate(ctx context.Context, entityID string)
	InvalidateAll(ctx context.Context)
}

// TierCacheService exposes the invalidation surface of the tier cache.
type TierCacheService interface {
	Invalidate(ctx context.Context, userID string)
	InvalidateAll(ctx context.Context)
}

// TaskEnqueuer publishes invalidation tasks so the background worker and
// sibling instances observe mutations. Nil when the caches are in-process
// and there is nothing to fan out to.
type TaskEnqueuer interface {
	Enqueue(taskType string, data any) (*asynq.TaskInfo, error)
}
