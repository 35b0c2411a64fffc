package testutil

import (
	"context"
	"testing"

	"github.com/DriveLinkHQ/dl-backend/internal/authz"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
)

// MockResolver is a mock implementation of the api resolver interface
type MockResolver struct {
	mock.Mock
}

func NewMockResolver(t *testing.T) *MockResolver {
	m := &MockResolver{}
	m.Test(t)
	return m
}

func (m *MockResolver) Resolve(ctx context.Context, entity map[string]any, userID uuid.UUID, perms authz.PermissionSet, force bool) authz.Bundle {
	args := m.Called(ctx, entity, userID, perms, force)
	return args.Get(0).(authz.Bundle)
}

func (m *MockResolver) TierFor(ctx context.Context, userID uuid.UUID, perms authz.PermissionSet) authz.Tier {
	args := m.Called(ctx, userID, perms)
	return args.Get(0).(authz.Tier)
}

// MockBundleCache is a mock implementation of the bundle cache interface
type MockBundleCache struct {
	mock.Mock
}

func NewMockBundleCache(t *testing.T) *MockBundleCache {
	m := &MockBundleCache{}
	m.Test(t)
	return m
}

func (m *MockBundleCache) Get(ctx context.Context, entityID, userID string) (authz.Bundle, bool) {
	args := m.Called(ctx, entityID, userID)
	return args.Get(0).(authz.Bundle), args.Bool(1)
}

func (m *MockBundleCache) Set(ctx context.Context, entityID, userID string, b authz.Bundle) {
	m.Called(ctx, entityID, userID, b)
}

func (m *MockBundleCache) Invalidate(ctx context.Context, entityID string) {
	m.Called(ctx, entityID)
}

func (m *MockBundleCache) InvalidateAll(ctx context.Context) {
	m.Called(ctx)
}

// MockTierCache is a mock implementation of the tier cache interface
type MockTierCache struct {
	mock.Mock
}

func NewMockTierCache(t *testing.T) *MockTierCache {
	m := &MockTierCache{}
	m.Test(t)
	return m
}

func (m *MockTierCache) Get(ctx context.Context, userID string) (authz.Tier, bool) {
	args := m.Called(ctx, userID)
	return args.Get(0).(authz.Tier), args.Bool(1)
}

func (m *MockTierCache) Set(ctx context.Context, userID string, t authz.Tier) {
	m.Called(ctx, userID, t)
}

func (m *MockTierCache) Invalidate(ctx context.Context, userID string) {
	m.Called(ctx, userID)
}

func (m *MockTierCache) InvalidateAll(ctx context.Context) {
	m.Called(ctx)
}

// MockTaskQueue is a mock implementation of the task enqueuer interface
type MockTaskQueue struct {
	mock.Mock
}

func NewMockTaskQueue(t *testing.T) *MockTaskQueue {
	m := &MockTaskQueue{}
	m.Test(t)
	return m
}

func (m *MockTaskQueue) Enqueue(taskType string, data any) (*asynq.TaskInfo, error) {
	args := m.Called(taskType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}
