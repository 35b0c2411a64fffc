package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DriveLinkHQ/dl-backend/internal/config"
	"github.com/DriveLinkHQ/dl-backend/internal/testutil"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T) (*Worker, *testutil.MockBundleCache, *testutil.MockTierCache) {
	bundles := testutil.NewMockBundleCache(t)
	tiers := testutil.NewMockTierCache(t)
	worker := NewWorker(&config.RedisConfig{Addr: "localhost:6379"}, bundles, tiers)
	return worker, bundles, tiers
}

func newTask(t *testing.T, taskType string, payload any) *asynq.Task {
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(taskType, data)
}

func TestWorker_HandleEntityChanged(t *testing.T) {
	worker, bundles, _ := newTestWorker(t)

	bundles.On("Invalidate", mock.Anything, "e1").Return()

	task := newTask(t, TypeEntityChanged, EntityChangedPayload{EntityID: "e1"})
	err := worker.HandleEntityChanged(context.Background(), task)

	require.NoError(t, err)
	bundles.AssertExpectations(t)
}

func TestWorker_HandleEntityChanged_BadPayload(t *testing.T) {
	worker, _, _ := newTestWorker(t)

	task := asynq.NewTask(TypeEntityChanged, []byte("not-json"))
	err := worker.HandleEntityChanged(context.Background(), task)

	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry), "malformed payloads must not be retried")
}

func TestWorker_HandleEntityChanged_MissingID(t *testing.T) {
	worker, _, _ := newTestWorker(t)

	task := newTask(t, TypeEntityChanged, EntityChangedPayload{})
	err := worker.HandleEntityChanged(context.Background(), task)

	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestWorker_HandleSessionEnded(t *testing.T) {
	worker, bundles, tiers := newTestWorker(t)

	tiers.On("Invalidate", mock.Anything, "u1").Return()
	bundles.On("InvalidateAll", mock.Anything).Return()

	task := newTask(t, TypeSessionEnded, SessionEndedPayload{UserID: "u1"})
	err := worker.HandleSessionEnded(context.Background(), task)

	require.NoError(t, err)
	tiers.AssertExpectations(t)
	bundles.AssertExpectations(t)
}

func TestWorker_HandleSessionEnded_NoUserID(t *testing.T) {
	worker, bundles, _ := newTestWorker(t)

	bundles.On("InvalidateAll", mock.Anything).Return()

	task := newTask(t, TypeSessionEnded, SessionEndedPayload{})
	err := worker.HandleSessionEnded(context.Background(), task)

	require.NoError(t, err)
	bundles.AssertExpectations(t)
}
