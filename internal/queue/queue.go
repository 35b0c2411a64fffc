package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DriveLinkHQ/dl-backend/internal/authz"
	"github.com/DriveLinkHQ/dl-backend/internal/config"
	"github.com/DriveLinkHQ/dl-backend/internal/logging"
	"github.com/hibiken/asynq"
)

type TaskQueue struct {
	client *asynq.Client
}

func NewQueue(cfg *config.RedisConfig) (*TaskQueue, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Activate and test the connection
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis queue: %w", err)
	}

	logging.Info("Connected to Redis task queue")

	return &TaskQueue{client: client}, nil
}

func (q *TaskQueue) Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	task := asynq.NewTask(taskType, payload)

	t, err := q.client.Enqueue(task)

	return t, err
}

func (q *TaskQueue) Close() error {
	return q.client.Close()
}

const (
	// TypeEntityChanged is emitted by whatever mutates an event or
	// request (accept, reject, reschedule, cancel) so cached bundles for
	// that entity are dropped before their TTL runs out.
	TypeEntityChanged = "permissions:entity_changed"

	// TypeSessionEnded is emitted on logout or user switch.
	TypeSessionEnded = "permissions:session_ended"
)

type EntityChangedPayload struct {
	EntityID string
}

type SessionEndedPayload struct {
	UserID string
}

type Worker struct {
	server  *asynq.Server
	bundles authz.BundleCache
	tiers   authz.TierCache
}

func NewWorker(cfg *config.RedisConfig, bundles authz.BundleCache, tiers authz.TierCache) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logging.Error("process task failed", "type", task.Type(), "payload", string(task.Payload()), "error", err)
			}),
		},
	)

	return &Worker{
		server:  server,
		bundles: bundles,
		tiers:   tiers,
	}
}

func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEntityChanged, w.HandleEntityChanged)
	mux.HandleFunc(TypeSessionEnded, w.HandleSessionEnded)

	return w.server.Start(mux)
}

func (w *Worker) Close() {
	if w.server != nil {
		w.server.Shutdown()
	}
}

func (w *Worker) HandleEntityChanged(ctx context.Context, t *asynq.Task) error {
	var p EntityChangedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if p.EntityID == "" {
		return fmt.Errorf("entity id missing: %w", asynq.SkipRetry)
	}

	logging.Info("Invalidating cached permissions", "entity_id", p.EntityID)
	w.bundles.Invalidate(ctx, p.EntityID)

	return nil
}

func (w *Worker) HandleSessionEnded(ctx context.Context, t *asynq.Task) error {
	var p SessionEndedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logging.Info("Clearing permission caches for ended session", "user_id", p.UserID)
	if p.UserID != "" {
		w.tiers.Invalidate(ctx, p.UserID)
	}
	// Bundle entries are keyed by entity first, so a per-user sweep is
	// not possible; the TTL is short enough that a full clear is cheap.
	w.bundles.InvalidateAll(ctx)

	return nil
}
