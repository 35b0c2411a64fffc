package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/DriveLinkHQ/dl-backend/internal/auth"
	"github.com/DriveLinkHQ/dl-backend/internal/authz"
	"github.com/DriveLinkHQ/dl-backend/internal/middleware"
	"github.com/DriveLinkHQ/dl-backend/internal/queue"
	"github.com/DriveLinkHQ/dl-backend/internal/upstream"
	"github.com/google/uuid"
)

type resolveRequest struct {
	// Entity is the primary record the dashboard holds for the event or
	// request. Views are additional projections of the same logical
	// entity from other API calls; any of them may be the most complete.
	Entity map[string]any   `json:"entity"`
	Views  []map[string]any `json:"views,omitempty"`
	Force  bool             `json:"force,omitempty"`
}

type resolveResponse struct {
	Permissions authz.Bundle `json:"permissions"`
	Actions     []string     `json:"actions"`
	Tier        string       `json:"tier"`
}

// ResolvePermissions decides the permission-flag bundle for one entity
// and the calling user. Unauthenticated callers get the view-only
// bundle; upstream failures degrade to local synthesis and never surface
// as errors.
func (s *Server) ResolvePermissions(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ValidationErr("invalid request body", nil).Write(w, http.StatusBadRequest)
		return
	}
	if req.Entity == nil {
		ValidationErr("entity is required", []ErrorDetail{{Field: "entity", Message: "must be an object"}}).Write(w, http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	userID := uuid.Nil
	var perms authz.PermissionSet
	if user, ok := auth.GetAuthenticatedUser(ctx); ok {
		userID = user.ID
		perms = user.Permissions
		ctx = upstream.WithUserToken(ctx, auth.GetBearerToken(ctx))
	}

	bundle := s.resolver.Resolve(ctx, req.Entity, userID, perms, req.Force)

	roots := append([]map[string]any{req.Entity}, req.Views...)
	discovered := authz.DiscoverAllowedActions(roots...)

	tier := s.resolver.TierFor(ctx, userID, perms)

	logger.Debug("permissions resolved",
		"user_id", userID,
		"force", req.Force,
		"actions", discovered.List())

	writeJSON(w, http.StatusOK, resolveResponse{
		Permissions: bundle,
		Actions:     discovered.List(),
		Tier:        tier.String(),
	})
}

type invalidateRequest struct {
	EntityID string `json:"entityId"`
}

// InvalidateEntity purges cached bundles for one entity, for every user.
// Called after a mutating action so other viewers re-resolve promptly.
func (s *Server) InvalidateEntity(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EntityID == "" {
		ValidationErr("entityId is required", []ErrorDetail{{Field: "entityId", Message: "must be a non-empty string"}}).Write(w, http.StatusBadRequest)
		return
	}

	s.bundles.Invalidate(r.Context(), req.EntityID)
	s.publish(r.Context(), queue.TypeEntityChanged, queue.EntityChangedPayload{EntityID: req.EntityID})
	w.WriteHeader(http.StatusNoContent)
}

// InvalidateAll clears both caches. The session teardown hook: called on
// logout or user switch so no resolved permission leaks into the next
// session.
func (s *Server) InvalidateAll(w http.ResponseWriter, r *http.Request) {
	s.bundles.InvalidateAll(r.Context())
	s.tiers.InvalidateAll(r.Context())

	userID := ""
	if user, ok := auth.GetAuthenticatedUser(r.Context()); ok {
		userID = user.ID.String()
	}
	s.publish(r.Context(), queue.TypeSessionEnded, queue.SessionEndedPayload{UserID: userID})

	w.WriteHeader(http.StatusNoContent)
}

// publish enqueues an invalidation task when a queue is configured. Local
// invalidation has already happened, so a failed enqueue is logged rather
// than surfaced.
func (s *Server) publish(ctx context.Context, taskType string, payload any) {
	if s.queue == nil {
		return
	}
	if _, err := s.queue.Enqueue(taskType, payload); err != nil {
		middleware.GetLoggerFromContext(ctx).Warn("invalidation task enqueue failed",
			"type", taskType, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
