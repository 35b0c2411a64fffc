package authz

import (
	"context"
	"strings"

	"github.com/DriveLinkHQ/dl-backend/internal/logging"
	"github.com/google/uuid"
)

// Bundle is the resolved permission flags for one entity/user pair,
// consumed directly by the dashboard's action menus.
type Bundle struct {
	CanView        bool `json:"canView"`
	CanEdit        bool `json:"canEdit"`
	CanManageStaff bool `json:"canManageStaff"`
	CanReschedule  bool `json:"canReschedule"`
	CanCancel      bool `json:"canCancel"`
	CanDelete      bool `json:"canDelete"`
}

// ViewOnly is the bundle handed to unauthenticated callers and the floor
// every resolution degrades to.
func ViewOnly() Bundle {
	return Bundle{CanView: true}
}

// BundleCache holds resolved bundles keyed by (entity, user) with a short
// TTL; implementations live in internal/cache.
type BundleCache interface {
	Get(ctx context.Context, entityID, userID string) (Bundle, bool)
	Set(ctx context.Context, entityID, userID string, b Bundle)
	Invalidate(ctx context.Context, entityID string)
	InvalidateAll(ctx context.Context)
}

// TierCache holds computed authority tiers keyed by user, with a longer
// TTL than bundles since authority changes far less often.
type TierCache interface {
	Get(ctx context.Context, userID string) (Tier, bool)
	Set(ctx context.Context, userID string, t Tier)
	Invalidate(ctx context.Context, userID string)
	InvalidateAll(ctx context.Context)
}

// UpstreamClient is the slice of the core API the resolver needs: the
// authoritative per-request action list, and the event detail used only
// to recover a missing request linkage.
type UpstreamClient interface {
	GetRequestActions(ctx context.Context, requestID string) ([]string, error)
	GetEventDetail(ctx context.Context, eventID string) (map[string]any, error)
}

// Resolver turns a loosely typed entity record plus the caller's session
// permissions into a Bundle. Remote resolution is tried first; every
// failure degrades to local synthesis, never to an error.
type Resolver struct {
	upstream UpstreamClient
	bundles  BundleCache
	tiers    TierCache
}

func NewResolver(upstream UpstreamClient, bundles BundleCache, tiers TierCache) *Resolver {
	return &Resolver{
		upstream: upstream,
		bundles:  bundles,
		tiers:    tiers,
	}
}

// TierFor returns the user's authority tier, computing and caching it on
// a miss.
func (r *Resolver) TierFor(ctx context.Context, userID uuid.UUID, perms PermissionSet) Tier {
	if userID == uuid.Nil {
		return TierBasicUser
	}
	if tier, ok := r.tiers.Get(ctx, userID.String()); ok {
		return tier
	}
	tier := CalculateAuthorityTier(perms)
	r.tiers.Set(ctx, userID.String(), tier)
	return tier
}

// Resolve decides the full permission bundle for the entity and user.
// force skips the cache read; the fresh result still overwrites the
// cached entry.
func (r *Resolver) Resolve(ctx context.Context, entity map[string]any, userID uuid.UUID, perms PermissionSet, force bool) Bundle {
	if userID == uuid.Nil {
		return ViewOnly()
	}

	entityID := entityID(entity)
	if entityID != "" && !force {
		if b, ok := r.bundles.Get(ctx, entityID, userID.String()); ok {
			return b
		}
	}

	status := classifyStatus(statusOf(entity))

	tier := r.TierFor(ctx, userID, perms)
	if tier >= TierOperationalAdmin {
		// Admins see every control and rely on the core API to reject
		// what entity state disallows; delete stays gated on Cancelled
		// since it is never offered elsewhere.
		b := Bundle{
			CanView:        true,
			CanEdit:        true,
			CanManageStaff: true,
			CanReschedule:  true,
			CanCancel:      true,
			CanDelete:      status == statusCancelled,
		}
		r.store(ctx, entityID, userID, b)
		return b
	}

	if actions, ok := r.remoteActions(ctx, entity, entityID); ok {
		b := bundleFromActions(actions)
		r.store(ctx, entityID, userID, b)
		return b
	}

	b := bundleFromActions(fallbackActions(perms, status))
	r.store(ctx, entityID, userID, b)
	return b
}

func (r *Resolver) store(ctx context.Context, entityID string, userID uuid.UUID, b Bundle) {
	if entityID == "" {
		return
	}
	r.bundles.Set(ctx, entityID, userID.String(), b)
}

// remoteActions attempts the authoritative lookup. It reports ok=false
// when no request id could be resolved, the call failed, or the result
// carried nothing beyond the trivial view.
func (r *Resolver) remoteActions(ctx context.Context, entity map[string]any, entityID string) (ActionSet, bool) {
	requestID := linkedRequestID(entity)
	if requestID == "" && entityID != "" {
		detail, err := r.upstream.GetEventDetail(ctx, entityID)
		if err != nil {
			logging.Debug("event detail fetch failed, using local fallback",
				"entity_id", entityID, "error", err)
		} else {
			requestID = linkedRequestID(detail)
		}
	}
	if requestID == "" {
		return nil, false
	}

	names, err := r.upstream.GetRequestActions(ctx, requestID)
	if err != nil {
		logging.Debug("request actions fetch failed, using local fallback",
			"request_id", requestID, "error", err)
		return nil, false
	}

	actions := NewActionSet(names...)
	actions.Add(ActionView)
	if len(actions) <= 1 {
		// Only the forced view: treat as no remote signal.
		return nil, false
	}
	return actions, true
}

type statusBucket int

const (
	statusOther statusBucket = iota
	statusApproved
	statusCancelled
	statusRejected
)

func classifyStatus(status string) statusBucket {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved", "completed":
		return statusApproved
	case "cancelled", "canceled":
		return statusCancelled
	case "rejected":
		return statusRejected
	default:
		return statusOther
	}
}

// fallbackActions synthesizes the action set from the locally known
// permission set and the entity's status bucket when no remote data is
// available. It cannot fail; an empty permission set degenerates to
// view-only.
func fallbackActions(perms PermissionSet, status statusBucket) ActionSet {
	actions := NewActionSet(ActionView)

	switch status {
	case statusApproved:
		if perms.Grants("event", "update") {
			actions.Add(ActionEdit)
		}
		if perms.Grants("event", "manage-staff") {
			actions.Add(ActionManageStaff)
		}
		if perms.Grants("request", "reschedule") {
			actions.Add(ActionResched)
		}
		if perms.Grants("request", "cancel") {
			actions.Add(ActionCancel)
		}
	case statusCancelled:
		if perms.Grants("request", "delete") {
			actions.Add(ActionDelete)
		}
	default:
		if perms.Grants("request", "update") {
			actions.Add(ActionEdit)
		}
		if perms.Grants("request", "reschedule") {
			actions.Add(ActionResched)
		}
		// Cancel is never offered once the request has been rejected.
		if status != statusRejected && perms.Grants("request", "cancel") {
			actions.Add(ActionCancel)
		}
		if perms.Grants("event", "manage-staff") {
			actions.Add(ActionManageStaff)
		}
	}
	return actions
}

func bundleFromActions(actions ActionSet) Bundle {
	return Bundle{
		CanView:        true,
		CanEdit:        IsActionAllowed(actions, ActionEdit),
		CanManageStaff: IsActionAllowed(actions, ActionManageStaff),
		CanReschedule:  IsActionAllowed(actions, ActionResched),
		CanCancel:      IsActionAllowed(actions, ActionCancel),
		CanDelete:      IsActionAllowed(actions, ActionDelete),
	}
}

// entityIDFields are the candidate spellings of the entity's own id.
var entityIDFields = []string{"id", "eventId", "event_id"}

// requestIDFields are the candidate spellings of the linked
// approval-request id.
var requestIDFields = []string{"approvalRequestId", "requestId", "request_id"}

func entityID(entity map[string]any) string {
	if entity == nil {
		return ""
	}
	if id := stringField(entity, entityIDFields); id != "" {
		return id
	}
	if event, ok := entity["event"].(map[string]any); ok {
		return stringField(event, entityIDFields)
	}
	return ""
}

func linkedRequestID(entity map[string]any) string {
	if entity == nil {
		return ""
	}
	if id := stringField(entity, requestIDFields); id != "" {
		return id
	}
	if req, ok := entity["request"].(map[string]any); ok {
		return stringField(req, []string{"id"})
	}
	return ""
}

func statusOf(entity map[string]any) string {
	if entity == nil {
		return ""
	}
	if s, ok := entity["status"].(string); ok {
		return s
	}
	if req, ok := entity["request"].(map[string]any); ok {
		if s, ok := req["status"].(string); ok {
			return s
		}
	}
	return ""
}

func stringField(node map[string]any, keys []string) string {
	for _, key := range keys {
		if s, ok := node[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
