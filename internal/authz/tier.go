package authz

// Tier is a user's overall authority level, derived from the shape of
// their permission set rather than from role labels, which are not
// consistent across the record shapes the platform emits. This file is
// the single place that inference lives.
type Tier int

const (
	TierBasicUser        Tier = 20
	TierStakeholder      Tier = 30
	TierCoordinator      Tier = 60
	TierOperationalAdmin Tier = 80
	TierSystemAdmin      Tier = 100
)

func (t Tier) String() string {
	switch t {
	case TierSystemAdmin:
		return "system_admin"
	case TierOperationalAdmin:
		return "operational_admin"
	case TierCoordinator:
		return "coordinator"
	case TierStakeholder:
		return "stakeholder"
	default:
		return "basic_user"
	}
}

// CalculateAuthorityTier derives the authority tier from a permission set.
// Checks run in strict priority order; the first match wins. Empty or nil
// input yields TierBasicUser.
func CalculateAuthorityTier(perms PermissionSet) Tier {
	if len(perms) == 0 {
		return TierBasicUser
	}

	for _, p := range perms {
		if p.IsWildcard() {
			return TierSystemAdmin
		}
	}

	for _, p := range perms {
		if p.Resource == "staff" && (p.HasAction("create") || p.HasAction("update")) && unrestrictedStaff(p) {
			return TierOperationalAdmin
		}
	}

	// Grants already treats a "*" resource or action as matching, so this
	// covers review on "request" or "*" and wildcard action grants alike.
	hasReview := perms.Grants("request", "review")
	hasOperational := perms.Grants("request", "create") ||
		perms.Grants("event", "create") ||
		perms.Grants("staff", "create")

	if hasReview && !hasOperational {
		return TierStakeholder
	}
	if hasOperational {
		return TierCoordinator
	}
	if hasReview {
		return TierStakeholder
	}
	return TierBasicUser
}

// unrestrictedStaff reports whether a staff permission carries no
// allow-list restriction: metadata absent, the list missing or empty, or
// the list containing the wildcard.
func unrestrictedStaff(p Permission) bool {
	if p.Metadata == nil {
		return true
	}
	raw, ok := p.Metadata["allowedStaffTypes"]
	if !ok {
		return true
	}
	list, ok := raw.([]any)
	if !ok {
		// Unrecognized shape: treat as restricted.
		return false
	}
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if s, ok := v.(string); ok && s == Wildcard {
			return true
		}
	}
	return false
}

// CanView reports whether a viewer may see a target of the given tier.
// System admins see everything; otherwise the viewer must strictly
// dominate.
func CanView(viewer, target Tier) bool {
	return viewer == TierSystemAdmin || viewer > target
}

// CanAssignRole reports whether an assigner may hand out a role of the
// given tier. Same dominance rule as visibility.
func CanAssignRole(assigner, role Tier) bool {
	return assigner == TierSystemAdmin || assigner > role
}

// RoleLevel pairs a role name with the authority tier it confers.
type RoleLevel struct {
	Name      string `json:"name"`
	Authority Tier   `json:"authority"`
}

// RoleLadder is the fixed set of assignable roles, ascending.
var RoleLadder = []RoleLevel{
	{Name: "basic_user", Authority: TierBasicUser},
	{Name: "stakeholder", Authority: TierStakeholder},
	{Name: "coordinator", Authority: TierCoordinator},
	{Name: "operational_admin", Authority: TierOperationalAdmin},
	{Name: "system_admin", Authority: TierSystemAdmin},
}

// FilterByAuthority returns the roles a viewer is allowed to see or
// assign: everything for a system admin, otherwise only roles strictly
// below the viewer's tier.
func FilterByAuthority(viewer Tier, roles []RoleLevel) []RoleLevel {
	if viewer == TierSystemAdmin {
		return roles
	}
	out := make([]RoleLevel, 0, len(roles))
	for _, r := range roles {
		if r.Authority < viewer {
			out = append(out, r)
		}
	}
	return out
}
