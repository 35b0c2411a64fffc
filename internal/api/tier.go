package api

import (
	"net/http"

	"github.com/DriveLinkHQ/dl-backend/internal/auth"
	"github.com/DriveLinkHQ/dl-backend/internal/authz"
)

type tierResponse struct {
	Tier int    `json:"tier"`
	Name string `json:"name"`
}

func (s *Server) GetMyTier(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("authentication required").Write(w, http.StatusUnauthorized)
		return
	}

	tier := s.resolver.TierFor(r.Context(), user.ID, user.Permissions)
	writeJSON(w, http.StatusOK, tierResponse{Tier: int(tier), Name: tier.String()})
}

type visibleRolesResponse struct {
	Roles []authz.RoleLevel `json:"roles"`
}

// GetVisibleRoles returns the roles the caller may see or assign, per the
// tier dominance rule.
func (s *Server) GetVisibleRoles(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("authentication required").Write(w, http.StatusUnauthorized)
		return
	}

	tier := s.resolver.TierFor(r.Context(), user.ID, user.Permissions)
	writeJSON(w, http.StatusOK, visibleRolesResponse{
		Roles: authz.FilterByAuthority(tier, authz.RoleLadder),
	})
}
