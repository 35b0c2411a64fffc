package api

import (
	"github.com/DriveLinkHQ/dl-backend/internal/auth"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	resolver ResolverService
	bundles  BundleCacheService
	tiers    TierCacheService
	queue    TaskEnqueuer
}

func NewServer(resolver ResolverService, bundles BundleCacheService, tiers TierCacheService, queue TaskEnqueuer) *Server {
	return &Server{
		resolver: resolver,
		bundles:  bundles,
		tiers:    tiers,
		queue:    queue,
	}
}

// Routes mounts the service's endpoints. Resolution is reachable without
// authentication (it has a defined view-only answer); invalidation is
// not.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/permissions/resolve", s.ResolvePermissions)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Post("/permissions/invalidate", s.InvalidateEntity)
			r.Post("/permissions/invalidate-all", s.InvalidateAll)
			r.Get("/me/tier", s.GetMyTier)
			r.Get("/me/visible-roles", s.GetVisibleRoles)
		})
	})
}
