// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/audit. Admins only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(authz.RoleAdmin))
		pr.Get("/", h.ServeList)
	})

	return r
}
