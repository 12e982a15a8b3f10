// internal/app/features/users/routes.go
package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/users. Every route acts on the caller.
func Routes(h *Handler, requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(requireAuth)
		pr.Get("/me", h.ServeMe)
		pr.Put("/me/device-token", h.HandleDeviceToken)
		pr.Put("/me/wake-up-time", h.HandleWakeUpTime)
	})
	return r
}
