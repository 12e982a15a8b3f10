// internal/app/features/teams/routes.go
package teams

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/teams. requireAuth resolves the caller; joinLimit
// throttles join-code lookups per caller.
func Routes(h *Handler, requireAuth, joinLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(requireAuth)

		pr.Post("/", h.HandleCreate)
		pr.With(joinLimit).Post("/join", h.HandleJoin)

		pr.Get("/{teamID}/dashboard", h.ServeDashboard)

		// join requests (leader only)
		pr.Post("/{teamID}/requests/{userID}/accept", h.HandleAccept)
		pr.Post("/{teamID}/requests/{userID}/reject", h.HandleReject)

		// roster (leader only)
		pr.Delete("/{teamID}/members/{userID}", h.HandleKick)
		pr.Post("/{teamID}/leader", h.HandleDelegate)

		pr.Post("/{teamID}/leave", h.HandleLeave)
	})

	return r
}
