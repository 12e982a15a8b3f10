// internal/app/features/missions/handler.go
package missions

import (
	"context"
	"errors"
	"net/http"

	apierrors "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/errors"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/shared"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the mission of the day.
type Handler struct {
	Missions docstore.Missions
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(missions docstore.Missions, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Missions: missions, ErrLog: errLog, Log: logger}
}

// Routes mounts under /api/missions.
func Routes(h *Handler, requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(requireAuth).Get("/today", h.ServeToday)
	return r
}

// ServeToday returns the configured mission.
// GET /api/missions/today
func (h *Handler) ServeToday(w http.ResponseWriter, r *http.Request) {
	if _, err := shared.CallerID(r); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Missions.Today(ctx)
	if errors.Is(err, docstore.ErrNotFound) {
		h.ErrLog.Write(w, r, apperr.New(apperr.NotFound, "No mission is set for today."))
		return
	}
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Surface(err, h.Log, "Failed to load today's mission."))
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, m)
}
