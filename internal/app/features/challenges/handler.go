// internal/app/features/challenges/handler.go
package challenges

import (
	"net/http"

	apierrors "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/errors"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/shared"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/service/challengeservice"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/metrics"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves challenge submissions.
type Handler struct {
	Challenges *challengeservice.Service
	ErrLog     *apierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(svc *challengeservice.Service, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Challenges: svc, ErrLog: errLog, Log: logger}
}

// Routes mounts under /api/challenges.
func Routes(h *Handler, requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(requireAuth).Post("/result", h.HandleResult)
	return r
}

type resultRequest struct {
	Result string `json:"result" validate:"required,oneof=success fail" label:"Result"`
}

// HandleResult records today's outcome for the caller.
// POST /api/challenges/result  {result}
func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	uid, err := shared.CallerID(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	var req resultRequest
	if err := shared.Bind(r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "challenge result")
	defer cancel()

	res, err := h.Challenges.ProcessChallengeResult(ctx, uid, req.Result)
	metrics.RecordOp("challenge_result", string(apperr.CodeOf(err)))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, res)
}
