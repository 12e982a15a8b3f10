// internal/app/features/identity/handler.go
//
// Package identity receives account lifecycle events from the identity
// provider. These routes are server-to-server and guarded by the internal
// API key, not by a user token.
package identity

import (
	"net/http"

	apierrors "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/errors"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/shared"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/service/accountservice"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/metrics"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Accounts *accountservice.Service
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(accounts *accountservice.Service, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Accounts: accounts, ErrLog: errLog, Log: logger}
}

// Routes mounts under /internal/identity.
func Routes(h *Handler, requireKey func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(requireKey)
		pr.Post("/created", h.HandleCreated)
		pr.Post("/deleted", h.HandleDeleted)
	})
	return r
}

type deletedRequest struct {
	UID string `json:"uid" validate:"required" label:"UID"`
}

// HandleCreated provisions the user document for a new identity.
// POST /internal/identity/created  {uid, displayName, email}
func (h *Handler) HandleCreated(w http.ResponseWriter, r *http.Request) {
	var id accountservice.Identity
	if err := shared.DecodeJSON(r, &id); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "provision user")
	defer cancel()

	u, err := h.Accounts.Provision(ctx, id)
	metrics.RecordOp("identity_created", string(apperr.CodeOf(err)))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, u)
}

// HandleDeleted removes the user and everything that references them.
// POST /internal/identity/deleted  {uid}
func (h *Handler) HandleDeleted(w http.ResponseWriter, r *http.Request) {
	var req deletedRequest
	if err := shared.Bind(r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "remove user")
	defer cancel()

	err := h.Accounts.Remove(ctx, req.UID)
	metrics.RecordOp("identity_deleted", string(apperr.CodeOf(err)))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}
