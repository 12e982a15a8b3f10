// internal/app/features/users/me.go
package users

import (
	"context"
	"net/http"

	apierrors "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/errors"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/shared"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/timeouts"
)

type deviceTokenRequest struct {
	Token string `json:"token" validate:"required" label:"Token"`
}

// wakeUpRequest accepts an empty value, which clears the alarm.
type wakeUpRequest struct {
	WakeUpTime string `json:"wakeUpTime" validate:"omitempty,hhmm" label:"Wake-up time"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// ServeMe returns the caller's profile.
// GET /api/users/me
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	uid, err := shared.CallerID(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Accounts.Profile(ctx, uid)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, u)
}

// HandleDeviceToken stores the caller's push token.
// PUT /api/users/me/device-token  {token}
func (h *Handler) HandleDeviceToken(w http.ResponseWriter, r *http.Request) {
	uid, err := shared.CallerID(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	var req deviceTokenRequest
	if err := shared.Bind(r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Accounts.RegisterDeviceToken(ctx, uid, req.Token); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

// HandleWakeUpTime sets or clears the caller's daily alarm.
// PUT /api/users/me/wake-up-time  {wakeUpTime}
func (h *Handler) HandleWakeUpTime(w http.ResponseWriter, r *http.Request) {
	uid, err := shared.CallerID(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	var req wakeUpRequest
	if err := shared.Bind(r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Accounts.SetWakeUpTime(ctx, uid, req.WakeUpTime); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}
