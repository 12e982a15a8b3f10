// internal/app/features/teams/create.go
package teams

import (
	"net/http"

	apierrors "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/errors"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/shared"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/metrics"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/timeouts"
)

type createRequest struct {
	TeamName   string `json:"teamName" validate:"required" label:"Team name"`
	AccessMode string `json:"accessMode" label:"Access mode"`
}

type joinRequest struct {
	JoinCode string `json:"joinCode" validate:"required,joincode" label:"Join code"`
}

// HandleCreate creates a team led by the caller.
// POST /api/teams  {teamName, accessMode}
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, err := shared.CallerID(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	var req createRequest
	if err := shared.Bind(r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create team")
	defer cancel()

	res, err := h.Teams.CreateTeam(ctx, uid, req.TeamName, req.AccessMode)
	metrics.RecordOp("create_team", string(apperr.CodeOf(err)))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusCreated, res)
}

// HandleJoin joins a public team or files a request on a private one.
// POST /api/teams/join  {joinCode}
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	uid, err := shared.CallerID(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	var req joinRequest
	if err := shared.Bind(r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "join team")
	defer cancel()

	res, err := h.Teams.JoinTeam(ctx, uid, req.JoinCode)
	metrics.RecordOp("join_team", string(apperr.CodeOf(err)))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, res)
}
