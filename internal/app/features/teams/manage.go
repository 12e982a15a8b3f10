// internal/app/features/teams/manage.go
package teams

import (
	"context"
	"net/http"

	apierrors "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/errors"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/shared"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/metrics"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

type delegateRequest struct {
	NewLeaderID string `json:"newLeaderId" validate:"required" label:"New leader id"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// leaderAction runs a leader-only operation on (teamID, userID) from the path.
func (h *Handler) leaderAction(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, leaderID, teamID, userID string) error) {
	uid, err := shared.CallerID(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	teamID := chi.URLParam(r, "teamID")
	userID := chi.URLParam(r, "userID")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, op)
	defer cancel()

	err = fn(ctx, uid, teamID, userID)
	metrics.RecordOp(op, string(apperr.CodeOf(err)))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

// HandleAccept approves a pending join request.
// POST /api/teams/{teamID}/requests/{userID}/accept
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.leaderAction(w, r, "accept_join_request", h.Teams.AcceptJoinRequest)
}

// HandleReject drops a pending join request.
// POST /api/teams/{teamID}/requests/{userID}/reject
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.leaderAction(w, r, "reject_join_request", h.Teams.RejectJoinRequest)
}

// HandleKick removes a member.
// DELETE /api/teams/{teamID}/members/{userID}
func (h *Handler) HandleKick(w http.ResponseWriter, r *http.Request) {
	h.leaderAction(w, r, "kick_member", h.Teams.KickMember)
}

// HandleDelegate hands leadership to another member.
// POST /api/teams/{teamID}/leader  {newLeaderId}
func (h *Handler) HandleDelegate(w http.ResponseWriter, r *http.Request) {
	h.leaderAction(w, r, "delegate_leader", func(ctx context.Context, leaderID, teamID, _ string) error {
		var req delegateRequest
		if err := shared.Bind(r, &req); err != nil {
			return err
		}
		return h.Teams.DelegateLeader(ctx, leaderID, teamID, req.NewLeaderID)
	})
}

// HandleLeave removes the caller from the team.
// POST /api/teams/{teamID}/leave
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	uid, err := shared.CallerID(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "leave team")
	defer cancel()

	res, err := h.Teams.LeaveTeam(ctx, uid, chi.URLParam(r, "teamID"))
	metrics.RecordOp("leave_team", string(apperr.CodeOf(err)))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, res)
}

// ServeDashboard returns the ranked team view.
// GET /api/teams/{teamID}/dashboard
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	uid, err := shared.CallerID(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "team dashboard")
	defer cancel()

	d, err := h.Dashboard.GetTeamDashboard(ctx, uid, chi.URLParam(r, "teamID"))
	metrics.RecordOp("team_dashboard", string(apperr.CodeOf(err)))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, d)
}
