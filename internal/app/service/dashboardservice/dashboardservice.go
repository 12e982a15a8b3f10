// Package dashboardservice builds the read-only team views.
package dashboardservice

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/normalize"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"
)

// Service answers dashboard queries.
type Service struct {
	teams docstore.Teams
	log   *zap.Logger
}

// New builds a Service.
func New(b docstore.Backend, logger *zap.Logger) *Service {
	return &Service{teams: b.Teams, log: logger}
}

// RankedMember is one row of the leaderboard.
type RankedMember struct {
	Rank               int    `json:"rank"`
	UserID             string `json:"userId"`
	DisplayName        string `json:"displayName"`
	WeeklySuccessCount int    `json:"weeklySuccessCount"`
	IsLeader           bool   `json:"isLeader"`
}

// PendingRequest is a join request shown to the leader.
type PendingRequest struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Dashboard is the team view returned to a member.
type Dashboard struct {
	TeamID     string         `json:"teamId"`
	TeamName   string         `json:"teamName"`
	TeamLP     int64          `json:"teamLP"`
	JoinCode   string         `json:"joinCode"`
	AccessMode string         `json:"accessMode"`
	LeaderID   string         `json:"leaderId"`
	Members    []RankedMember `json:"members"`
	// Pending is only filled for the leader.
	Pending []PendingRequest `json:"pendingMembers,omitempty"`
}

// GetTeamDashboard returns the team summary with members ranked by weekly
// success count. Ties are ordered by display name, then user id.
func (s *Service) GetTeamDashboard(ctx context.Context, callerID, teamID string) (Dashboard, error) {
	teamID = normalize.ID(teamID)
	if teamID == "" {
		return Dashboard{}, apperr.New(apperr.InvalidArgument, "Team id is required.")
	}
	team, err := s.teams.Get(ctx, teamID)
	if errors.Is(err, docstore.ErrNotFound) {
		return Dashboard{}, apperr.New(apperr.NotFound, "Team not found.")
	}
	if err != nil {
		return Dashboard{}, apperr.Surface(err, s.log, "Failed to load team.", zap.String("team_id", teamID))
	}
	if !team.Members.Has(callerID) {
		return Dashboard{}, apperr.New(apperr.PermissionDenied, "Only team members can view this dashboard.")
	}

	d := Dashboard{
		TeamID:     team.ID,
		TeamName:   team.Name,
		TeamLP:     team.TeamLP,
		JoinCode:   team.JoinCode,
		AccessMode: team.AccessMode,
		LeaderID:   team.LeaderID,
		Members:    Rank(team),
	}
	if team.LeaderID == callerID {
		d.Pending = pendingOldestFirst(team.PendingMembers)
	}
	return d, nil
}

// Rank orders the roster for display and numbers it 1..n by position.
func Rank(team models.Team) []RankedMember {
	rows := make([]RankedMember, 0, len(team.Members))
	for uid, m := range team.Members {
		rows = append(rows, RankedMember{
			UserID:             uid,
			DisplayName:        m.DisplayName,
			WeeklySuccessCount: m.WeeklySuccessCount,
			IsLeader:           uid == team.LeaderID,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.WeeklySuccessCount != b.WeeklySuccessCount {
			return a.WeeklySuccessCount > b.WeeklySuccessCount
		}
		if fa, fb := text.Fold(a.DisplayName), text.Fold(b.DisplayName); fa != fb {
			return fa < fb
		}
		return a.UserID < b.UserID
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func pendingOldestFirst(p models.PendingMap) []PendingRequest {
	out := make([]PendingRequest, 0, len(p))
	for uid, req := range p {
		out = append(out, PendingRequest{UserID: uid, DisplayName: req.DisplayName, RequestedAt: req.RequestedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.Before(out[j].RequestedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}
