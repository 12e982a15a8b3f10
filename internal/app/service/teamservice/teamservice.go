// Package teamservice applies membership decisions to the store.
//
// Each exported operation is one transaction. Inside it, every document the
// operation will write is read first; only then are writes issued. Team and
// user documents are always updated together so a user's team_ids never names
// a team whose roster lacks them.
package teamservice

import (
	"context"
	"errors"
	"time"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/policy/membershippolicy"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/joincode"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/normalize"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MinNameLength is the shortest team name accepted, in characters.
const MinNameLength = 2

// DefaultCodeAttempts is how many join codes CreateTeam draws looking for
// one that is not in use.
const DefaultCodeAttempts = 5

// Service runs team membership transactions.
type Service struct {
	tx    docstore.Transactor
	users docstore.Users
	teams docstore.Teams

	codes        joincode.Generator
	codeAttempts int
	now          func() time.Time
	newID        func() string
	log          *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCodeAttempts sets how many join codes CreateTeam tries. Values below 1
// are treated as 1.
func WithCodeAttempts(n int) Option {
	return func(s *Service) { s.codeAttempts = max(n, 1) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs overrides team id generation.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New builds a Service over the given backend.
func New(b docstore.Backend, codes joincode.Generator, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		tx:           b.Tx,
		users:        b.Users,
		teams:        b.Teams,
		codes:        codes,
		codeAttempts: DefaultCodeAttempts,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
		log:          logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateResult is returned by CreateTeam.
type CreateResult struct {
	TeamID   string `json:"teamId"`
	JoinCode string `json:"joinCode"`
}

// JoinResult is returned by JoinTeam.
type JoinResult struct {
	TeamID string `json:"teamId"`
	// Status is "member" for public teams and "pending" for private ones.
	Status string `json:"status"`
}

// LeaveResult is returned by LeaveTeam.
type LeaveResult struct {
	TeamDeleted bool   `json:"teamDeleted"`
	NewLeaderID string `json:"newLeaderId,omitempty"`
}

// CreateTeam creates a team with the caller as sole member and leader.
// An empty access mode means public.
func (s *Service) CreateTeam(ctx context.Context, callerID, name, accessMode string) (CreateResult, error) {
	name = normalize.Name(name)
	if normalize.NameLength(name) < MinNameLength {
		return CreateResult{}, apperr.New(apperr.InvalidArgument, "Team name must be at least 2 characters.")
	}
	mode := normalize.AccessMode(accessMode)
	if mode == "" {
		mode = models.AccessPublic
	}
	if mode != models.AccessPublic && mode != models.AccessPrivate {
		return CreateResult{}, apperr.New(apperr.InvalidArgument, "Access mode must be public or private.")
	}

	teamID := s.newID()
	var out CreateResult
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		u, err := s.loadCaller(ctx, callerID)
		if err != nil {
			return err
		}
		code, err := s.pickCode(ctx)
		if err != nil {
			return err
		}

		now := s.now()
		team := models.Team{
			ID:         teamID,
			Name:       name,
			NameCI:     text.Fold(name),
			JoinCode:   code,
			AccessMode: mode,
			LeaderID:   u.ID,
			Members: models.MemberMap{
				u.ID: {DisplayName: u.DisplayName},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.teams.Create(ctx, team); err != nil {
			return err
		}
		u.TeamIDs.Add(teamID)
		u.LeaderOf.Add(teamID)
		if err := s.users.Replace(ctx, u); err != nil {
			return err
		}
		out = CreateResult{TeamID: teamID, JoinCode: code}
		return nil
	})
	if err != nil {
		return CreateResult{}, apperr.Surface(err, s.log, "Failed to create team.",
			zap.String("user_id", callerID))
	}
	s.log.Info("team created",
		zap.String("team_id", out.TeamID),
		zap.String("user_id", callerID),
		zap.String("access_mode", mode))
	return out, nil
}

// pickCode draws up to codeAttempts codes and returns the first that no team
// uses. When every draw collides the last one is used anyway; lookups resolve
// duplicates to the earliest team.
func (s *Service) pickCode(ctx context.Context) (string, error) {
	var code string
	for i := 0; i < s.codeAttempts; i++ {
		c, err := s.codes.Next()
		if err != nil {
			return "", err
		}
		code = c
		_, err = s.teams.FindByJoinCode(ctx, code)
		if errors.Is(err, docstore.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	s.log.Warn("join code collision after all attempts", zap.String("join_code", code))
	return code, nil
}

// JoinTeam joins the team with the given code, or files a join request when
// the team is private.
func (s *Service) JoinTeam(ctx context.Context, callerID, code string) (JoinResult, error) {
	code = normalize.JoinCode(code)
	if code == "" {
		return JoinResult{}, apperr.New(apperr.InvalidArgument, "Join code is required.")
	}

	var out JoinResult
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		team, err := s.teams.FindByJoinCode(ctx, code)
		if errors.Is(err, docstore.ErrNotFound) {
			return apperr.New(apperr.NotFound, "No team matches this join code.")
		}
		if err != nil {
			return err
		}
		u, err := s.loadCaller(ctx, callerID)
		if err != nil {
			return err
		}

		next, err := membershippolicy.DecideJoin(team, u)
		if err != nil {
			return err
		}

		switch next {
		case membershippolicy.Member:
			team.Members.Upsert(u.ID, models.Member{DisplayName: u.DisplayName})
			if err := s.teams.Replace(ctx, team); err != nil {
				return err
			}
			u.TeamIDs.Add(team.ID)
			if err := s.users.Replace(ctx, u); err != nil {
				return err
			}
		case membershippolicy.Pending:
			team.PendingMembers.Upsert(u.ID, models.PendingMember{
				DisplayName: u.DisplayName,
				RequestedAt: s.now(),
			})
			if err := s.teams.Replace(ctx, team); err != nil {
				return err
			}
		}
		out = JoinResult{TeamID: team.ID, Status: next.String()}
		return nil
	})
	if err != nil {
		return JoinResult{}, apperr.Surface(err, s.log, "Failed to join team.",
			zap.String("user_id", callerID))
	}
	s.log.Info("team join",
		zap.String("team_id", out.TeamID),
		zap.String("user_id", callerID),
		zap.String("status", out.Status))
	return out, nil
}

// AcceptJoinRequest moves a pending user onto the roster.
func (s *Service) AcceptJoinRequest(ctx context.Context, leaderID, teamID, pendingUserID string) error {
	teamID, pendingUserID = normalize.ID(teamID), normalize.ID(pendingUserID)
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		team, err := s.loadTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if err := membershippolicy.CheckAccept(team, leaderID, pendingUserID); err != nil {
			return err
		}
		target, err := s.users.Get(ctx, pendingUserID)
		if errors.Is(err, docstore.ErrNotFound) {
			return apperr.New(apperr.NotFound, "The requesting user no longer exists.")
		}
		if err != nil {
			return err
		}

		req, _ := team.PendingMembers.Get(pendingUserID)
		name := target.DisplayName
		if name == "" {
			name = req.DisplayName
		}
		team.PendingMembers.Remove(pendingUserID)
		team.Members.Upsert(pendingUserID, models.Member{DisplayName: name})
		if err := s.teams.Replace(ctx, team); err != nil {
			return err
		}
		target.TeamIDs.Add(teamID)
		return s.users.Replace(ctx, target)
	})
	if err != nil {
		return apperr.Surface(err, s.log, "Failed to accept join request.",
			zap.String("team_id", teamID), zap.String("user_id", pendingUserID))
	}
	s.log.Info("join request accepted",
		zap.String("team_id", teamID), zap.String("user_id", pendingUserID))
	return nil
}

// RejectJoinRequest drops a pending request. Only the team document changes.
func (s *Service) RejectJoinRequest(ctx context.Context, leaderID, teamID, pendingUserID string) error {
	teamID, pendingUserID = normalize.ID(teamID), normalize.ID(pendingUserID)
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		team, err := s.loadTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if err := membershippolicy.CheckReject(team, leaderID, pendingUserID); err != nil {
			return err
		}
		team.PendingMembers.Remove(pendingUserID)
		return s.teams.Replace(ctx, team)
	})
	if err != nil {
		return apperr.Surface(err, s.log, "Failed to reject join request.",
			zap.String("team_id", teamID), zap.String("user_id", pendingUserID))
	}
	s.log.Info("join request rejected",
		zap.String("team_id", teamID), zap.String("user_id", pendingUserID))
	return nil
}

// KickMember removes targetID from the roster. The target's team_ids and any
// stale leader_of entry for this team are cleaned in the same transaction.
func (s *Service) KickMember(ctx context.Context, leaderID, teamID, targetID string) error {
	teamID, targetID = normalize.ID(teamID), normalize.ID(targetID)
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		team, err := s.loadTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if err := membershippolicy.CheckKick(team, leaderID, targetID); err != nil {
			return err
		}
		target, err := s.users.Get(ctx, targetID)
		targetExists := err == nil
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return err
		}

		team.Members.Remove(targetID)
		if err := s.teams.Replace(ctx, team); err != nil {
			return err
		}
		if !targetExists {
			s.log.Warn("kicked member has no user document",
				zap.String("team_id", teamID), zap.String("user_id", targetID))
			return nil
		}
		target.DropTeam(teamID)
		return s.users.Replace(ctx, target)
	})
	if err != nil {
		return apperr.Surface(err, s.log, "Failed to remove member.",
			zap.String("team_id", teamID), zap.String("user_id", targetID))
	}
	s.log.Info("member kicked",
		zap.String("team_id", teamID),
		zap.String("leader_id", leaderID),
		zap.String("user_id", targetID))
	return nil
}

// DelegateLeader hands leadership to another current member.
func (s *Service) DelegateLeader(ctx context.Context, leaderID, teamID, newLeaderID string) error {
	teamID, newLeaderID = normalize.ID(teamID), normalize.ID(newLeaderID)
	if newLeaderID == "" {
		return apperr.New(apperr.InvalidArgument, "New leader id is required.")
	}
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		team, err := s.loadTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if err := membershippolicy.CheckDelegate(team, leaderID, newLeaderID); err != nil {
			return err
		}
		oldLeader, err := s.users.Get(ctx, leaderID)
		if err != nil {
			return userErr(err)
		}
		newLeader, err := s.users.Get(ctx, newLeaderID)
		if errors.Is(err, docstore.ErrNotFound) {
			return apperr.New(apperr.NotFound, "The new leader no longer exists.")
		}
		if err != nil {
			return err
		}

		team.LeaderID = newLeaderID
		if err := s.teams.Replace(ctx, team); err != nil {
			return err
		}
		oldLeader.LeaderOf.Remove(teamID)
		if err := s.users.Replace(ctx, oldLeader); err != nil {
			return err
		}
		newLeader.TeamIDs.Add(teamID)
		newLeader.LeaderOf.Add(teamID)
		return s.users.Replace(ctx, newLeader)
	})
	if err != nil {
		return apperr.Surface(err, s.log, "Failed to change team leader.",
			zap.String("team_id", teamID), zap.String("user_id", newLeaderID))
	}
	s.log.Info("leader delegated",
		zap.String("team_id", teamID),
		zap.String("from", leaderID),
		zap.String("to", newLeaderID))
	return nil
}

// LeaveTeam removes the caller from the team. A leaving leader is replaced by
// the remaining member with the lowest id; the last member leaving deletes the
// team. When the team is already gone, or the roster no longer lists the
// caller, only the caller's own team_ids and leader_of are cleaned.
func (s *Service) LeaveTeam(ctx context.Context, callerID, teamID string) (LeaveResult, error) {
	teamID = normalize.ID(teamID)
	var out LeaveResult
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		out = LeaveResult{}

		team, err := s.teams.Get(ctx, teamID)
		teamExists := err == nil
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return err
		}
		u, err := s.users.Get(ctx, callerID)
		userExists := err == nil
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return err
		}

		if !teamExists || !team.Members.Has(callerID) {
			if !userExists || !(u.TeamIDs.Has(teamID) || u.LeaderOf.Has(teamID)) {
				if !teamExists {
					return apperr.New(apperr.NotFound, "Team not found.")
				}
				return apperr.New(apperr.FailedPrecondition, "You are not a member of this team.")
			}
			u.DropTeam(teamID)
			s.log.Warn("cleaned dangling team reference",
				zap.String("team_id", teamID), zap.String("user_id", callerID))
			return s.users.Replace(ctx, u)
		}

		plan := membershippolicy.PlanLeave(team, callerID)

		var successor models.User
		successorExists := false
		if plan.Successor != "" {
			successor, err = s.users.Get(ctx, plan.Successor)
			successorExists = err == nil
			if err != nil && !errors.Is(err, docstore.ErrNotFound) {
				return err
			}
		}

		// Writes start here.
		if plan.DeleteTeam {
			if err := s.teams.Delete(ctx, teamID); err != nil {
				return err
			}
		} else {
			team.Members.Remove(callerID)
			if plan.Successor != "" {
				team.LeaderID = plan.Successor
			}
			if err := s.teams.Replace(ctx, team); err != nil {
				return err
			}
		}
		if successorExists {
			successor.TeamIDs.Add(teamID)
			successor.LeaderOf.Add(teamID)
			if err := s.users.Replace(ctx, successor); err != nil {
				return err
			}
		}
		if userExists {
			u.DropTeam(teamID)
			if err := s.users.Replace(ctx, u); err != nil {
				return err
			}
		}

		out = LeaveResult{TeamDeleted: plan.DeleteTeam, NewLeaderID: plan.Successor}
		return nil
	})
	if err != nil {
		return LeaveResult{}, apperr.Surface(err, s.log, "Failed to leave team.",
			zap.String("team_id", teamID), zap.String("user_id", callerID))
	}
	s.log.Info("team left",
		zap.String("team_id", teamID),
		zap.String("user_id", callerID),
		zap.Bool("team_deleted", out.TeamDeleted),
		zap.String("new_leader_id", out.NewLeaderID))
	return out, nil
}

func (s *Service) loadTeam(ctx context.Context, teamID string) (models.Team, error) {
	if teamID == "" {
		return models.Team{}, apperr.New(apperr.InvalidArgument, "Team id is required.")
	}
	team, err := s.teams.Get(ctx, teamID)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.Team{}, apperr.New(apperr.NotFound, "Team not found.")
	}
	return team, err
}

func (s *Service) loadCaller(ctx context.Context, uid string) (models.User, error) {
	u, err := s.users.Get(ctx, uid)
	if err != nil {
		return models.User{}, userErr(err)
	}
	return u, nil
}

// userErr maps a failed read of the caller's own user document. Users are
// provisioned when the identity is created, so a missing document is an
// internal inconsistency rather than a caller mistake.
func userErr(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperr.Wrap(apperr.Internal, "User profile is missing.", err)
	}
	return err
}
