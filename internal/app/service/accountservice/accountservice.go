// Package accountservice owns the user document lifecycle: provisioning from
// identity events, device tokens, wake-up alarms and removal.
package accountservice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/service/teamservice"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/inputval"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/normalize"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultDisplayName is used when the identity carries no name.
const DefaultDisplayName = "New User"

// Identity is the payload of an identity-created event.
type Identity struct {
	UID         string `json:"uid" validate:"required" label:"UID"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100" label:"Display name"`
	Email       string `json:"email" validate:"omitempty,email" label:"Email"`
}

// Service manages user documents.
type Service struct {
	tx    docstore.Transactor
	users docstore.Users
	teams docstore.Teams
	team  *teamservice.Service
	now   func() time.Time
	log   *zap.Logger
}

// New builds a Service. Remove leaves teams through team so the roster and
// leadership rules stay in one place.
func New(b docstore.Backend, team *teamservice.Service, logger *zap.Logger) *Service {
	return &Service{
		tx:    b.Tx,
		users: b.Users,
		teams: b.Teams,
		team:  team,
		now:   func() time.Time { return time.Now().UTC() },
		log:   logger,
	}
}

// Provision creates the user document for a new identity. It is idempotent:
// when the document already exists it is returned unchanged.
func (s *Service) Provision(ctx context.Context, id Identity) (models.User, error) {
	id.UID = normalize.ID(id.UID)
	id.DisplayName = normalize.Name(id.DisplayName)
	id.Email = strings.TrimSpace(id.Email)
	if v := inputval.Validate(id); v.HasErrors() {
		return models.User{}, apperr.New(apperr.InvalidArgument, v.First())
	}

	name := id.DisplayName
	if name == "" {
		name = DefaultDisplayName
	}
	var out models.User
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		existing, err := s.users.Get(ctx, id.UID)
		if err == nil {
			out = existing
			return nil
		}
		if !errors.Is(err, docstore.ErrNotFound) {
			return err
		}

		now := s.now()
		u := models.User{
			ID:                  id.UID,
			DisplayName:         name,
			LastChallengeStatus: models.ChallengePending,
			TeamIDs:             models.IDSet{},
			LeaderOf:            models.IDSet{},
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if id.Email != "" {
			email := id.Email
			u.Email = &email
		}
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return models.User{}, apperr.Surface(err, s.log, "Failed to provision user.", zap.String("user_id", id.UID))
	}
	s.log.Info("user provisioned", zap.String("user_id", id.UID))
	return out, nil
}

// removeRounds bounds how often Remove re-runs the cascade when a join lands
// while it is in progress.
const removeRounds = 3

var errCascadeStale = errors.New("accountservice: memberships changed during removal")

// Remove deletes a user and every membership trace. Each team in the user's
// team_ids is left through the normal leave transaction (so leadership passes
// on or the team is deleted), pending requests elsewhere are withdrawn, and
// then the user document is deleted. The delete re-checks both in one
// transaction and the cascade repeats if a join slipped in; after
// removeRounds attempts Remove fails with failed-precondition. Removing an
// unknown uid is a no-op.
func (s *Service) Remove(ctx context.Context, uid string) error {
	uid = normalize.ID(uid)
	if uid == "" {
		return apperr.New(apperr.InvalidArgument, "UID is required.")
	}
	left, withdrawn := 0, 0
	for round := 0; round < removeRounds; round++ {
		u, err := s.users.Get(ctx, uid)
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		if err != nil {
			return apperr.Surface(err, s.log, "Failed to load user.", zap.String("user_id", uid))
		}

		for _, teamID := range u.TeamIDs {
			if _, err := s.team.LeaveTeam(ctx, uid, teamID); err != nil &&
				!apperr.Is(err, apperr.NotFound) && !apperr.Is(err, apperr.FailedPrecondition) {
				return err
			}
			left++
		}

		pending, err := s.teams.ListByPendingMember(ctx, uid)
		if err != nil {
			return apperr.Surface(err, s.log, "Failed to list pending requests.", zap.String("user_id", uid))
		}
		for _, p := range pending {
			if err := s.withdraw(ctx, p.ID, uid); err != nil {
				return err
			}
			withdrawn++
		}

		// The delete only commits if nothing re-attached the user since the
		// cascade above ran.
		err = s.tx.Run(ctx, func(ctx context.Context) error {
			cur, err := s.users.Get(ctx, uid)
			if errors.Is(err, docstore.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if len(cur.TeamIDs) > 0 || len(cur.LeaderOf) > 0 {
				return errCascadeStale
			}
			still, err := s.teams.ListByPendingMember(ctx, uid)
			if err != nil {
				return err
			}
			if len(still) > 0 {
				return errCascadeStale
			}
			return s.users.Delete(ctx, uid)
		})
		if errors.Is(err, errCascadeStale) {
			s.log.Info("user removal retried; memberships changed",
				zap.String("user_id", uid), zap.Int("round", round+1))
			continue
		}
		if err != nil {
			return apperr.Surface(err, s.log, "Failed to delete user.", zap.String("user_id", uid))
		}
		s.log.Info("user removed",
			zap.String("user_id", uid),
			zap.Int("teams_left", left),
			zap.Int("requests_withdrawn", withdrawn))
		return nil
	}
	s.log.Warn("user removal gave up; memberships kept changing", zap.String("user_id", uid))
	return apperr.New(apperr.FailedPrecondition, "User memberships changed during removal; try again.")
}

func (s *Service) withdraw(ctx context.Context, teamID, uid string) error {
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		team, err := s.teams.Get(ctx, teamID)
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !team.PendingMembers.Remove(uid) {
			return nil
		}
		return s.teams.Replace(ctx, team)
	})
	return apperr.Surface(err, s.log, "Failed to withdraw join request.",
		zap.String("team_id", teamID), zap.String("user_id", uid))
}

// RegisterDeviceToken stores the push token for uid.
func (s *Service) RegisterDeviceToken(ctx context.Context, uid, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperr.New(apperr.InvalidArgument, "Token is required.")
	}
	return s.update(ctx, uid, "Failed to save device token.", func(u *models.User) bool {
		if u.FCMToken != nil && *u.FCMToken == token {
			return false
		}
		u.FCMToken = &token
		return true
	})
}

// ClearDeviceToken removes uid's push token if it is still token. A token that
// has since been replaced is left alone.
func (s *Service) ClearDeviceToken(ctx context.Context, uid, token string) error {
	return s.update(ctx, uid, "Failed to clear device token.", func(u *models.User) bool {
		if u.FCMToken == nil || *u.FCMToken != token {
			return false
		}
		u.FCMToken = nil
		return true
	})
}

// SetWakeUpTime sets the daily alarm, "HH:MM" in the app timezone. An empty
// value clears it.
func (s *Service) SetWakeUpTime(ctx context.Context, uid, hhmm string) error {
	hhmm = strings.TrimSpace(hhmm)
	if hhmm != "" && !inputval.IsValidWakeUpTime(hhmm) {
		return apperr.New(apperr.InvalidArgument, "Wake-up time must be in HH:MM format.")
	}
	return s.update(ctx, uid, "Failed to save wake-up time.", func(u *models.User) bool {
		if hhmm == "" {
			if u.WakeUpTime == nil {
				return false
			}
			u.WakeUpTime = nil
			return true
		}
		u.WakeUpTime = &hhmm
		return true
	})
}

// Profile returns the caller's user document.
func (s *Service) Profile(ctx context.Context, uid string) (models.User, error) {
	u, err := s.users.Get(ctx, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.User{}, apperr.New(apperr.NotFound, "User not found.")
	}
	if err != nil {
		return models.User{}, apperr.Surface(err, s.log, "Failed to load user.", zap.String("user_id", uid))
	}
	return u, nil
}

// update runs a read-modify-write of one user document. mutate reports whether
// anything changed.
func (s *Service) update(ctx context.Context, uid, msg string, mutate func(*models.User) bool) error {
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		u, err := s.users.Get(ctx, uid)
		if errors.Is(err, docstore.ErrNotFound) {
			return apperr.New(apperr.NotFound, "User not found.")
		}
		if err != nil {
			return err
		}
		if !mutate(&u) {
			return nil
		}
		return s.users.Replace(ctx, u)
	})
	return apperr.Surface(err, s.log, msg, zap.String("user_id", uid))
}
