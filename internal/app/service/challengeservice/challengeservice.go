// Package challengeservice records daily wake-up challenge outcomes.
package challengeservice

import (
	"context"
	"errors"
	"time"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/timezones"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/domain/models"
	"go.uber.org/zap"
)

// Score changes applied to a user's LP.
const (
	SuccessLP int64 = 100
	FailLP    int64 = -10
)

// Service processes challenge results.
type Service struct {
	tx         docstore.Transactor
	users      docstore.Users
	teams      docstore.Teams
	challenges docstore.Challenges
	now        func() time.Time
	log        *zap.Logger
}

// New builds a Service. now may be nil.
func New(b docstore.Backend, now func() time.Time, logger *zap.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		tx:         b.Tx,
		users:      b.Users,
		teams:      b.Teams,
		challenges: b.Challenges,
		now:        now,
		log:        logger,
	}
}

// Result is what ProcessChallengeResult reports back.
type Result struct {
	Date               string `json:"date"`
	Status             string `json:"status"`
	UserLP             int64  `json:"userLP"`
	WeeklySuccessCount int    `json:"weeklySuccessCount"`
	// TeamsUpdated lists teams whose roster entry for the user was
	// incremented.
	TeamsUpdated []string `json:"teamsUpdated"`
}

// ProcessChallengeResult records today's outcome for the caller. A second
// submission on the same day overwrites the record and is scored again.
func (s *Service) ProcessChallengeResult(ctx context.Context, callerID, result string) (Result, error) {
	var delta int64
	switch result {
	case models.ChallengeSuccess:
		delta = SuccessLP
	case models.ChallengeFail:
		delta = FailLP
	default:
		return Result{}, apperr.New(apperr.InvalidArgument, "Result must be success or fail.")
	}

	now := s.now()
	day := timezones.AppDay(now)
	key := models.ChallengeKey(day, callerID)

	var out Result
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		u, err := s.users.Get(ctx, callerID)
		if errors.Is(err, docstore.ErrNotFound) {
			return apperr.Wrap(apperr.Internal, "User profile is missing.", err)
		}
		if err != nil {
			return err
		}

		// Read every team first; the writes below depend on them.
		var teams []models.Team
		if result == models.ChallengeSuccess {
			for _, id := range u.TeamIDs {
				tm, err := s.teams.Get(ctx, id)
				if errors.Is(err, docstore.ErrNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				if tm.Members.Has(callerID) {
					teams = append(teams, tm)
				}
			}
		}

		if err := s.challenges.Put(ctx, models.ChallengeRecord{
			ID:         key,
			UserID:     callerID,
			Date:       day,
			Status:     result,
			RecordedAt: now.UTC(),
		}); err != nil {
			return err
		}

		u.UserLP += delta
		u.LastChallengeStatus = result
		if result == models.ChallengeSuccess {
			u.WeeklySuccessCount++
		}
		if err := s.users.Replace(ctx, u); err != nil {
			return err
		}

		updated := make([]string, 0, len(teams))
		for _, tm := range teams {
			m, _ := tm.Members.Get(callerID)
			m.WeeklySuccessCount++
			tm.Members.Upsert(callerID, m)
			if err := s.teams.Replace(ctx, tm); err != nil {
				return err
			}
			updated = append(updated, tm.ID)
		}

		out = Result{
			Date:               day,
			Status:             result,
			UserLP:             u.UserLP,
			WeeklySuccessCount: u.WeeklySuccessCount,
			TeamsUpdated:       updated,
		}
		return nil
	})
	if err != nil {
		return Result{}, apperr.Surface(err, s.log, "Failed to record challenge result.",
			zap.String("user_id", callerID))
	}
	s.log.Info("challenge recorded",
		zap.String("user_id", callerID),
		zap.String("date", day),
		zap.String("status", result),
		zap.Int64("user_lp", out.UserLP))
	return out, nil
}
