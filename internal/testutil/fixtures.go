package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call a handler method directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures creates documents through a docstore backend, so the same helpers
// serve Mongo store tests and memstore-backed service and handler tests.
type Fixtures struct {
	b docstore.Backend
	t *testing.T
}

// NewFixtures creates a Fixtures instance for the given backend.
func NewFixtures(t *testing.T, b docstore.Backend) *Fixtures {
	t.Helper()
	return &Fixtures{b: b, t: t}
}

// Backend returns the underlying backend for direct access in tests.
func (f *Fixtures) Backend() docstore.Backend {
	return f.b
}

// CreateUser creates a provisioned user with default counters.
func (f *Fixtures) CreateUser(ctx context.Context, uid, displayName string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:                  uid,
		DisplayName:         displayName,
		LastChallengeStatus: models.ChallengePending,
		TeamIDs:             models.IDSet{},
		LeaderOf:            models.IDSet{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := f.b.Users.Create(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user %s: %v", uid, err)
	}
	return u
}

// CreateTeam creates a team led by leader with the given extra members, and
// records the team on every member's user document. All users must exist.
func (f *Fixtures) CreateTeam(ctx context.Context, name, code, mode string, leader string, members ...string) models.Team {
	f.t.Helper()
	now := time.Now().UTC()
	team := models.Team{
		ID:         uuid.NewString(),
		Name:       name,
		NameCI:     text.Fold(name),
		JoinCode:   code,
		AccessMode: mode,
		LeaderID:   leader,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, uid := range append([]string{leader}, members...) {
		u, err := f.b.Users.Get(ctx, uid)
		if err != nil {
			f.t.Fatalf("fixture team member %s: %v", uid, err)
		}
		team.Members.Upsert(uid, models.Member{DisplayName: u.DisplayName})
		u.TeamIDs.Add(team.ID)
		if uid == leader {
			u.LeaderOf.Add(team.ID)
		}
		if err := f.b.Users.Replace(ctx, u); err != nil {
			f.t.Fatalf("fixture user update %s: %v", uid, err)
		}
	}
	if err := f.b.Teams.Create(ctx, team); err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}
	return team
}

// AddPending files a join request from uid on team.
func (f *Fixtures) AddPending(ctx context.Context, teamID, uid string, at time.Time) {
	f.t.Helper()
	team, err := f.b.Teams.Get(ctx, teamID)
	if err != nil {
		f.t.Fatalf("fixture pending: %v", err)
	}
	u, err := f.b.Users.Get(ctx, uid)
	if err != nil {
		f.t.Fatalf("fixture pending user: %v", err)
	}
	team.PendingMembers.Upsert(uid, models.PendingMember{DisplayName: u.DisplayName, RequestedAt: at})
	if err := f.b.Teams.Replace(ctx, team); err != nil {
		f.t.Fatalf("fixture pending replace: %v", err)
	}
}
