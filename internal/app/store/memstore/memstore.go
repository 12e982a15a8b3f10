// Package memstore is an in-process document store implementing every
// docstore interface. It backs store_backend=memory (local development) and
// the service tests.
//
// Transactions are serialized: Run holds a transaction lock for the whole
// callback, snapshots all collections first, and restores the snapshot if the
// callback fails. Documents are deep-copied on the way in and out, so callers
// never share maps or slices with the store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/domain/models"
)

// Store holds every collection.
type Store struct {
	txMu sync.Mutex // serializes transactions
	mu   sync.Mutex // guards the maps below

	users      map[string]models.User
	teams      map[string]models.Team
	challenges map[string]models.ChallengeRecord
	mission    *models.Mission

	// FailNextWrite, when set, makes the next write return it. Tests use it
	// to check that a failed transaction leaves no partial writes.
	FailNextWrite error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:      map[string]models.User{},
		teams:      map[string]models.Team{},
		challenges: map[string]models.ChallengeRecord{},
	}
}

// Backend exposes the store through the docstore interfaces.
func (s *Store) Backend() docstore.Backend {
	return docstore.Backend{
		Tx:         s,
		Users:      Users{s},
		Teams:      Teams{s},
		Challenges: Challenges{s},
		Missions:   Missions{s},
	}
}

type snapshot struct {
	users      map[string]models.User
	teams      map[string]models.Team
	challenges map[string]models.ChallengeRecord
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		users:      make(map[string]models.User, len(s.users)),
		teams:      make(map[string]models.Team, len(s.teams)),
		challenges: make(map[string]models.ChallengeRecord, len(s.challenges)),
	}
	for k, v := range s.users {
		snap.users[k] = v.Clone()
	}
	for k, v := range s.teams {
		snap.teams[k] = v.Clone()
	}
	for k, v := range s.challenges {
		snap.challenges[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.teams = snap.teams
	s.challenges = snap.challenges
}

// Run implements docstore.Transactor.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) failWrite() error {
	if err := s.FailNextWrite; err != nil {
		s.FailNextWrite = nil
		return err
	}
	return nil
}

// SetMission installs the mission returned by Missions.Today.
func (s *Store) SetMission(m models.Mission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mission = &m
}

/* -------------------------------------------------------------------------- */

// Users implements docstore.Users.
type Users struct{ s *Store }

func (u Users) Get(_ context.Context, uid string) (models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	v, ok := u.s.users[uid]
	if !ok {
		return models.User{}, docstore.ErrNotFound
	}
	return v.Clone(), nil
}

func (u Users) Create(_ context.Context, v models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.failWrite(); err != nil {
		return err
	}
	if _, ok := u.s.users[v.ID]; ok {
		return docstore.ErrExists
	}
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	if v.TeamIDs == nil {
		v.TeamIDs = models.IDSet{}
	}
	if v.LeaderOf == nil {
		v.LeaderOf = models.IDSet{}
	}
	u.s.users[v.ID] = v.Clone()
	return nil
}

func (u Users) Replace(_ context.Context, v models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.failWrite(); err != nil {
		return err
	}
	if _, ok := u.s.users[v.ID]; !ok {
		return docstore.ErrNotFound
	}
	v.UpdatedAt = time.Now().UTC()
	u.s.users[v.ID] = v.Clone()
	return nil
}

func (u Users) Delete(_ context.Context, uid string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.failWrite(); err != nil {
		return err
	}
	delete(u.s.users, uid)
	return nil
}

func (u Users) ListByWakeUpTime(_ context.Context, hhmm string) ([]models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	var out []models.User
	for _, v := range u.s.users {
		if v.WakeUpTime != nil && *v.WakeUpTime == hhmm && v.FCMToken != nil && *v.FCMToken != "" {
			out = append(out, v.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

/* -------------------------------------------------------------------------- */

// Teams implements docstore.Teams.
type Teams struct{ s *Store }

func (t Teams) Get(_ context.Context, id string) (models.Team, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	v, ok := t.s.teams[id]
	if !ok {
		return models.Team{}, docstore.ErrNotFound
	}
	return v.Clone(), nil
}

func (t Teams) FindByJoinCode(_ context.Context, code string) (models.Team, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var best *models.Team
	for _, v := range t.s.teams {
		if v.JoinCode != code {
			continue
		}
		if best == nil || v.CreatedAt.Before(best.CreatedAt) ||
			(v.CreatedAt.Equal(best.CreatedAt) && v.ID < best.ID) {
			c := v
			best = &c
		}
	}
	if best == nil {
		return models.Team{}, docstore.ErrNotFound
	}
	return best.Clone(), nil
}

func (t Teams) Create(_ context.Context, v models.Team) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.failWrite(); err != nil {
		return err
	}
	if _, ok := t.s.teams[v.ID]; ok {
		return docstore.ErrExists
	}
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	t.s.teams[v.ID] = v.Clone()
	return nil
}

func (t Teams) Replace(_ context.Context, v models.Team) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.failWrite(); err != nil {
		return err
	}
	if _, ok := t.s.teams[v.ID]; !ok {
		return docstore.ErrNotFound
	}
	v.UpdatedAt = time.Now().UTC()
	t.s.teams[v.ID] = v.Clone()
	return nil
}

func (t Teams) Delete(_ context.Context, id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.failWrite(); err != nil {
		return err
	}
	delete(t.s.teams, id)
	return nil
}

func (t Teams) ListByPendingMember(_ context.Context, uid string) ([]models.Team, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var out []models.Team
	for _, v := range t.s.teams {
		if v.PendingMembers.Has(uid) {
			out = append(out, v.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// All returns every team, ordered by id. Tests use it to check invariants.
func (t Teams) All() []models.Team {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	out := make([]models.Team, 0, len(t.s.teams))
	for _, v := range t.s.teams {
		out = append(out, v.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

/* -------------------------------------------------------------------------- */

// Challenges implements docstore.Challenges.
type Challenges struct{ s *Store }

func (c Challenges) Put(_ context.Context, rec models.ChallengeRecord) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if err := c.s.failWrite(); err != nil {
		return err
	}
	c.s.challenges[rec.ID] = rec
	return nil
}

func (c Challenges) Get(_ context.Context, key string) (models.ChallengeRecord, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	rec, ok := c.s.challenges[key]
	if !ok {
		return models.ChallengeRecord{}, docstore.ErrNotFound
	}
	return rec, nil
}

/* -------------------------------------------------------------------------- */

// Missions implements docstore.Missions.
type Missions struct{ s *Store }

func (m Missions) Today(_ context.Context) (models.Mission, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.mission == nil {
		return models.Mission{}, docstore.ErrNotFound
	}
	return *m.s.mission, nil
}
