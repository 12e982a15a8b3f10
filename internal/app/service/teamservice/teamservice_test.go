package teamservice_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/service/teamservice"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/store/memstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/joincode"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/domain/models"
	"go.uber.org/zap"
)

type env struct {
	store *memstore.Store
	b     docstore.Backend
	svc   *teamservice.Service
}

func newEnv(t *testing.T, codes ...string) *env {
	t.Helper()
	st := memstore.New()
	b := st.Backend()
	gen := joincode.New()
	if len(codes) > 0 {
		gen = joincode.Sequence(codes...)
	}
	n := 0
	svc := teamservice.New(b, gen, zap.NewNop(), teamservice.WithIDs(func() string {
		n++
		return fmt.Sprintf("team-%02d", n)
	}))
	return &env{store: st, b: b, svc: svc}
}

func (e *env) addUser(t *testing.T, id, name string) {
	t.Helper()
	if err := e.b.Users.Create(context.Background(), models.User{ID: id, DisplayName: name}); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
}

func (e *env) user(t *testing.T, id string) models.User {
	t.Helper()
	u, err := e.b.Users.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get user %s: %v", id, err)
	}
	return u
}

func (e *env) team(t *testing.T, id string) models.Team {
	t.Helper()
	tm, err := e.b.Teams.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get team %s: %v", id, err)
	}
	return tm
}

func wantCode(t *testing.T, err error, code apperr.Code) {
	t.Helper()
	if got := apperr.CodeOf(err); got != code {
		t.Fatalf("error code: got %q, want %q (err=%v)", got, code, err)
	}
}

func TestCreateTeam_CallerIsLeaderAndMember(t *testing.T) {
	e := newEnv(t, "AB12")
	e.addUser(t, "alice", "Alice")

	res, err := e.svc.CreateTeam(context.Background(), "alice", "  Runners  ", "public")
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if res.JoinCode != "AB12" {
		t.Errorf("join code: got %q, want AB12", res.JoinCode)
	}

	tm := e.team(t, res.TeamID)
	if tm.Name != "Runners" {
		t.Errorf("name: got %q", tm.Name)
	}
	if tm.LeaderID != "alice" || !tm.Members.Has("alice") || len(tm.Members) != 1 {
		t.Errorf("roster: leader=%q members=%v", tm.LeaderID, tm.Members)
	}
	u := e.user(t, "alice")
	if !u.TeamIDs.Has(res.TeamID) || !u.LeaderOf.Has(res.TeamID) {
		t.Errorf("user sets: team_ids=%v leader_of=%v", u.TeamIDs, u.LeaderOf)
	}
}

func TestCreateTeam_Validation(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice", "Alice")

	tests := []struct {
		name string
		team string
		mode string
		want apperr.Code
	}{
		{"short name", "R", "public", apperr.InvalidArgument},
		{"blank name", "   ", "public", apperr.InvalidArgument},
		{"bad mode", "Runners", "secret", apperr.InvalidArgument},
		{"two hangul syllables", "달리", "private", ""},
		{"empty mode defaults", "Walkers", "", ""},
		{"mode is case insensitive", "Joggers", "PRIVATE", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.CreateTeam(context.Background(), "alice", tc.team, tc.mode)
			wantCode(t, err, tc.want)
		})
	}
}

func TestCreateTeam_EmptyModeIsPublic(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice", "Alice")
	res, err := e.svc.CreateTeam(context.Background(), "alice", "Runners", "")
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if got := e.team(t, res.TeamID).AccessMode; got != models.AccessPublic {
		t.Errorf("access mode: got %q, want public", got)
	}
}

func TestCreateTeam_MissingUserIsInternal(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.CreateTeam(context.Background(), "ghost", "Runners", "public")
	wantCode(t, err, apperr.Internal)
	if got := len(e.store.Backend().Teams.(memstore.Teams).All()); got != 0 {
		t.Errorf("teams after failed create: got %d, want 0", got)
	}
}

func TestCreateTeam_SkipsCodesInUse(t *testing.T) {
	e := newEnv(t, "AAAA", "AAAA", "BBBB")
	e.addUser(t, "alice", "Alice")

	first, err := e.svc.CreateTeam(context.Background(), "alice", "Team One", "public")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := e.svc.CreateTeam(context.Background(), "alice", "Team Two", "public")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.JoinCode != "AAAA" || second.JoinCode != "BBBB" {
		t.Errorf("codes: got %q and %q, want AAAA and BBBB", first.JoinCode, second.JoinCode)
	}
}

func TestCreateTeam_AllCodesCollide(t *testing.T) {
	e := newEnv(t, "AAAA")
	e.addUser(t, "alice", "Alice")
	e.addUser(t, "bob", "Bob")

	first, _ := e.svc.CreateTeam(context.Background(), "alice", "Team One", "public")
	second, err := e.svc.CreateTeam(context.Background(), "alice", "Team Two", "public")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.JoinCode != "AAAA" {
		t.Fatalf("code: got %q, want AAAA", second.JoinCode)
	}

	// Known limitation: the shared code resolves to the earliest team.
	res, err := e.svc.JoinTeam(context.Background(), "bob", "aaaa")
	if err != nil {
		t.Fatalf("JoinTeam: %v", err)
	}
	if res.TeamID != first.TeamID {
		t.Errorf("joined %q, want earliest team %q", res.TeamID, first.TeamID)
	}
}

func TestJoinTeam_PublicLowercaseCode(t *testing.T) {
	e := newEnv(t, "AB12")
	e.addUser(t, "alice", "Alice")
	e.addUser(t, "bob", "Bob")
	created, _ := e.svc.CreateTeam(context.Background(), "alice", "Runners", "public")

	res, err := e.svc.JoinTeam(context.Background(), "bob", "ab12")
	if err != nil {
		t.Fatalf("JoinTeam: %v", err)
	}
	if res.Status != "member" || res.TeamID != created.TeamID {
		t.Errorf("result: %+v", res)
	}

	tm := e.team(t, created.TeamID)
	m, ok := tm.Members.Get("bob")
	if !ok || m.WeeklySuccessCount != 0 || m.DisplayName != "Bob" {
		t.Errorf("bob entry: %+v ok=%v", m, ok)
	}
	if !e.user(t, "bob").TeamIDs.Has(created.TeamID) {
		t.Error("bob's team_ids missing team")
	}

	_, err = e.svc.JoinTeam(context.Background(), "bob", "AB12")
	wantCode(t, err, apperr.FailedPrecondition)
}

func TestJoinTeam_Errors(t *testing.T) {
	e := newEnv(t, "AB12")
	e.addUser(t, "alice", "Alice")
	e.addUser(t, "bob", "Bob")
	_, _ = e.svc.CreateTeam(context.Background(), "alice", "Runners", "private")

	_, err := e.svc.JoinTeam(context.Background(), "bob", "ZZZZ")
	wantCode(t, err, apperr.NotFound)

	_, err = e.svc.JoinTeam(context.Background(), "bob", "  ")
	wantCode(t, err, apperr.InvalidArgument)

	_, err = e.svc.JoinTeam(context.Background(), "alice", "AB12")
	wantCode(t, err, apperr.FailedPrecondition)
}

func TestJoinTeam_PrivateCreatesPending(t *testing.T) {
	e := newEnv(t, "PR1V")
	e.addUser(t, "alice", "Alice")
	e.addUser(t, "bob", "Bob")
	created, _ := e.svc.CreateTeam(context.Background(), "alice", "Quiet", "private")

	res, err := e.svc.JoinTeam(context.Background(), "bob", "pr1v")
	if err != nil {
		t.Fatalf("JoinTeam: %v", err)
	}
	if res.Status != "pending" {
		t.Errorf("status: got %q, want pending", res.Status)
	}
	tm := e.team(t, created.TeamID)
	if tm.Members.Has("bob") || !tm.PendingMembers.Has("bob") {
		t.Errorf("bob should be pending only: members=%v pending=%v", tm.Members, tm.PendingMembers)
	}
	if e.user(t, "bob").TeamIDs.Has(created.TeamID) {
		t.Error("pending user must not have the team in team_ids")
	}

	_, err = e.svc.JoinTeam(context.Background(), "bob", "PR1V")
	wantCode(t, err, apperr.AlreadyExists)
}

func TestAcceptJoinRequest(t *testing.T) {
	e := newEnv(t, "PR1V")
	e.addUser(t, "alice", "Alice")
	e.addUser(t, "bob", "Bob")
	e.addUser(t, "carol", "Carol")
	created, _ := e.svc.CreateTeam(context.Background(), "alice", "Quiet", "private")
	_, _ = e.svc.JoinTeam(context.Background(), "bob", "PR1V")
	id := created.TeamID

	err := e.svc.AcceptJoinRequest(context.Background(), "bob", id, "bob")
	wantCode(t, err, apperr.PermissionDenied)

	if err := e.svc.AcceptJoinRequest(context.Background(), "alice", id, "bob"); err != nil {
		t.Fatalf("AcceptJoinRequest: %v", err)
	}
	tm := e.team(t, id)
	if !tm.Members.Has("bob") || tm.PendingMembers.Has("bob") {
		t.Errorf("after accept: members=%v pending=%v", tm.Members, tm.PendingMembers)
	}
	if !e.user(t, "bob").TeamIDs.Has(id) {
		t.Error("bob's team_ids missing team")
	}

	// Second accept of the same request.
	err = e.svc.AcceptJoinRequest(context.Background(), "alice", id, "bob")
	wantCode(t, err, apperr.FailedPrecondition)

	err = e.svc.AcceptJoinRequest(context.Background(), "alice", id, "carol")
	wantCode(t, err, apperr.FailedPrecondition)

	err = e.svc.AcceptJoinRequest(context.Background(), "alice", "nope", "bob")
	wantCode(t, err, apperr.NotFound)
}

func TestRejectJoinRequest(t *testing.T) {
	e := newEnv(t, "PR1V")
	e.addUser(t, "alice", "Alice")
	e.addUser(t, "bob", "Bob")
	created, _ := e.svc.CreateTeam(context.Background(), "alice", "Quiet", "private")
	_, _ = e.svc.JoinTeam(context.Background(), "bob", "PR1V")
	id := created.TeamID

	wantCode(t, e.svc.RejectJoinRequest(context.Background(), "bob", id, "bob"), apperr.PermissionDenied)
	wantCode(t, e.svc.RejectJoinRequest(context.Background(), "alice", "nope", "bob"), apperr.NotFound)

	if err := e.svc.RejectJoinRequest(context.Background(), "alice", id, "bob"); err != nil {
		t.Fatalf("RejectJoinRequest: %v", err)
	}
	tm := e.team(t, id)
	if tm.PendingMembers.Has("bob") || tm.Members.Has("bob") {
		t.Errorf("after reject: members=%v pending=%v", tm.Members, tm.PendingMembers)
	}
	wantCode(t, e.svc.RejectJoinRequest(context.Background(), "alice", id, "bob"), apperr.FailedPrecondition)

	// A rejected user may ask again.
	res, err := e.svc.JoinTeam(context.Background(), "bob", "PR1V")
	if err != nil || res.Status != "pending" {
		t.Errorf("rejoin: res=%+v err=%v", res, err)
	}
}

func TestKickMember(t *testing.T) {
	e := newEnv(t, "AB12")
	e.addUser(t, "alice", "Alice")
	e.addUser(t, "bob", "Bob")
	created, _ := e.svc.CreateTeam(context.Background(), "alice", "Runners", "public")
	_, _ = e.svc.JoinTeam(context.Background(), "bob", "AB12")
	id := created.TeamID

	wantCode(t, e.svc.KickMember(context.Background(), "bob", id, "alice"), apperr.PermissionDenied)
	wantCode(t, e.svc.KickMember(context.Background(), "alice", id, "alice"), apperr.FailedPrecondition)
	wantCode(t, e.svc.KickMember(context.Background(), "alice", id, "nobody"), apperr.NotFound)

	// Inconsistent state: bob also lists the team under leader_of.
	bob := e.user(t, "bob")
	bob.LeaderOf.Add(id)
	if err := e.b.Users.Replace(context.Background(), bob); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := e.svc.KickMember(context.Background(), "alice", id, "bob"); err != nil {
		t.Fatalf("KickMember: %v", err)
	}
	if e.team(t, id).Members.Has("bob") {
		t.Error("bob still on roster")
	}
	bob = e.user(t, "bob")
	if bob.TeamIDs.Has(id) || bob.LeaderOf.Has(id) {
		t.Errorf("bob sets not cleaned: team_ids=%v leader_of=%v", bob.TeamIDs, bob.LeaderOf)
	}
}

func TestDelegateLeader(t *testing.T) {
	e := newEnv(t, "AB12")
	e.addUser(t, "alice", "Alice")
	e.addUser(t, "bob", "Bob")
	created, _ := e.svc.CreateTeam(context.Background(), "alice", "Runners", "public")
	_, _ = e.svc.JoinTeam(context.Background(), "bob", "AB12")
	id := created.TeamID

	wantCode(t, e.svc.DelegateLeader(context.Background(), "bob", id, "bob"), apperr.PermissionDenied)
	wantCode(t, e.svc.DelegateLeader(context.Background(), "alice", id, "alice"), apperr.FailedPrecondition)
	wantCode(t, e.svc.DelegateLeader(context.Background(), "alice", id, "carol"), apperr.NotFound)
	wantCode(t, e.svc.DelegateLeader(context.Background(), "alice", id, ""), apperr.InvalidArgument)

	if err := e.svc.DelegateLeader(context.Background(), "alice", id, "bob"); err != nil {
		t.Fatalf("DelegateLeader: %v", err)
	}
	if got := e.team(t, id).LeaderID; got != "bob" {
		t.Errorf("leader: got %q, want bob", got)
	}
	if e.user(t, "alice").LeaderOf.Has(id) {
		t.Error("alice still in leader_of")
	}
	if !e.user(t, "alice").TeamIDs.Has(id) {
		t.Error("alice should remain a member")
	}
	if !e.user(t, "bob").LeaderOf.Has(id) {
		t.Error("bob missing leader_of")
	}
}

func TestLeaveTeam_SoleMemberDeletesTeam(t *testing.T) {
	e := newEnv(t, "AB12")
	e.addUser(t, "alice", "Alice")
	created, _ := e.svc.CreateTeam(context.Background(), "alice", "Runners", "public")

	res, err := e.svc.LeaveTeam(context.Background(), "alice", created.TeamID)
	if err != nil {
		t.Fatalf("LeaveTeam: %v", err)
	}
	if !res.TeamDeleted || res.NewLeaderID != "" {
		t.Errorf("result: %+v", res)
	}
	if _, err := e.b.Teams.Get(context.Background(), created.TeamID); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("team should be deleted, got err=%v", err)
	}
	u := e.user(t, "alice")
	if u.TeamIDs.Has(created.TeamID) || u.LeaderOf.Has(created.TeamID) {
		t.Errorf("alice sets: team_ids=%v leader_of=%v", u.TeamIDs, u.LeaderOf)
	}
}

func TestLeaveTeam_LeaderSuccessionIsLowestKey(t *testing.T) {
	e := newEnv(t, "AB12")
	e.addUser(t, "mia", "Mia")
	e.addUser(t, "zed", "Zed")
	e.addUser(t, "bob", "Bob")
	created, _ := e.svc.CreateTeam(context.Background(), "mia", "Runners", "public")
	_, _ = e.svc.JoinTeam(context.Background(), "zed", "AB12")
	_, _ = e.svc.JoinTeam(context.Background(), "bob", "AB12")

	res, err := e.svc.LeaveTeam(context.Background(), "mia", created.TeamID)
	if err != nil {
		t.Fatalf("LeaveTeam: %v", err)
	}
	if res.TeamDeleted || res.NewLeaderID != "bob" {
		t.Errorf("result: %+v, want successor bob", res)
	}
	tm := e.team(t, created.TeamID)
	if tm.LeaderID != "bob" || tm.Members.Has("mia") {
		t.Errorf("team: leader=%q members=%v", tm.LeaderID, tm.Members)
	}
	if !e.user(t, "bob").LeaderOf.Has(created.TeamID) {
		t.Error("bob missing leader_of")
	}
}

func TestLeaveTeam_MemberLeaves(t *testing.T) {
	e := newEnv(t, "AB12")
	e.addUser(t, "alice", "Alice")
	e.addUser(t, "bob", "Bob")
	created, _ := e.svc.CreateTeam(context.Background(), "alice", "Runners", "public")
	_, _ = e.svc.JoinTeam(context.Background(), "bob", "AB12")

	res, err := e.svc.LeaveTeam(context.Background(), "bob", created.TeamID)
	if err != nil {
		t.Fatalf("LeaveTeam: %v", err)
	}
	if res.TeamDeleted || res.NewLeaderID != "" {
		t.Errorf("result: %+v", res)
	}
	if got := e.team(t, created.TeamID).LeaderID; got != "alice" {
		t.Errorf("leader changed to %q", got)
	}
}

func TestLeaveTeam_HealsDanglingReference(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "alice", "Alice")
	u := e.user(t, "alice")
	u.TeamIDs.Add("gone")
	u.LeaderOf.Add("gone")
	_ = e.b.Users.Replace(context.Background(), u)

	if _, err := e.svc.LeaveTeam(context.Background(), "alice", "gone"); err != nil {
		t.Fatalf("LeaveTeam: %v", err)
	}
	u = e.user(t, "alice")
	if len(u.TeamIDs) != 0 || len(u.LeaderOf) != 0 {
		t.Errorf("sets not cleaned: team_ids=%v leader_of=%v", u.TeamIDs, u.LeaderOf)
	}

	_, err := e.svc.LeaveTeam(context.Background(), "alice", "gone")
	wantCode(t, err, apperr.NotFound)
}

func TestLeaveTeam_NonMember(t *testing.T) {
	e := newEnv(t, "AB12")
	e.addUser(t, "alice", "Alice")
	e.addUser(t, "bob", "Bob")
	created, _ := e.svc.CreateTeam(context.Background(), "alice", "Runners", "public")

	_, err := e.svc.LeaveTeam(context.Background(), "bob", created.TeamID)
	wantCode(t, err, apperr.FailedPrecondition)
}

func TestFailedWriteLeavesNoPartialState(t *testing.T) {
	e := newEnv(t, "AB12")
	e.addUser(t, "alice", "Alice")
	e.addUser(t, "bob", "Bob")
	created, _ := e.svc.CreateTeam(context.Background(), "alice", "Runners", "public")
	_, _ = e.svc.JoinTeam(context.Background(), "bob", "AB12")

	// The team write inside KickMember fails after the reads.
	e.store.FailNextWrite = errors.New("disk full")
	err := e.svc.KickMember(context.Background(), "alice", created.TeamID, "bob")
	wantCode(t, err, apperr.Internal)

	if !e.team(t, created.TeamID).Members.Has("bob") {
		t.Error("bob removed despite failed transaction")
	}
	if !e.user(t, "bob").TeamIDs.Has(created.TeamID) {
		t.Error("bob's team_ids changed despite failed transaction")
	}
}

// TestRandomOperations_KeepInvariants drives a seeded random mix of
// operations and checks the cross-document invariants after each step.
func TestRandomOperations_KeepInvariants(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	users := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	for _, id := range users {
		e.addUser(t, id, "User "+id)
	}
	pick := func(xs []string) string { return xs[rng.Intn(len(xs))] }
	teamIDs := func() []string {
		var ids []string
		for _, tm := range e.b.Teams.(memstore.Teams).All() {
			ids = append(ids, tm.ID)
		}
		return ids
	}

	for step := 0; step < 400; step++ {
		actor := pick(users)
		teams := teamIDs()
		var err error
		switch op := rng.Intn(7); {
		case op == 0 || len(teams) == 0:
			mode := models.AccessPublic
			if rng.Intn(2) == 0 {
				mode = models.AccessPrivate
			}
			_, err = e.svc.CreateTeam(ctx, actor, "Team", mode)
		case op == 1:
			tm := e.team(t, pick(teams))
			_, err = e.svc.JoinTeam(ctx, actor, tm.JoinCode)
		case op == 2:
			tm := e.team(t, pick(teams))
			err = e.svc.AcceptJoinRequest(ctx, tm.LeaderID, tm.ID, pick(users))
		case op == 3:
			tm := e.team(t, pick(teams))
			err = e.svc.RejectJoinRequest(ctx, tm.LeaderID, tm.ID, pick(users))
		case op == 4:
			tm := e.team(t, pick(teams))
			err = e.svc.KickMember(ctx, tm.LeaderID, tm.ID, pick(users))
		case op == 5:
			tm := e.team(t, pick(teams))
			err = e.svc.DelegateLeader(ctx, tm.LeaderID, tm.ID, pick(users))
		default:
			_, err = e.svc.LeaveTeam(ctx, actor, pick(teams))
		}
		if apperr.Is(err, apperr.Internal) {
			t.Fatalf("step %d: unexpected internal error: %v", step, err)
		}
		checkInvariants(t, e, users, step)
	}
}

func TestConcurrentOperations_KeepInvariants(t *testing.T) {
	e := newEnv(t, "PUB1", "PRV1")
	ctx := context.Background()

	users := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"}
	for _, id := range users {
		e.addUser(t, id, "User "+id)
	}
	pub, err := e.svc.CreateTeam(ctx, "u1", "Open", models.AccessPublic)
	if err != nil {
		t.Fatalf("CreateTeam public: %v", err)
	}
	prv, err := e.svc.CreateTeam(ctx, "u2", "Closed", models.AccessPrivate)
	if err != nil {
		t.Fatalf("CreateTeam private: %v", err)
	}
	codes := []string{pub.JoinCode, prv.JoinCode}
	teamIDs := []string{pub.TeamID, prv.TeamID}

	const workers, steps = 8, 150
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(w + 1)))
			pick := func(xs []string) string { return xs[rng.Intn(len(xs))] }
			actor := users[w%len(users)]
			for step := 0; step < steps; step++ {
				i := rng.Intn(len(teamIDs))
				var err error
				switch rng.Intn(5) {
				case 0:
					_, err = e.svc.JoinTeam(ctx, actor, codes[i])
				case 1:
					_, err = e.svc.LeaveTeam(ctx, actor, teamIDs[i])
				default:
					tm, gerr := e.b.Teams.Get(ctx, teamIDs[i])
					if errors.Is(gerr, docstore.ErrNotFound) {
						continue
					}
					if gerr != nil {
						t.Errorf("worker %d: get team: %v", w, gerr)
						return
					}
					switch rng.Intn(3) {
					case 0:
						err = e.svc.KickMember(ctx, tm.LeaderID, tm.ID, pick(users))
					case 1:
						err = e.svc.AcceptJoinRequest(ctx, tm.LeaderID, tm.ID, pick(users))
					default:
						err = e.svc.DelegateLeader(ctx, tm.LeaderID, tm.ID, pick(users))
					}
				}
				if apperr.Is(err, apperr.Internal) {
					t.Errorf("worker %d step %d: unexpected internal error: %v", w, step, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	if t.Failed() {
		return
	}
	checkInvariants(t, e, users, workers*steps)
}

func checkInvariants(t *testing.T, e *env, users []string, step int) {
	t.Helper()
	teams := e.b.Teams.(memstore.Teams).All()
	byID := map[string]models.Team{}
	for _, tm := range teams {
		byID[tm.ID] = tm
		if len(tm.Members) == 0 {
			t.Fatalf("step %d: team %s has no members", step, tm.ID)
		}
		if !tm.Members.Has(tm.LeaderID) {
			t.Fatalf("step %d: team %s leader %q not a member", step, tm.ID, tm.LeaderID)
		}
		for uid := range tm.PendingMembers {
			if tm.Members.Has(uid) {
				t.Fatalf("step %d: %s both pending and member of %s", step, uid, tm.ID)
			}
		}
		for uid := range tm.Members {
			if !e.user(t, uid).TeamIDs.Has(tm.ID) {
				t.Fatalf("step %d: %s on roster of %s but not in team_ids", step, uid, tm.ID)
			}
		}
	}
	for _, uid := range users {
		u := e.user(t, uid)
		for _, id := range u.TeamIDs {
			tm, ok := byID[id]
			if !ok || !tm.Members.Has(uid) {
				t.Fatalf("step %d: %s lists team %s it is not a member of", step, uid, id)
			}
		}
		for _, id := range u.LeaderOf {
			if !u.TeamIDs.Has(id) {
				t.Fatalf("step %d: %s leads %s outside team_ids", step, uid, id)
			}
			if byID[id].LeaderID != uid {
				t.Fatalf("step %d: %s lists leader_of %s but leader is %q", step, uid, id, byID[id].LeaderID)
			}
		}
	}
}
