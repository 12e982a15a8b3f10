// Package membershippolicy decides which (user, team) transitions are legal.
//
// It is pure: callers load the documents, ask for a decision, and then apply
// it inside their transaction. Every rejection is an *apperr.Error with the
// code the API surfaces.
//
//	None ──join(public)──▶ Member
//	None ──join(private)─▶ Pending ──accept──▶ Member
//	Pending ──reject──▶ None
//	Member ──leave/kick──▶ None
//	Member ◀──delegate──▶ Leader
package membershippolicy

import (
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/domain/models"
)

// State is a user's relationship to one team.
type State int

const (
	None State = iota
	Pending
	Member
	Leader
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Member:
		return "member"
	case Leader:
		return "leader"
	default:
		return "none"
	}
}

// StateOf reads uid's state from the team document.
func StateOf(t models.Team, uid string) State {
	switch {
	case t.Members.Has(uid) && t.LeaderID == uid:
		return Leader
	case t.Members.Has(uid):
		return Member
	case t.PendingMembers.Has(uid):
		return Pending
	default:
		return None
	}
}

// DecideJoin returns the state a join attempt moves u into: Member for public
// teams, Pending for private ones. Membership is judged from the user's own
// team list first; the roster is consulted too so a half-written legacy
// document cannot reset an existing member's counters.
func DecideJoin(t models.Team, u models.User) (State, error) {
	if u.TeamIDs.Has(t.ID) || t.Members.Has(u.ID) {
		return None, apperr.New(apperr.FailedPrecondition, "You are already a member of this team.")
	}
	if !t.IsPrivate() {
		return Member, nil
	}
	if t.PendingMembers.Has(u.ID) {
		return None, apperr.New(apperr.AlreadyExists, "A join request is already pending for this team.")
	}
	return Pending, nil
}

func requireLeader(t models.Team, actorID string) error {
	if t.LeaderID != actorID || !t.Members.Has(actorID) {
		return apperr.New(apperr.PermissionDenied, "Only the team leader can do this.")
	}
	return nil
}

// CheckAccept validates moving targetID from Pending to Member.
func CheckAccept(t models.Team, actorID, targetID string) error {
	if err := requireLeader(t, actorID); err != nil {
		return err
	}
	if !t.PendingMembers.Has(targetID) {
		return apperr.New(apperr.FailedPrecondition, "There is no pending request from this user.")
	}
	if t.Members.Has(targetID) {
		return apperr.New(apperr.AlreadyExists, "This user is already a member.")
	}
	return nil
}

// CheckReject validates dropping targetID's pending request.
func CheckReject(t models.Team, actorID, targetID string) error {
	if err := requireLeader(t, actorID); err != nil {
		return err
	}
	if !t.PendingMembers.Has(targetID) {
		return apperr.New(apperr.FailedPrecondition, "There is no pending request from this user.")
	}
	return nil
}

// CheckKick validates the leader removing targetID from the roster.
func CheckKick(t models.Team, actorID, targetID string) error {
	if err := requireLeader(t, actorID); err != nil {
		return err
	}
	if actorID == targetID {
		return apperr.New(apperr.FailedPrecondition, "You cannot remove yourself; leave the team instead.")
	}
	if !t.Members.Has(targetID) {
		return apperr.New(apperr.NotFound, "This user is not a member of the team.")
	}
	return nil
}

// CheckDelegate validates handing leadership from actorID to targetID.
func CheckDelegate(t models.Team, actorID, targetID string) error {
	if err := requireLeader(t, actorID); err != nil {
		return err
	}
	if actorID == targetID {
		return apperr.New(apperr.FailedPrecondition, "You are already the leader.")
	}
	if !t.Members.Has(targetID) {
		return apperr.New(apperr.NotFound, "The new leader must be a current member.")
	}
	return nil
}

// LeavePlan is the outcome of uid leaving a team.
type LeavePlan struct {
	// DeleteTeam is set when uid was the last member.
	DeleteTeam bool
	// Successor is the new leader when the leaving user led the team and
	// others remain; empty otherwise.
	Successor string
}

// PlanLeave computes what happens when uid leaves t. The caller has already
// confirmed uid is a member.
func PlanLeave(t models.Team, uid string) LeavePlan {
	var rest []string
	for _, k := range t.Members.Keys() {
		if k != uid {
			rest = append(rest, k)
		}
	}
	if len(rest) == 0 {
		return LeavePlan{DeleteTeam: true}
	}
	if t.LeaderID == uid {
		return LeavePlan{Successor: rest[0]}
	}
	return LeavePlan{}
}
