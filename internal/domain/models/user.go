// internal/domain/models/user.go
package models

import (
	"slices"
	"time"
)

// Challenge statuses stored on users and challenge records.
const (
	ChallengePending = "pending"
	ChallengeSuccess = "success"
	ChallengeFail    = "fail"
)

// User is the per-identity profile document. The _id is the uid issued by the
// external identity provider.
//
// NOTE:
//   - TeamIDs is the user's side of team membership; every id in it must be a
//     key in that team's Members map. Both sides are written in one transaction.
//   - LeaderOf must stay a subset of TeamIDs.
type User struct {
	ID          string  `bson:"_id" json:"id"`
	DisplayName string  `bson:"display_name" json:"display_name"`
	Email       *string `bson:"email,omitempty" json:"email,omitempty"`
	FCMToken    *string `bson:"fcm_token,omitempty" json:"-"`
	WakeUpTime  *string `bson:"wake_up_time,omitempty" json:"wake_up_time,omitempty"` // "HH:MM", app-local

	UserLP              int64  `bson:"user_lp" json:"user_lp"`
	WeeklySuccessCount  int    `bson:"weekly_success_count" json:"weekly_success_count"`
	LastChallengeStatus string `bson:"last_challenge_status" json:"last_challenge_status"`

	TeamIDs  IDSet `bson:"team_ids" json:"team_ids"`
	LeaderOf IDSet `bson:"leader_of" json:"leader_of"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate without aliasing the source.
func (u User) Clone() User {
	c := u
	c.Email = clonePtr(u.Email)
	c.FCMToken = clonePtr(u.FCMToken)
	c.WakeUpTime = clonePtr(u.WakeUpTime)
	c.TeamIDs = slices.Clone(u.TeamIDs)
	c.LeaderOf = slices.Clone(u.LeaderOf)
	return c
}

// DropTeam removes teamID from both membership sets. It reports whether
// anything changed.
func (u *User) DropTeam(teamID string) bool {
	a := u.TeamIDs.Remove(teamID)
	b := u.LeaderOf.Remove(teamID)
	return a || b
}

// IDSet is an ordered set of ids persisted as a BSON array.
type IDSet []string

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	return slices.Contains(s, id)
}

// Add appends id if absent and reports whether it was added.
func (s *IDSet) Add(id string) bool {
	if s.Has(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove drops every occurrence of id and reports whether one was present.
func (s *IDSet) Remove(id string) bool {
	n := len(*s)
	*s = slices.DeleteFunc(*s, func(v string) bool { return v == id })
	return len(*s) != n
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
