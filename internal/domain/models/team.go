// internal/domain/models/team.go
package models

import (
	"maps"
	"sort"
	"time"
)

// Team access modes.
const (
	AccessPublic  = "public"
	AccessPrivate = "private"
)

// Team is a roster of users doing the morning challenge together.
//
// NOTE:
//   - Members is never empty while the document exists; removing the last
//     member deletes the team.
//   - LeaderID is always a key of Members.
//   - PendingMembers is only populated for private teams.
type Team struct {
	ID         string `bson:"_id" json:"id"`
	Name       string `bson:"team_name" json:"team_name"`
	NameCI     string `bson:"team_name_ci" json:"-"`
	TeamLP     int64  `bson:"team_lp" json:"team_lp"`
	JoinCode   string `bson:"join_code" json:"join_code"`
	AccessMode string `bson:"access_mode" json:"access_mode"`
	LeaderID   string `bson:"leader_id" json:"leader_id"`

	Members        MemberMap  `bson:"members" json:"members"`
	PendingMembers PendingMap `bson:"pending_members,omitempty" json:"pending_members,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Member is a roster entry.
type Member struct {
	DisplayName        string `bson:"display_name" json:"display_name"`
	WeeklySuccessCount int    `bson:"weekly_success_count" json:"weekly_success_count"`
}

// PendingMember is a join request awaiting the leader's decision.
type PendingMember struct {
	DisplayName string    `bson:"display_name" json:"display_name"`
	RequestedAt time.Time `bson:"requested_at" json:"requested_at"`
}

// Clone returns a deep copy of the team.
func (t Team) Clone() Team {
	c := t
	c.Members = maps.Clone(t.Members)
	c.PendingMembers = maps.Clone(t.PendingMembers)
	return c
}

// IsPrivate reports whether joins need leader approval.
func (t Team) IsPrivate() bool {
	return t.AccessMode == AccessPrivate
}

// MemberMap maps user id to roster entry.
type MemberMap map[string]Member

// Has reports whether uid is on the roster.
func (m MemberMap) Has(uid string) bool {
	_, ok := m[uid]
	return ok
}

// Get returns the entry for uid.
func (m MemberMap) Get(uid string) (Member, bool) {
	v, ok := m[uid]
	return v, ok
}

// Upsert inserts or replaces the entry for uid.
func (m *MemberMap) Upsert(uid string, v Member) {
	if *m == nil {
		*m = MemberMap{}
	}
	(*m)[uid] = v
}

// Remove deletes uid and reports whether it was present.
func (m MemberMap) Remove(uid string) bool {
	if !m.Has(uid) {
		return false
	}
	delete(m, uid)
	return true
}

// Keys returns member ids in ascending byte order.
func (m MemberMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PendingMap maps user id to a pending join request.
type PendingMap map[string]PendingMember

// Has reports whether uid has a pending request.
func (p PendingMap) Has(uid string) bool {
	_, ok := p[uid]
	return ok
}

// Get returns the pending request for uid.
func (p PendingMap) Get(uid string) (PendingMember, bool) {
	v, ok := p[uid]
	return v, ok
}

// Upsert inserts or replaces the request for uid.
func (p *PendingMap) Upsert(uid string, v PendingMember) {
	if *p == nil {
		*p = PendingMap{}
	}
	(*p)[uid] = v
}

// Remove deletes the request for uid and reports whether it was present.
func (p PendingMap) Remove(uid string) bool {
	if !p.Has(uid) {
		return false
	}
	delete(p, uid)
	return true
}
