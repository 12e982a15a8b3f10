// internal/domain/models/challenge.go
package models

import "time"

// ChallengeRecord is one user's outcome for one app-local calendar day.
// The key is deterministic, so a second submission on the same day overwrites
// the first.
type ChallengeRecord struct {
	ID         string    `bson:"_id" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	Date       string    `bson:"date" json:"date"` // YYYY-MM-DD in the app timezone
	Status     string    `bson:"status" json:"status"`
	RecordedAt time.Time `bson:"recorded_at" json:"recorded_at"`
}

// ChallengeKey builds the record key for (day, uid).
func ChallengeKey(day, uid string) string {
	return day + "_" + uid
}
