// internal/domain/models/mission.go
package models

// TodayMissionKey is the key of the mission document in the config collection.
const TodayMissionKey = "todayMission"

// Mission describes the wake-up task shown to users today.
type Mission struct {
	ID          string `bson:"_id" json:"-"`
	MissionID   string `bson:"mission_id" json:"mission_id"`
	Title       string `bson:"title,omitempty" json:"title,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}
