// internal/app/store/missions/missionstore.go
package missionstore

import (
	"context"
	"errors"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store reads mission documents from the config collection. Missions are
// edited by operators directly in the database.
type Store struct {
	c *mongo.Collection
}

var _ docstore.Missions = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("config")}
}

func (s *Store) Today(ctx context.Context) (models.Mission, error) {
	var m models.Mission
	if err := s.c.FindOne(ctx, bson.M{"_id": models.TodayMissionKey}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Mission{}, docstore.ErrNotFound
		}
		return models.Mission{}, err
	}
	return m, nil
}
