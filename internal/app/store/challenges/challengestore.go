// internal/app/store/challenges/challengestore.go
package challengestore

import (
	"context"
	"errors"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var _ docstore.Challenges = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("challenges")}
}

// Put upserts the record under its deterministic key (last write wins).
func (s *Store) Put(ctx context.Context, rec models.ChallengeRecord) error {
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) Get(ctx context.Context, key string) (models.ChallengeRecord, error) {
	var rec models.ChallengeRecord
	if err := s.c.FindOne(ctx, bson.M{"_id": key}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ChallengeRecord{}, docstore.ErrNotFound
		}
		return models.ChallengeRecord{}, err
	}
	return rec, nil
}
