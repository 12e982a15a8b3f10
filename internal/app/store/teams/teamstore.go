// internal/app/store/teams/teamstore.go
package teamstore

import (
	"context"
	"errors"
	"time"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the Mongo implementation of docstore.Teams.
type Store struct {
	c *mongo.Collection
}

var _ docstore.Teams = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("teams")}
}

func (s *Store) Get(ctx context.Context, id string) (models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Team{}, docstore.ErrNotFound
		}
		return models.Team{}, err
	}
	return t, nil
}

// FindByJoinCode returns the earliest-created team with code. Codes are not
// unique, so the sort makes the winner stable.
func (s *Store) FindByJoinCode(ctx context.Context, code string) (models.Team, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"join_code": code}, opts).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Team{}, docstore.ErrNotFound
		}
		return models.Team{}, err
	}
	return t, nil
}

func (s *Store) Create(ctx context.Context, t models.Team) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return docstore.ErrExists
		}
		return err
	}
	return nil
}

// Replace writes the whole team document back; see userstore.Store.Replace.
func (s *Store) Replace(ctx context.Context, t models.Team) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// Delete removes a team by ID. Deleting a missing team is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ListByPendingMember returns every team holding a join request from uid.
func (s *Store) ListByPendingMember(ctx context.Context, uid string) ([]models.Team, error) {
	cur, err := s.c.Find(ctx, bson.M{"pending_members." + uid: bson.M{"$exists": true}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Team
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
