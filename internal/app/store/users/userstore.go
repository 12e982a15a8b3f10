// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is the Mongo implementation of docstore.Users.
type Store struct {
	c *mongo.Collection
}

var _ docstore.Users = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Get loads a user by uid.
func (s *Store) Get(ctx context.Context, uid string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": uid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, docstore.ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// Create inserts a new user document. The uid must be set by the caller.
func (s *Store) Create(ctx context.Context, u models.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.TeamIDs == nil {
		u.TeamIDs = models.IDSet{}
	}
	if u.LeaderOf == nil {
		u.LeaderOf = models.IDSet{}
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return docstore.ErrExists
		}
		return err
	}
	return nil
}

// Replace writes the whole document back. It must be preceded by a Get in the
// same transaction; a whole-document write outside one could discard a
// concurrent score update.
func (s *Store) Replace(ctx context.Context, u models.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// Delete removes the user document. Deleting a missing user is not an error.
func (s *Store) Delete(ctx context.Context, uid string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": uid})
	return err
}

// ListByWakeUpTime returns users whose alarm is hhmm and who registered a
// device token.
func (s *Store) ListByWakeUpTime(ctx context.Context, hhmm string) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"wake_up_time": hhmm,
		"fcm_token":    bson.M{"$exists": true, "$nin": bson.A{nil, ""}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
