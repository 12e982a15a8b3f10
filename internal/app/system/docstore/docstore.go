// Package docstore defines the document store adapter the services depend on.
//
// Two implementations exist: the Mongo stores under internal/app/store (with
// txn.Runner as the Transactor) and memstore. Services only see these
// interfaces.
//
// Every store method takes the context passed to Transactor.Run's callback so
// that the call joins the surrounding transaction. Services read every document
// they will mutate before issuing the first write.
package docstore

import (
	"context"
	"errors"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/domain/models"
)

var (
	// ErrNotFound is returned when a keyed document does not exist.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrExists is returned when creating a document whose key is taken.
	ErrExists = errors.New("docstore: document already exists")
)

// Transactor runs fn as one all-or-nothing unit. Conflict retries, if any,
// happen below this interface; fn may therefore run more than once and must
// not have side effects outside the store.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Users is the users collection.
type Users interface {
	Get(ctx context.Context, uid string) (models.User, error)
	Create(ctx context.Context, u models.User) error
	Replace(ctx context.Context, u models.User) error
	Delete(ctx context.Context, uid string) error
	ListByWakeUpTime(ctx context.Context, hhmm string) ([]models.User, error)
}

// Teams is the teams collection.
type Teams interface {
	Get(ctx context.Context, id string) (models.Team, error)
	// FindByJoinCode returns the earliest-created team with the given
	// (already normalized) code.
	FindByJoinCode(ctx context.Context, code string) (models.Team, error)
	Create(ctx context.Context, t models.Team) error
	Replace(ctx context.Context, t models.Team) error
	Delete(ctx context.Context, id string) error
	ListByPendingMember(ctx context.Context, uid string) ([]models.Team, error)
}

// Challenges is the daily challenge record collection.
type Challenges interface {
	Put(ctx context.Context, rec models.ChallengeRecord) error
	Get(ctx context.Context, key string) (models.ChallengeRecord, error)
}

// Missions reads mission configuration.
type Missions interface {
	Today(ctx context.Context) (models.Mission, error)
}

// Backend bundles everything a running app needs from the store.
type Backend struct {
	Tx         Transactor
	Users      Users
	Teams      Teams
	Challenges Challenges
	Missions   Missions
}
