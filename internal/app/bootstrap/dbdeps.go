// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/health"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Backend is what services use; MongoClient and MongoDatabase are nil when
// the memory backend is selected.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Backend     docstore.Backend
	BackendName string
	Pinger      health.Pinger
}
