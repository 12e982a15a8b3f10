// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/health"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/store/memstore"
	challengestore "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/store/challenges"
	missionstore "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/store/missions"
	teamstore "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/store/teams"
	userstore "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/store/users"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/indexes"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/timeouts"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the selected document store and assembles the backend the
// services run on.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	if appCfg.StoreBackend == BackendMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return memoryDeps(memstore.New()), nil
	}

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", appCfg.MongoMaxPoolSize),
		zap.Bool("require_transactions", appCfg.RequireTransactions))

	db := client.Database(appCfg.MongoDatabase)
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Backend:       mongoBackend(client, db, appCfg.RequireTransactions, logger),
		BackendName:   BackendMongo,
		Pinger:        health.MongoPinger{Client: client},
	}, nil
}

func mongoBackend(client *mongo.Client, db *mongo.Database, requireTx bool, logger *zap.Logger) docstore.Backend {
	return docstore.Backend{
		Tx:         txn.NewRunner(client, logger, requireTx),
		Users:      userstore.New(db),
		Teams:      teamstore.New(db),
		Challenges: challengestore.New(db),
		Missions:   missionstore.New(db),
	}
}

func memoryDeps(s *memstore.Store) DBDeps {
	return DBDeps{
		Backend:     s.Backend(),
		BackendName: BackendMemory,
		Pinger:      health.MemoryPinger{},
	}
}

// EnsureSchema creates the indexes the queries rely on. The memory backend
// has nothing to set up.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	return nil
}
