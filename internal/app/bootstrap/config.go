// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/service/teamservice"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Store backends accepted by store_backend.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// appConfigKeys defines the configuration keys for the app.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, auth_jwt_secret, etc.
//   - Environment variables: WAKEUP_MONGO_URI, WAKEUP_AUTH_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --auth_jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: BackendMongo, Desc: "Document store: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "wakeup", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "require_transactions", Default: true, Desc: "Fail writes when MongoDB cannot run transactions"},

	// Authentication
	{Name: "auth_jwt_secret", Default: "", Desc: "HS256 secret for caller ID tokens (required in prod)"},
	{Name: "auth_jwt_issuer", Default: "", Desc: "Expected token issuer (blank skips the check)"},
	{Name: "internal_api_key", Default: "", Desc: "Shared key for /internal identity events (required in prod)"},

	// Teams
	{Name: "join_code_attempts", Default: teamservice.DefaultCodeAttempts, Desc: "Join codes drawn before accepting a collision"},
	{Name: "join_rate_limit", Default: 10, Desc: "Join attempts allowed per caller per minute (0 disables)"},

	// Wake-up worker
	{Name: "wakeup_enabled", Default: true, Desc: "Run the wake-up notification worker"},
	{Name: "wakeup_schedule", Default: workers.DefaultWakeUpSchedule, Desc: "Cron spec for the wake-up worker (app timezone)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges flags > env > files > defaults,
// reading WAFFLE_* for core settings and WAKEUP_* for the keys above.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "WAKEUP", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:        appValues.String("store_backend"),
		MongoURI:            appValues.String("mongo_uri"),
		MongoDatabase:       appValues.String("mongo_database"),
		MongoMaxPoolSize:    uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize:    uint64(appValues.Int("mongo_min_pool_size")),
		RequireTransactions: appValues.Bool("require_transactions"),

		AuthJWTSecret:  appValues.String("auth_jwt_secret"),
		AuthJWTIssuer:  appValues.String("auth_jwt_issuer"),
		InternalAPIKey: appValues.String("internal_api_key"),

		JoinCodeAttempts: appValues.Int("join_code_attempts"),
		JoinRateLimit:    appValues.Int("join_rate_limit"),

		WakeUpEnabled:  appValues.Bool("wakeup_enabled"),
		WakeUpSchedule: appValues.String("wakeup_schedule"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The Mongo URI is checked before connecting so a typo fails fast. In prod
// the token secret and internal key must be set; elsewhere a missing secret
// only disables the routes that need it.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return errors.New("mongo_database must be set")
		}
	case BackendMemory:
		if coreCfg != nil && coreCfg.Env == "prod" {
			return errors.New("store_backend=memory is not allowed in prod")
		}
	default:
		return fmt.Errorf("store_backend must be %q or %q, got %q", BackendMongo, BackendMemory, appCfg.StoreBackend)
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.AuthJWTSecret == "" {
			return errors.New("auth_jwt_secret is required in prod")
		}
		if appCfg.InternalAPIKey == "" {
			return errors.New("internal_api_key is required in prod")
		}
	}

	if appCfg.JoinCodeAttempts < 1 {
		return fmt.Errorf("join_code_attempts must be at least 1, got %d", appCfg.JoinCodeAttempts)
	}

	if appCfg.JoinRateLimit < 0 {
		return fmt.Errorf("join_rate_limit must not be negative, got %d", appCfg.JoinRateLimit)
	}

	if appCfg.WakeUpEnabled {
		if _, err := cron.ParseStandard(appCfg.WakeUpSchedule); err != nil {
			return fmt.Errorf("invalid wakeup_schedule %q: %w", appCfg.WakeUpSchedule, err)
		}
	}
	return nil
}
