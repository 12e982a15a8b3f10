// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (WAKEUP_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, log level and the like; everything specific to the
// wake-up challenge backend lives here.
type AppConfig struct {
	// Store selection. "mongo" is the production backend; "memory" runs the
	// whole app in process for local development and demos.
	StoreBackend string

	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// RequireTransactions fails writes when the deployment cannot run
	// multi-document transactions. Turn off only against a standalone dev
	// server.
	RequireTransactions bool

	// Caller authentication
	AuthJWTSecret  string // HS256 secret shared with the identity provider
	AuthJWTIssuer  string // expected "iss" claim; blank skips the check
	InternalAPIKey string // X-Internal-Key for /internal/* event hooks

	// Team creation
	JoinCodeAttempts int // join codes drawn before accepting a collision
	JoinRateLimit    int // join attempts per caller per minute; 0 disables

	// Wake-up notification worker
	WakeUpEnabled  bool
	WakeUpSchedule string // cron spec, evaluated in the app timezone
}
