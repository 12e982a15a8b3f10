// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	challengesfeature "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/challenges"
	errorsfeature "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/errors"
	healthfeature "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/health"
	identityfeature "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/identity"
	missionsfeature "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/missions"
	teamsfeature "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/teams"
	usersfeature "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/users"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/auth"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/metrics"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Everything under /api needs a caller token;
// /internal is for the identity provider and needs the shared key.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	errLog := errorsfeature.NewErrorLogger(logger)
	svc := newServices(appCfg, deps, logger)

	if appCfg.AuthJWTSecret == "" {
		logger.Warn("auth_jwt_secret is empty; every /api request will be rejected")
	}
	verifier := auth.NewVerifier(appCfg.AuthJWTSecret, appCfg.AuthJWTIssuer, logger, errLog.Write)
	requireKey := auth.RequireInternalKey(appCfg.InternalAPIKey, errLog.Write)
	joinLimit := ratelimit.Middleware(ratelimit.New(appCfg.JoinRateLimit, time.Minute), ratelimit.CallerKey, errLog.Write)

	r := chi.NewRouter()
	r.Use(metrics.Instrument)
	r.NotFound(errLog.NotFound)
	r.MethodNotAllowed(errLog.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.Pinger, deps.BackendName, logger)
	r.Get("/health", healthHandler.Serve)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		teamsHandler := teamsfeature.NewHandler(svc.Teams, svc.Dashboard, errLog, logger)
		api.Mount("/teams", teamsfeature.Routes(teamsHandler, verifier.Require, joinLimit))

		challengesHandler := challengesfeature.NewHandler(svc.Challenges, errLog, logger)
		api.Mount("/challenges", challengesfeature.Routes(challengesHandler, verifier.Require))

		missionsHandler := missionsfeature.NewHandler(deps.Backend.Missions, errLog, logger)
		api.Mount("/missions", missionsfeature.Routes(missionsHandler, verifier.Require))

		usersHandler := usersfeature.NewHandler(svc.Accounts, errLog, logger)
		api.Mount("/users", usersfeature.Routes(usersHandler, verifier.Require))
	})

	identityHandler := identityfeature.NewHandler(svc.Accounts, errLog, logger)
	r.Mount("/internal/identity", identityfeature.Routes(identityHandler, requireKey))

	return r, nil
}
