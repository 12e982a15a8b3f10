// internal/app/bootstrap/services.go
package bootstrap

import (
	"time"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/service/accountservice"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/service/challengeservice"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/service/dashboardservice"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/service/teamservice"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/joincode"
	"go.uber.org/zap"
)

// services is the set of domain services built over one backend.
type services struct {
	Teams      *teamservice.Service
	Dashboard  *dashboardservice.Service
	Challenges *challengeservice.Service
	Accounts   *accountservice.Service
}

func newServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) services {
	teams := teamservice.New(deps.Backend, joincode.New(), logger.Named("teams"),
		teamservice.WithCodeAttempts(appCfg.JoinCodeAttempts))
	return services{
		Teams:      teams,
		Dashboard:  dashboardservice.New(deps.Backend, logger.Named("dashboard")),
		Challenges: challengeservice.New(deps.Backend, func() time.Time { return time.Now().UTC() }, logger.Named("challenges")),
		Accounts:   accountservice.New(deps.Backend, teams, logger.Named("accounts")),
	}
}
