// internal/app/features/teams/handler.go
package teams

import (
	apierrors "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/errors"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/service/dashboardservice"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/service/teamservice"
	"go.uber.org/zap"
)

// Handler is the dependency container for the team endpoints.
type Handler struct {
	Teams     *teamservice.Service
	Dashboard *dashboardservice.Service
	ErrLog    *apierrors.ErrorLogger
	Log       *zap.Logger
}

// NewHandler constructs a teams Handler. It is called from the bootstrap
// BuildHandler function once the services exist.
func NewHandler(teams *teamservice.Service, dash *dashboardservice.Service, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Teams:     teams,
		Dashboard: dash,
		ErrLog:    errLog,
		Log:       logger,
	}
}
