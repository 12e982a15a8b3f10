// internal/app/features/users/handler.go
package users

import (
	apierrors "github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/features/errors"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/service/accountservice"
	"go.uber.org/zap"
)

// Handler owns the caller's own profile endpoints.
type Handler struct {
	Accounts *accountservice.Service
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs a Handler.
func NewHandler(accounts *accountservice.Service, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Accounts: accounts, ErrLog: errLog, Log: logger}
}
