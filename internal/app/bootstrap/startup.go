// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"sync"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/notify"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/timeouts"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

var (
	workerMu     sync.Mutex
	wakeUpWorker *workers.WakeUp
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It applies
// timeout overrides and starts the wake-up worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("overrides", n))
	}

	if !appCfg.WakeUpEnabled {
		logger.Info("wake-up worker disabled")
		return nil
	}

	svc := newServices(appCfg, deps, logger)
	wlog := logger.Named("wakeup")
	w, err := workers.NewWakeUp(deps.Backend.Users, notify.LogSender{Log: wlog}, svc.Accounts, wlog, appCfg.WakeUpSchedule)
	if err != nil {
		logger.Error("wake-up worker init failed", zap.Error(err))
		return err
	}
	w.Start()

	workerMu.Lock()
	wakeUpWorker = w
	workerMu.Unlock()
	return nil
}
