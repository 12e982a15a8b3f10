// internal/app/system/workers/wakeup.go
package workers

import (
	"context"
	"errors"
	"time"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/docstore"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/metrics"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/notify"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/timeouts"
	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/timezones"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultWakeUpSchedule fires at the top of every minute.
const DefaultWakeUpSchedule = "* * * * *"

// Wake-up message content.
const (
	WakeUpTitle = "일어날 시간이에요!"
	WakeUpBody  = "앱을 열어서 오늘의 기상 미션을 10분 내로 수행해주세요."
	WakeUpType  = "WAKE_UP_CHALLENGE"
)

// TokenClearer forgets a device token that push delivery rejected.
type TokenClearer interface {
	ClearDeviceToken(ctx context.Context, uid, token string) error
}

// WakeUp sends the wake-up notification to every user whose alarm matches the
// current app-local minute.
type WakeUp struct {
	users  docstore.Users
	sender notify.Sender
	tokens TokenClearer
	log    *zap.Logger
	now    func() time.Time

	cron *cron.Cron
}

// NewWakeUp creates the worker. schedule is a standard five-field cron spec
// evaluated in the app timezone; empty means DefaultWakeUpSchedule.
func NewWakeUp(users docstore.Users, sender notify.Sender, tokens TokenClearer, logger *zap.Logger, schedule string) (*WakeUp, error) {
	if schedule == "" {
		schedule = DefaultWakeUpSchedule
	}
	w := &WakeUp{
		users:  users,
		sender: sender,
		tokens: tokens,
		log:    logger,
		now:    time.Now,
		cron: cron.New(
			cron.WithLocation(timezones.App),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
	if _, err := w.cron.AddFunc(schedule, w.tick); err != nil {
		return nil, err
	}
	return w, nil
}

// Start begins scheduling.
func (w *WakeUp) Start() {
	w.cron.Start()
	w.log.Info("wake-up worker started")
}

// Stop stops scheduling and waits for a running scan to finish.
func (w *WakeUp) Stop() {
	<-w.cron.Stop().Done()
	w.log.Info("wake-up worker stopped")
}

func (w *WakeUp) tick() {
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Long(), w.log, "wake-up scan")
	defer cancel()
	w.RunOnce(ctx, w.now())
}

// RunOnce scans for alarms set to now's app-local HH:MM and sends one message
// per user. It returns how many messages were delivered. Failures are logged
// and never stop the scan.
func (w *WakeUp) RunOnce(ctx context.Context, now time.Time) int {
	start := time.Now()
	defer func() { metrics.ObserveWakeUpTick(time.Since(start)) }()

	clock := timezones.AppClock(now)
	users, err := w.users.ListByWakeUpTime(ctx, clock)
	if err != nil {
		w.log.Error("wake-up scan failed", zap.String("clock", clock), zap.Error(err))
		return 0
	}
	if len(users) == 0 {
		w.log.Debug("no wake-up alarms", zap.String("clock", clock))
		return 0
	}

	sent := 0
	for _, u := range users {
		if u.FCMToken == nil || *u.FCMToken == "" {
			continue
		}
		token := *u.FCMToken
		err := w.sender.Send(ctx, notify.Message{
			Token: token,
			Title: WakeUpTitle,
			Body:  WakeUpBody,
			Data:  map[string]string{"type": WakeUpType},
		})
		switch {
		case err == nil:
			sent++
			metrics.RecordWakeUp("sent")
		case errors.Is(err, notify.ErrInvalidToken):
			metrics.RecordWakeUp("invalid_token")
			w.log.Warn("dropping invalid device token", zap.String("user_id", u.ID))
			if cerr := w.tokens.ClearDeviceToken(ctx, u.ID, token); cerr != nil {
				w.log.Error("failed to clear device token", zap.String("user_id", u.ID), zap.Error(cerr))
			}
		default:
			metrics.RecordWakeUp("error")
			w.log.Error("wake-up send failed", zap.String("user_id", u.ID), zap.Error(err))
		}
	}
	w.log.Info("wake-up notifications sent",
		zap.String("clock", clock),
		zap.Int("candidates", len(users)),
		zap.Int("sent", sent))
	return sent
}
