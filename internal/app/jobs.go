package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gocart-dev/gocart/internal/domain"
)

// initJobs starts the background scheduler.
func (a *Application) initJobs() {
	a.sched = cron.New()

	// Expired password-reset tokens are only consulted at reset time, but
	// sweeping them keeps the index small and bounds token exposure.
	_, err := a.sched.AddFunc("@hourly", a.purgeExpiredResetTokens)
	if err != nil {
		zap.S().Errorf("failed to register reset token sweep: %v", err)
	}

	a.sched.Start()
}

func (a *Application) purgeExpiredResetTokens() {
	res := a.gormDB.Model(&domain.User{}).
		Where("password_reset_token <> '' AND password_reset_expires < ?", time.Now()).
		Updates(map[string]interface{}{
			"password_reset_token":   "",
			"password_reset_expires": nil,
		})
	if res.Error != nil {
		zap.L().Error("reset token sweep failed", zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		zap.L().Info("cleared expired password reset tokens", zap.Int64("count", res.RowsAffected))
	}
}
