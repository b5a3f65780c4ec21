// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	bookingstore "github.com/dalemusser/reelfolio/internal/app/store/bookings"
	"github.com/dalemusser/reelfolio/internal/app/store/audit"
	notificationstore "github.com/dalemusser/reelfolio/internal/app/store/notifications"
	sessionstore "github.com/dalemusser/reelfolio/internal/app/store/sessions"
	"github.com/dalemusser/reelfolio/internal/app/system/tasks"
	"github.com/dalemusser/reelfolio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// It applies operation timeouts, checks the SMTP relay, and starts the
// background task runner. An unreachable relay is logged and tolerated:
// bookings are still accepted and their emails wait in the outbox.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.StoreTimeout,
		Upload: appCfg.UploadTimeout,
		Mail:   appCfg.MailSendTimeout,
	})

	if err := deps.Mailer.Verify(); err != nil {
		logger.Warn("SMTP relay check failed; emails will be retried from the outbox",
			zap.String("host", appCfg.MailSMTPHost),
			zap.Int("port", appCfg.MailSMTPPort),
			zap.Error(err))
	} else {
		logger.Info("SMTP relay reachable", zap.String("host", appCfg.MailSMTPHost))
	}

	startTaskRunner(appCfg, deps, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner registers the maintenance jobs and starts them.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	db := deps.MongoDatabase
	taskRunner = tasks.New(logger, deps.Metrics)

	taskRunner.Register(tasks.SessionCleanupJob(sessionstore.New(db), logger))
	taskRunner.Register(tasks.NotificationRetryJob(deps.Notifier, appCfg.NotifyRetryInterval, logger))
	taskRunner.Register(tasks.NotificationPruneJob(notificationstore.New(db), appCfg.NotificationRetention, logger))
	taskRunner.Register(tasks.AuditRetentionJob(audit.New(db), appCfg.AuditRetention, logger))
	taskRunner.Register(tasks.BookingStatsJob(bookingstore.New(db), deps.Metrics))

	taskRunner.Start()
}
