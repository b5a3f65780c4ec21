// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/reelfolio/internal/app/system/metrics"
	"go.uber.org/zap"
)

// ExpiredSessionDeleter removes sessions past their expiry.
type ExpiredSessionDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// SessionCleanupJob creates a job that removes expired sessions from the database.
// The TTL index does the same eventually; this keeps the collection tidy
// between TTL monitor passes.
func SessionCleanupJob(store ExpiredSessionDeleter, logger *zap.Logger) Job {
	return Job{
		Name:     "session-cleanup",
		Interval: 1 * time.Hour,
		Delay:    5 * time.Minute,
		Timeout:  time.Minute,
		Run: func(ctx context.Context) error {
			deleted, err := store.DeleteExpired(ctx)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("cleaned up expired sessions",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}

// NotificationRetrier resends due notifications.
type NotificationRetrier interface {
	RetryDue(ctx context.Context) (int, error)
}

// NotificationRetryJob creates a job that resends failed and stale notifications.
func NotificationRetryJob(n NotificationRetrier, interval time.Duration, logger *zap.Logger) Job {
	if interval <= 0 {
		interval = time.Minute
	}
	return Job{
		Name:     "notification-retry",
		Interval: interval,
		Delay:    interval,
		Run: func(ctx context.Context) error {
			handled, err := n.RetryDue(ctx)
			if handled > 0 {
				logger.Info("retried notifications", zap.Int("count", handled))
			}
			return err
		},
	}
}

// FinishedNotificationPruner removes delivered and abandoned outbox records.
type FinishedNotificationPruner interface {
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationPruneJob creates a job that deletes finished notifications
// older than retention. A retention of zero or less keeps them forever.
func NotificationPruneJob(store FinishedNotificationPruner, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "notification-prune",
		Interval: 24 * time.Hour,
		Delay:    15 * time.Minute,
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) error {
			if retention <= 0 {
				return nil
			}
			deleted, err := store.DeleteFinishedBefore(ctx, time.Now().Add(-retention))
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned finished notifications",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}

// AuditPruner removes old audit events.
type AuditPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditRetentionJob creates a job that deletes audit events older than
// retention. A retention of zero or less keeps them forever.
func AuditRetentionJob(store AuditPruner, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "audit-retention",
		Interval: 24 * time.Hour,
		Delay:    15 * time.Minute,
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) error {
			if retention <= 0 {
				return nil
			}
			deleted, err := store.DeleteBefore(ctx, time.Now().Add(-retention))
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned audit events",
					zap.Int64("deleted", deleted),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}

// BookingCounter reports bookings per status.
type BookingCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// BookingStatsJob creates a job that refreshes the per-status bookings gauge.
func BookingStatsJob(store BookingCounter, m *metrics.Metrics) Job {
	return Job{
		Name:     "booking-stats",
		Interval: 5 * time.Minute,
		Timeout:  30 * time.Second,
		Run: func(ctx context.Context) error {
			counts, err := store.CountByStatus(ctx)
			if err != nil {
				return err
			}
			m.SetBookingCounts(counts)
			return nil
		},
	}
}
