package workers

import (
	"context"
	"time"

	"barterly/internal/logger"

	"gorm.io/gorm"
)

// NotificationCleaner removes read feed rows older than a cutoff.
type NotificationCleaner interface {
	CleanupRead(db *gorm.DB, olderThan time.Duration) (int64, error)
}

// LimiterCleaner forgets idle rate limiter clients.
type LimiterCleaner interface {
	Cleanup()
}

// MaintenanceSchedule holds the periods of the housekeeping jobs.
type MaintenanceSchedule struct {
	NotificationInterval  time.Duration
	NotificationRetention time.Duration
	LimiterInterval       time.Duration
}

func DefaultMaintenanceSchedule() MaintenanceSchedule {
	return MaintenanceSchedule{
		NotificationInterval:  6 * time.Hour,
		NotificationRetention: 30 * 24 * time.Hour,
		LimiterInterval:       time.Minute,
	}
}

type MaintenanceWorker struct {
	db            *gorm.DB
	notifications NotificationCleaner
	limiter       LimiterCleaner
	schedule      MaintenanceSchedule
}

// NewMaintenanceWorker wires the housekeeping jobs. A nil limiter skips
// the limiter job.
func NewMaintenanceWorker(db *gorm.DB, notifications NotificationCleaner, limiter LimiterCleaner, schedule MaintenanceSchedule) *MaintenanceWorker {
	return &MaintenanceWorker{
		db:            db,
		notifications: notifications,
		limiter:       limiter,
		schedule:      schedule,
	}
}

func (w *MaintenanceWorker) Start(ctx context.Context) {
	go w.cleanupNotifications(ctx)

	if w.limiter != nil {
		go w.cleanupLimiter(ctx)
	}
}

func (w *MaintenanceWorker) cleanupNotifications(ctx context.Context) {
	ticker := time.NewTicker(w.schedule.NotificationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification cleanup worker stopped")
			return
		case <-ticker.C:
			removed, err := w.notifications.CleanupRead(w.db.WithContext(ctx), w.schedule.NotificationRetention)
			if err != nil || removed > 0 {
				logger.WorkerLog("notifications", "cleanup_read", err, "removed", removed)
			}
		}
	}
}

func (w *MaintenanceWorker) cleanupLimiter(ctx context.Context) {
	ticker := time.NewTicker(w.schedule.LimiterInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.limiter.Cleanup()
		}
	}
}
