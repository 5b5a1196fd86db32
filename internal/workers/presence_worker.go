package workers

import (
	"context"
	"time"

	"barterly/internal/logger"
)

// PresenceSweeper expires members whose heartbeat lapsed.
type PresenceSweeper interface {
	SweepPresence() []string
}

type PresenceWorker struct {
	sweeper  PresenceSweeper
	interval time.Duration
}

func NewPresenceWorker(sweeper PresenceSweeper, interval time.Duration) *PresenceWorker {
	return &PresenceWorker{sweeper: sweeper, interval: interval}
}

// Start runs the sweep loop until ctx is done.
func (w *PresenceWorker) Start(ctx context.Context) {
	go w.sweep(ctx)
}

func (w *PresenceWorker) sweep(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Presence worker stopped")
			return
		case <-ticker.C:
			if expired := w.sweeper.SweepPresence(); len(expired) > 0 {
				logger.WorkerLog("presence", "sweep", nil, "expired", len(expired))
			}
		}
	}
}
