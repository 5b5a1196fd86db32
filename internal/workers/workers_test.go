package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

type countingSweeper struct{ calls atomic.Int32 }

func (s *countingSweeper) SweepPresence() []string {
	s.calls.Add(1)
	return []string{"user-1"}
}

type countingCleaner struct{ calls atomic.Int32 }

func (c *countingCleaner) CleanupRead(_ *gorm.DB, olderThan time.Duration) (int64, error) {
	c.calls.Add(1)
	return 1, nil
}

type countingLimiter struct{ calls atomic.Int32 }

func (l *countingLimiter) Cleanup() { l.calls.Add(1) }

func TestPresenceWorkerSweepsUntilCancelled(t *testing.T) {
	sweeper := &countingSweeper{}
	ctx, cancel := context.WithCancel(context.Background())
	NewPresenceWorker(sweeper, 5*time.Millisecond).Start(ctx)

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	time.Sleep(20 * time.Millisecond)
	stopped := sweeper.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, sweeper.calls.Load())
}

func TestMaintenanceWorkerRunsBothJobs(t *testing.T) {
	cleaner := &countingCleaner{}
	limiter := &countingLimiter{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewMaintenanceWorker(openDB(t), cleaner, limiter, MaintenanceSchedule{
		NotificationInterval:  5 * time.Millisecond,
		NotificationRetention: time.Hour,
		LimiterInterval:       5 * time.Millisecond,
	}).Start(ctx)

	assert.Eventually(t, func() bool {
		return cleaner.calls.Load() > 0 && limiter.calls.Load() > 0
	}, time.Second, 5*time.Millisecond)
}

func TestMaintenanceWorkerWithoutLimiter(t *testing.T) {
	cleaner := &countingCleaner{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewMaintenanceWorker(openDB(t), cleaner, nil, MaintenanceSchedule{
		NotificationInterval: 5 * time.Millisecond,
	}).Start(ctx)

	assert.Eventually(t, func() bool { return cleaner.calls.Load() > 0 }, time.Second, 5*time.Millisecond)
}
