// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/yukikurage/taskquest-api/internal/metrics"
	"go.uber.org/zap"
)

// JobTimeout bounds a single job run.
const JobTimeout = 5 * time.Minute

// StreakResetter zeroes streaks that can no longer be extended.
type StreakResetter interface {
	ResetStale(ctx context.Context) (int64, error)
}

// Scheduler wraps a cron runner.
type Scheduler struct {
	cron    *cron.Cron
	metrics *metrics.Metrics
	log     *zap.Logger
}

// New creates a scheduler running in the server's local time zone.
func New(m *metrics.Metrics, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.Local), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		metrics: m,
		log:     log,
	}
}

// AddStreakReset registers the nightly stale streak reset. spec is a
// standard five-field cron expression.
func (s *Scheduler) AddStreakReset(spec string, resetter StreakResetter) error {
	return s.add("reset_streaks", spec, func(ctx context.Context) error {
		_, err := resetter.ResetStale(ctx)
		return err
	})
}

func (s *Scheduler) add(name, spec string, run func(ctx context.Context) error) error {
	if _, err := s.cron.AddFunc(spec, func() { s.runJob(name, run) }); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	return nil
}

func (s *Scheduler) runJob(name string, run func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), JobTimeout)
	defer cancel()

	start := time.Now()
	err := run(ctx)
	s.metrics.RecordJobRun(name, err == nil)
	if err != nil {
		s.log.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.log.Info("scheduled job finished", zap.String("job", name), zap.Duration("duration", time.Since(start)))
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
