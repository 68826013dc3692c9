package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"
	"github.com/rs/zerolog"
)

// Runner is the work a tick triggers.
type Runner func(ctx context.Context) error

// Scheduler fires a runner on a cron schedule, optionally gated by a
// maintenance window. Ticks outside the window are skipped, not deferred.
type Scheduler struct {
	schedule cron.Schedule
	window   *Window
	runner   Runner

	// now is swappable for tests.
	now func() time.Time
}

func NewScheduler(expr string, window *Window, runner Runner) (*Scheduler, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", expr, err)
	}
	return &Scheduler{
		schedule: sched,
		window:   window,
		runner:   runner,
		now:      time.Now,
	}, nil
}

// Start blocks until ctx is cancelled, firing the runner at each tick.
func (s *Scheduler) Start(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	for {
		now := s.now()
		next := s.schedule.Next(now)
		if next.IsZero() {
			logger.Warn().Msg("schedule produces no further ticks, scheduler stopping")
			return
		}

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if s.window != nil && !s.window.Contains(s.now()) {
			logger.Info().Time("tick", next).Msg("tick outside maintenance window, skipping")
			continue
		}

		if err := s.runner(ctx); err != nil {
			logger.Error().Err(err).Msg("scheduled run failed")
		}
	}
}
