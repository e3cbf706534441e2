// Package scheduler runs background jobs on cron specs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m3rciful/iteachbot/core/logger"
)

// Scheduler wraps a cron runner whose jobs log their outcome.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler evaluating specs in loc (time.Local when nil).
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
}

// Schedule registers job under name. spec accepts the standard five fields and
// descriptors such as "@every 10m".
func (s *Scheduler) Schedule(name, spec string, job func(ctx context.Context) error) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		ctx := logger.WithRID(context.Background(), "job:"+name)
		start := time.Now()
		err := job(ctx)
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelError
		}
		logger.Event(ctx, "scheduler", level, "job.run",
			slog.String("status", logger.Status(err)),
			slog.String("handler", name),
			slog.Duration("duration", time.Since(start)),
			slog.String("err", errString(err)),
		)
	})
	if err != nil {
		return 0, fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	return id, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
