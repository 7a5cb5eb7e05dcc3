// file: internal/service/scheduler.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Default schedules, with a seconds field.
const (
	DefaultDelayCheckSpec = "0 0 */6 * * *"
	DefaultMetricsSpec    = "0 0 1 * * *"
)

// cronLogger routes cron's own logging to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// Scheduler runs the delay notifications and the daily dashboard calculation.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers both jobs. Empty specs fall back to the defaults.
func NewScheduler(notifications *NotificationService, dashboard *DashboardService, delaySpec, metricsSpec string) (*Scheduler, error) {
	if delaySpec == "" {
		delaySpec = DefaultDelayCheckSpec
	}
	if metricsSpec == "" {
		metricsSpec = DefaultMetricsSpec
	}
	logger := cronLogger{}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if notifications != nil {
		if _, err := c.AddFunc(delaySpec, func() {
			n, err := notifications.CheckDelays(context.Background())
			if err != nil {
				slog.Error("delay notification job", "error", err)
				return
			}
			slog.Info("delay notification job done", "notified", n)
		}); err != nil {
			return nil, fmt.Errorf("schedule delay check %q: %w", delaySpec, err)
		}
	}
	if dashboard != nil {
		if _, err := c.AddFunc(metricsSpec, func() {
			n, err := dashboard.ComputeDaily(context.Background())
			if err != nil {
				slog.Error("dashboard metrics job", "error", err)
				return
			}
			slog.Info("dashboard metrics job done", "back_offices", n)
		}); err != nil {
			return nil, fmt.Errorf("schedule dashboard metrics %q: %w", metricsSpec, err)
		}
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Entries reports how many jobs are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
