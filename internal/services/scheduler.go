package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// RefreshScheduler re-runs the load cycle on a cron schedule so the dashboard
// picks up replaced source files without an explicit reload call. Disabled
// when the cron expression is empty.
type RefreshScheduler struct {
	scheduler *gocron.Scheduler
	service   *DashboardService
	cron      string
	logger    *slog.Logger
}

// NewRefreshScheduler creates the scheduler. An empty cron expression yields
// a scheduler whose Start is a no-op.
func NewRefreshScheduler(cron string, service *DashboardService, logger *slog.Logger) *RefreshScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshScheduler{
		scheduler: gocron.NewScheduler(time.Local),
		service:   service,
		cron:      cron,
		logger:    logger.With(slog.String("component", "refresh_scheduler")),
	}
}

// Start registers the refresh job and begins running it asynchronously.
func (r *RefreshScheduler) Start() error {
	if r.cron == "" {
		r.logger.Info("scheduled refresh disabled")
		return nil
	}

	_, err := r.scheduler.Cron(r.cron).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := r.service.Reload(ctx); err != nil {
			r.logger.ErrorContext(ctx, "scheduled refresh failed",
				slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}

	r.scheduler.StartAsync()
	r.logger.Info("scheduled refresh started", slog.String("cron", r.cron))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (r *RefreshScheduler) Stop() {
	r.scheduler.Stop()
}
