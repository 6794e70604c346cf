package azure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Refresher renews the cached token of an Issuer on a cron schedule so
// browser requests rarely wait on the STS endpoint.
type Refresher struct {
	issuer   *Issuer
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewRefresher creates a new token refresher.
func NewRefresher(issuer *Issuer, schedule string) *Refresher {
	return &Refresher{
		issuer:   issuer,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "azure.refresher"),
	}
}

// Start schedules token renewal.
//
// Common cron expressions:
//   - "*/8 * * * *"  - Every 8 minutes
//   - "@every 5m"    - Every 5 minutes
//
// If the schedule is empty, the refresher does nothing.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schedule == "" {
		r.logger.Info("token refresh schedule not configured, skipping refresher")
		return nil
	}

	if _, err := cron.ParseStandard(r.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", r.schedule, err)
	}

	if _, err := r.cron.AddFunc(r.schedule, func() {
		r.refresh(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule token refresh: %w", err)
	}

	r.cron.Start()
	r.running = true

	r.logger.Info("token refresher started", "schedule", r.schedule)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

func (r *Refresher) refresh(ctx context.Context) {
	if _, err := r.issuer.Refresh(ctx); err != nil {
		r.logger.Error("scheduled token refresh failed", "error", err)
		return
	}
	r.logger.Debug("scheduled token refresh completed")
}

// Stop stops the refresher and waits for a running renewal to complete.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		<-r.cron.Stop().Done()
		r.running = false
		r.logger.Info("token refresher stopped")
	}
}

// IsRunning returns true if the refresher is running.
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
