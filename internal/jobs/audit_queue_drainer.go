// Package jobs contains background workers that run on a schedule.
// The audit queue drainer periodically migrates queued audit entries into the
// audit log after transient write failures. Jobs are idempotent: re-running
// after a crash produces the same result as a clean run.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pawtrails/backoffice/internal/audit"
)

// DefaultDrainSchedule is used when audit.drain_schedule is not configured
const DefaultDrainSchedule = "@every 1m"

// AuditQueueDrainer runs the audit queue processor on a cron schedule.
// Passes never overlap: if a drain is still running when the next tick
// fires, the tick is skipped.
type AuditQueueDrainer struct {
	processor *audit.Processor
	schedule  string
	cron      *cron.Cron

	mu      sync.Mutex
	running bool
}

// NewAuditQueueDrainer creates a drainer. An empty schedule falls back to
// DefaultDrainSchedule.
func NewAuditQueueDrainer(processor *audit.Processor, schedule string) *AuditQueueDrainer {
	if schedule == "" {
		schedule = DefaultDrainSchedule
	}
	return &AuditQueueDrainer{
		processor: processor,
		schedule:  schedule,
	}
}

// Start schedules the drain job. The ctx bounds each individual pass; Stop
// shuts the scheduler down.
func (d *AuditQueueDrainer) Start(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(d.schedule, func() {
		d.runOnce(ctx)
	})
	if err != nil {
		return err
	}

	d.cron = c
	c.Start()
	slog.Info("audit queue drainer started", "schedule", d.schedule)
	return nil
}

// Stop stops the scheduler and waits for an in-flight pass to finish
func (d *AuditQueueDrainer) Stop() {
	if d.cron == nil {
		return
	}
	stopCtx := d.cron.Stop()
	<-stopCtx.Done()
	slog.Info("audit queue drainer stopped")
}

// runOnce executes a single drain pass unless one is already in flight
func (d *AuditQueueDrainer) runOnce(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		slog.Debug("audit queue drain still in progress, skipping tick")
		return
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	start := time.Now()
	processed, err := d.processor.ProcessQueue(ctx)
	if err != nil {
		slog.Error("audit queue drain failed", "error", err)
		return
	}
	if processed > 0 {
		slog.Info("audit queue drained",
			"processed", processed,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// DrainNow runs a single pass immediately, outside the schedule. Used by the
// manual processing endpoint. Returns how many entries were migrated.
func (d *AuditQueueDrainer) DrainNow(ctx context.Context) (int, error) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return 0, ErrDrainInProgress
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	return d.processor.ProcessQueue(ctx)
}
