// Package audit records moderation actions into an append-only trail. Writes
// go straight to audit_logs; when that insert fails the entry is parked in
// audit_queue and migrated later by the queue processor, so a database hiccup
// on the audit side never blocks the moderation action itself. Loss is only
// possible after an entry exhausts its retry budget.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pawtrails/backoffice/internal/db/models"
	"github.com/pawtrails/backoffice/internal/telemetry"
)

// Entry is one auditable event
type Entry struct {
	ActorID    *string
	Action     string
	TargetType string
	TargetID   string
	Reason     *string
	Metadata   map[string]interface{}
}

// Result reports how an entry was persisted
type Result struct {
	// Success is false only when both the direct write and the fallback failed
	Success bool
	// LogID is the audit_logs row ID, or the audit_queue row ID when Queued
	LogID string
	// Queued is true when the entry landed in the fallback queue
	Queued bool
	// Err carries the combined failure when Success is false
	Err error
}

// LogStore is the slice of AuditRepository the writer needs
type LogStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// QueueStore is the slice of AuditQueueRepository the writer needs
type QueueStore interface {
	Enqueue(ctx context.Context, entry *models.AuditQueueEntry) error
}

// Writer persists audit entries with queue fallback
type Writer struct {
	logs    LogStore
	queue   QueueStore
	shipper Shipper
}

// NewWriter creates a Writer. shipper may be nil.
func NewWriter(logs LogStore, queue QueueStore, shipper Shipper) *Writer {
	return &Writer{logs: logs, queue: queue, shipper: shipper}
}

// Write persists the entry, falling back to the queue when the direct write
// fails. All outcomes are in the Result, so callers can fire and forget.
func (w *Writer) Write(ctx context.Context, e Entry) Result {
	log := &models.AuditLog{
		ActorID:    e.ActorID,
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Reason:     e.Reason,
		Metadata:   e.Metadata,
	}

	directErr := w.logs.CreateAuditLog(ctx, log)
	if directErr == nil {
		telemetry.AuditWritesTotal.WithLabelValues("direct").Inc()
		w.ship(ctx, log)
		return Result{Success: true, LogID: log.ID}
	}

	slog.Warn("audit direct write failed, falling back to queue",
		"action", e.Action, "error", directErr)

	queued := &models.AuditQueueEntry{
		ActorID:    e.ActorID,
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Reason:     e.Reason,
		Metadata:   e.Metadata,
	}
	queueErr := w.queue.Enqueue(ctx, queued)
	if queueErr == nil {
		telemetry.AuditWritesTotal.WithLabelValues("queued").Inc()
		return Result{Success: true, LogID: queued.ID, Queued: true}
	}

	telemetry.AuditWritesTotal.WithLabelValues("failed").Inc()
	err := fmt.Errorf("Both audit log and queue failed: %v; %v", directErr, queueErr)
	slog.Error("audit entry lost", "action", e.Action, "error", err)
	return Result{Success: false, Err: err}
}

// ship forwards a copy to external destinations. Shipping failures are logged
// and never affect the Result.
func (w *Writer) ship(ctx context.Context, log *models.AuditLog) {
	if w.shipper == nil {
		return
	}
	if err := w.shipper.Ship(ctx, recordFromLog(log)); err != nil {
		slog.Warn("audit shipper error", "action", log.Action, "error", err)
	}
}
