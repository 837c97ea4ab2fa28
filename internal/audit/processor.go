// processor.go drains the audit_queue fallback store back into audit_logs.
package audit

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/pawtrails/backoffice/internal/db/models"
	"github.com/pawtrails/backoffice/internal/db/repositories"
	"github.com/pawtrails/backoffice/internal/telemetry"
)

// DefaultDrainBatchSize caps a drain pass when no batch size is configured
const DefaultDrainBatchSize = 500

// Processor migrates queued audit entries into the audit trail. Each entry is
// claimed with FOR UPDATE SKIP LOCKED in its own transaction, so overlapping
// drains (manual trigger racing the cron job, or two replicas) never
// double-process a row.
type Processor struct {
	db          *sql.DB
	logs        *repositories.AuditRepository
	queue       *repositories.AuditQueueRepository
	maxAttempts int
	backoff     time.Duration
	batchLimit  int
}

// NewProcessor creates a Processor. maxAttempts, backoff, and batchLimit come
// from config so tests and deployments can tune the retry budget and how much
// backlog one pass works through. batchLimit <= 0 falls back to
// DefaultDrainBatchSize.
func NewProcessor(db *sql.DB, logs *repositories.AuditRepository, queue *repositories.AuditQueueRepository, maxAttempts int, backoff time.Duration, batchLimit int) *Processor {
	if batchLimit <= 0 {
		batchLimit = DefaultDrainBatchSize
	}
	return &Processor{
		db:          db,
		logs:        logs,
		queue:       queue,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		batchLimit:  batchLimit,
	}
}

// ProcessQueue runs one drain pass and returns how many entries were migrated.
// Entries still inside their retry backoff are skipped; a failed migration
// bumps the entry's attempt count; entries that exhausted the budget are
// deleted after the pass. Per-entry failures never abort the pass.
func (p *Processor) ProcessQueue(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		telemetry.AuditQueueDrainDuration.Observe(time.Since(start).Seconds())
	}()

	ids, err := p.queue.ListCandidateIDs(ctx, p.maxAttempts, p.backoff, p.batchLimit)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		ok, err := p.processOne(ctx, id)
		if err != nil {
			slog.Warn("audit queue entry migration failed", "entry_id", id, "error", err)
			if markErr := p.queue.MarkFailure(ctx, id); markErr != nil {
				slog.Error("failed to record drain attempt", "entry_id", id, "error", markErr)
			}
			continue
		}
		if ok {
			processed++
			telemetry.AuditQueueProcessedTotal.Inc()
		}
	}

	dropped, err := p.queue.SweepExceeded(ctx, p.maxAttempts)
	if err != nil {
		slog.Error("audit queue sweep failed", "error", err)
	} else if dropped > 0 {
		telemetry.AuditQueueDroppedTotal.Add(float64(dropped))
		slog.Warn("dropped audit queue entries past retry budget", "count", dropped)
	}

	if processed > 0 {
		slog.Info("audit queue drained", "processed", processed)
	}
	return processed, nil
}

// processOne claims, migrates, and deletes a single entry in one transaction.
// Returns false with nil error when the entry was skipped (gone, or locked by
// a concurrent drain).
func (p *Processor) processOne(ctx context.Context, id string) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	entry, err := p.queue.ClaimTx(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if entry == nil {
		return false, nil
	}

	// The queue entry's identity and original event time carry over, so the
	// trail reads as if the direct write had succeeded.
	log := &models.AuditLog{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Reason:     entry.Reason,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
	if err := p.logs.CreateAuditLogTx(ctx, tx, log); err != nil {
		return false, err
	}
	if err := p.queue.DeleteTx(ctx, tx, entry.ID); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
