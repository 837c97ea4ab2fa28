// bulk.go implements the bulk moderation executor. A bulk call applies one
// operation to up to MaxBulkItems targets. Every item runs in its own
// transaction and reports its own outcome; there is no batch-wide rollback.
// Chunking by BatchSize bounds resource usage only.
package moderation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pawtrails/backoffice/internal/audit"
	"github.com/pawtrails/backoffice/internal/db/models"
	"github.com/pawtrails/backoffice/internal/db/repositories"
	"github.com/pawtrails/backoffice/internal/telemetry"
)

// Bulk operation tags
const (
	OpRevert     = "revert"
	OpRangeBlock = "range-block"
)

// BulkRequest is one bulk moderation call
type BulkRequest struct {
	Operation string
	TargetIDs []string
	Reason    string
	// Duration is the block length in days, range-block only. Nil means the
	// deletion is scheduled immediately.
	Duration *int
}

// BulkItemResult is the outcome for a single target
type BulkItemResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkResult summarizes a bulk call. SuccessCount+FailureCount always equals
// TotalItems.
type BulkResult struct {
	Operation    string           `json:"operation"`
	TotalItems   int              `json:"totalItems"`
	SuccessCount int              `json:"successCount"`
	FailureCount int              `json:"failureCount"`
	Results      []BulkItemResult `json:"results"`
	DurationMS   int64            `json:"duration"`
	AuditLogID   string           `json:"auditLogId,omitempty"`
	AuditQueued  bool             `json:"auditQueued,omitempty"`
}

// ValidationError rejects a malformed bulk request before any item runs
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "invalid bulk request: " + strings.Join(e.Details, "; ")
}

// BulkExecutor runs bulk moderation operations
type BulkExecutor struct {
	db      *sql.DB
	edits   *repositories.EditRequestRepository
	users   *repositories.UserRepository
	actions *repositories.ModerationActionRepository
	writer  *audit.Writer

	batchSize    int
	maxItems     int
	maxBlockDays int
}

// NewBulkExecutor creates a BulkExecutor. batchSize, maxItems, and
// maxBlockDays come from config so limits are tunable per deployment.
func NewBulkExecutor(db *sql.DB, edits *repositories.EditRequestRepository, users *repositories.UserRepository, actions *repositories.ModerationActionRepository, writer *audit.Writer, batchSize, maxItems, maxBlockDays int) *BulkExecutor {
	return &BulkExecutor{
		db:           db,
		edits:        edits,
		users:        users,
		actions:      actions,
		writer:       writer,
		batchSize:    batchSize,
		maxItems:     maxItems,
		maxBlockDays: maxBlockDays,
	}
}

// Execute validates the request, then processes every target. Item failures
// are captured in the result; a returned error means nothing was processed.
func (e *BulkExecutor) Execute(ctx context.Context, actorID string, req BulkRequest) (*BulkResult, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &BulkResult{
		Operation:  req.Operation,
		TotalItems: len(req.TargetIDs),
		Results:    make([]BulkItemResult, 0, len(req.TargetIDs)),
	}

	// One deletion deadline shared by every item in a range block
	var deletionScheduledAt time.Time
	if req.Operation == OpRangeBlock {
		deletionScheduledAt = start
		if req.Duration != nil {
			deletionScheduledAt = start.AddDate(0, 0, *req.Duration)
		}
	}

	for chunkStart := 0; chunkStart < len(req.TargetIDs); chunkStart += e.batchSize {
		chunkEnd := chunkStart + e.batchSize
		if chunkEnd > len(req.TargetIDs) {
			chunkEnd = len(req.TargetIDs)
		}
		for _, id := range req.TargetIDs[chunkStart:chunkEnd] {
			var itemErr error
			switch req.Operation {
			case OpRevert:
				itemErr = e.revertOne(ctx, actorID, id, req.Reason)
			case OpRangeBlock:
				itemErr = e.rangeBlockOne(ctx, actorID, id, req.Reason, req.Duration, deletionScheduledAt)
			}

			item := BulkItemResult{ID: id, Success: itemErr == nil}
			if itemErr != nil {
				item.Error = itemErr.Error()
				result.FailureCount++
				telemetry.BulkItemsTotal.WithLabelValues(req.Operation, "failure").Inc()
			} else {
				result.SuccessCount++
				telemetry.BulkItemsTotal.WithLabelValues(req.Operation, "success").Inc()
			}
			result.Results = append(result.Results, item)
		}
	}

	result.DurationMS = time.Since(start).Milliseconds()
	telemetry.BulkOperationDuration.WithLabelValues(req.Operation).Observe(time.Since(start).Seconds())

	summaryMeta := map[string]interface{}{
		"totalItems":   result.TotalItems,
		"successCount": result.SuccessCount,
		"failureCount": result.FailureCount,
		"durationMs":   result.DurationMS,
	}
	if req.Duration != nil {
		summaryMeta["duration"] = *req.Duration
	}
	summary := e.writer.Write(ctx, audit.Entry{
		ActorID:    &actorID,
		Action:     "bulk_" + operationTag(req.Operation),
		TargetType: "bulk",
		TargetID:   fmt.Sprintf("%d items", result.TotalItems),
		Reason:     &req.Reason,
		Metadata:   summaryMeta,
	})
	result.AuditLogID = summary.LogID
	result.AuditQueued = summary.Queued

	return result, nil
}

// operationTag maps the wire operation name to the audit action suffix
func operationTag(op string) string {
	if op == OpRangeBlock {
		return "range_block"
	}
	return op
}

func (e *BulkExecutor) validate(req BulkRequest) error {
	details := make([]string, 0)

	switch req.Operation {
	case OpRevert, OpRangeBlock:
	default:
		details = append(details, fmt.Sprintf("unknown operation %q", req.Operation))
	}
	if len(req.TargetIDs) == 0 {
		details = append(details, "at least one target is required")
	}
	if len(req.TargetIDs) > e.maxItems {
		details = append(details, fmt.Sprintf("at most %d targets per call (got %d)", e.maxItems, len(req.TargetIDs)))
	}
	if strings.TrimSpace(req.Reason) == "" {
		details = append(details, "reason is required")
	}
	if req.Duration != nil {
		if req.Operation != OpRangeBlock {
			details = append(details, "duration is only valid for range-block")
		} else if *req.Duration < 1 || *req.Duration > e.maxBlockDays {
			details = append(details, fmt.Sprintf("duration must be between 1 and %d days", e.maxBlockDays))
		}
	}

	if len(details) > 0 {
		return &ValidationError{Details: details}
	}
	return nil
}

// revertOne rejects a single pending edit request in its own transaction.
// The precondition check runs under the row lock, so two operators reverting
// overlapping sets race cleanly: the loser sees the changed status and
// reports an item failure.
func (e *BulkExecutor) revertOne(ctx context.Context, actorID, editRequestID, reason string) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %v", err)
	}
	defer tx.Rollback()

	req, err := e.edits.GetForUpdateTx(ctx, tx, editRequestID)
	if err != nil {
		return err
	}
	if req == nil {
		return fmt.Errorf("edit request not found")
	}
	if req.Status != models.EditRequestPending {
		return fmt.Errorf("edit request is %s, not pending", req.Status)
	}

	now := time.Now()
	if err := e.edits.RejectTx(ctx, tx, editRequestID, actorID, reason, now); err != nil {
		return err
	}

	action := &models.ModerationActionLog{
		Action:      "bulk_revert",
		ContentType: "edit_request",
		ContentID:   editRequestID,
		PerformedBy: actorID,
		Reason:      &reason,
		Metadata: map[string]interface{}{
			"contentType": req.ContentType,
			"contentId":   req.ContentID,
			"userId":      req.UserID,
		},
		CreatedAt: now,
	}
	if err := e.actions.CreateTx(ctx, tx, action); err != nil {
		return err
	}

	return tx.Commit()
}

// rangeBlockOne schedules one account for deletion in its own transaction.
// Session revocation happens in the same transaction, so there is no window
// where a blocked account still holds a valid session.
func (e *BulkExecutor) rangeBlockOne(ctx context.Context, actorID, userID, reason string, duration *int, deletionScheduledAt time.Time) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %v", err)
	}
	defer tx.Rollback()

	user, err := e.users.GetForUpdateTx(ctx, tx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	now := time.Now()
	if err := e.users.ApplyRangeBlockTx(ctx, tx, userID, reason, deletionScheduledAt, now); err != nil {
		return err
	}
	revoked, err := e.users.RevokeSessionsTx(ctx, tx, userID)
	if err != nil {
		return err
	}

	meta := map[string]interface{}{
		"deletionScheduledAt": deletionScheduledAt.Format(time.RFC3339),
		"sessionsRevoked":     revoked,
	}
	if duration != nil {
		meta["duration"] = *duration
	}
	action := &models.ModerationActionLog{
		Action:      "bulk_range_block",
		ContentType: "user",
		ContentID:   userID,
		PerformedBy: actorID,
		Reason:      &reason,
		Metadata:    meta,
		CreatedAt:   now,
	}
	if err := e.actions.CreateTx(ctx, tx, action); err != nil {
		return err
	}

	return tx.Commit()
}
