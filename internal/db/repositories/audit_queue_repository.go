// audit_queue_repository.go implements AuditQueueRepository, the fallback store
// for audit entries whose direct write failed. The drain path claims rows with
// FOR UPDATE SKIP LOCKED so concurrent drains never double-process an entry.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrails/backoffice/internal/db/models"
)

// AuditQueueRepository handles audit queue database operations
type AuditQueueRepository struct {
	db *sql.DB
}

// NewAuditQueueRepository creates a new AuditQueueRepository
func NewAuditQueueRepository(db *sql.DB) *AuditQueueRepository {
	return &AuditQueueRepository{db: db}
}

const auditQueueColumns = `id, actor_id, action, target_type, target_id, reason, metadata, attempts, last_attempt, created_at`

// Enqueue inserts a new queue entry. CreatedAt records the original event
// time and is kept when the entry is later drained into audit_logs.
func (r *AuditQueueRepository) Enqueue(ctx context.Context, entry *models.AuditQueueEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	metadataJSON, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_queue (id, actor_id, action, target_type, target_id, reason, metadata, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		entry.Reason,
		metadataJSON,
		entry.CreatedAt,
	)

	return err
}

// ListCandidateIDs returns, oldest first, the IDs of entries eligible for a
// drain attempt: under the attempt budget and past the retry backoff.
func (r *AuditQueueRepository) ListCandidateIDs(ctx context.Context, maxAttempts int, backoff time.Duration, limit int) ([]string, error) {
	query := `
		SELECT id FROM audit_queue
		WHERE attempts < $1
		  AND (last_attempt IS NULL OR last_attempt < $2)
		ORDER BY created_at ASC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, maxAttempts, time.Now().Add(-backoff), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ClaimTx locks one entry for exclusive processing inside tx. Returns nil if
// the entry is gone or already locked by another worker.
func (r *AuditQueueRepository) ClaimTx(ctx context.Context, tx *sql.Tx, id string) (*models.AuditQueueEntry, error) {
	query := `
		SELECT ` + auditQueueColumns + `
		FROM audit_queue
		WHERE id = $1
		FOR UPDATE SKIP LOCKED
	`

	entry := &models.AuditQueueEntry{}
	var metadataJSON []byte

	err := tx.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.ActorID,
		&entry.Action,
		&entry.TargetType,
		&entry.TargetID,
		&entry.Reason,
		&metadataJSON,
		&entry.Attempts,
		&entry.LastAttempt,
		&entry.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

// DeleteTx removes a drained entry inside tx
func (r *AuditQueueRepository) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM audit_queue WHERE id = $1`, id)
	return err
}

// MarkFailure records a failed drain attempt
func (r *AuditQueueRepository) MarkFailure(ctx context.Context, id string) error {
	query := `UPDATE audit_queue SET attempts = attempts + 1, last_attempt = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	return err
}

// SweepExceeded deletes entries that exhausted their attempt budget and
// returns how many were dropped
func (r *AuditQueueRepository) SweepExceeded(ctx context.Context, maxAttempts int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_queue WHERE attempts >= $1`, maxAttempts)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// List retrieves queue entries for operational visibility, oldest first
func (r *AuditQueueRepository) List(ctx context.Context, limit, offset int) ([]*models.AuditQueueEntry, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_queue`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + auditQueueColumns + `
		FROM audit_queue
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]*models.AuditQueueEntry, 0)
	for rows.Next() {
		entry := &models.AuditQueueEntry{}
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.TargetType,
			&entry.TargetID,
			&entry.Reason,
			&metadataJSON,
			&entry.Attempts,
			&entry.LastAttempt,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}

		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, 0, err
			}
		}

		entries = append(entries, entry)
	}

	return entries, total, rows.Err()
}
