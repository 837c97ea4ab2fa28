// soft_delete_repository.go implements SoftDeleteRepository over the
// soft_delete_audits table. A partial unique index guarantees at most one
// outstanding (unrestored) row per content item.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrails/backoffice/internal/db/models"
)

// SoftDeleteRepository handles soft delete audit database operations
type SoftDeleteRepository struct {
	db *sql.DB
}

// NewSoftDeleteRepository creates a new SoftDeleteRepository
func NewSoftDeleteRepository(db *sql.DB) *SoftDeleteRepository {
	return &SoftDeleteRepository{db: db}
}

const softDeleteColumns = `id, content_type, content_id, deleted_by, reason, metadata, deleted_at, restored_at, restored_by`

// CreateTx inserts a soft delete audit row inside tx
func (r *SoftDeleteRepository) CreateTx(ctx context.Context, tx *sql.Tx, audit *models.SoftDeleteAudit) error {
	if audit.ID == "" {
		audit.ID = uuid.New().String()
	}
	if audit.DeletedAt.IsZero() {
		audit.DeletedAt = time.Now()
	}

	metadataJSON, err := marshalMetadata(audit.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO soft_delete_audits (id, content_type, content_id, deleted_by, reason, metadata, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.ExecContext(ctx, query,
		audit.ID,
		audit.ContentType,
		audit.ContentID,
		audit.DeletedBy,
		audit.Reason,
		metadataJSON,
		audit.DeletedAt,
	)

	return err
}

// GetOutstanding retrieves the unrestored audit row for a content item, if any
func (r *SoftDeleteRepository) GetOutstanding(ctx context.Context, contentType, contentID string) (*models.SoftDeleteAudit, error) {
	query := `
		SELECT ` + softDeleteColumns + `
		FROM soft_delete_audits
		WHERE content_type = $1 AND content_id = $2 AND restored_at IS NULL
	`
	return scanSoftDeleteAudit(r.db.QueryRowContext(ctx, query, contentType, contentID))
}

// RestoreOutstandingTx marks every unrestored audit row for the item as
// restored inside tx and returns how many rows were updated. Zero rows is
// not an error: restoring never-deleted content is a no-op.
func (r *SoftDeleteRepository) RestoreOutstandingTx(ctx context.Context, tx *sql.Tx, contentType, contentID, restoredBy string, restoredAt time.Time) (int64, error) {
	query := `
		UPDATE soft_delete_audits
		SET restored_at = $3, restored_by = $4
		WHERE content_type = $1 AND content_id = $2 AND restored_at IS NULL
	`
	res, err := tx.ExecContext(ctx, query, contentType, contentID, restoredAt, restoredBy)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByContent retrieves the full deletion history for one item, newest first
func (r *SoftDeleteRepository) ListByContent(ctx context.Context, contentType, contentID string) ([]*models.SoftDeleteAudit, error) {
	query := `
		SELECT ` + softDeleteColumns + `
		FROM soft_delete_audits
		WHERE content_type = $1 AND content_id = $2
		ORDER BY deleted_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, contentType, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	audits := make([]*models.SoftDeleteAudit, 0)
	for rows.Next() {
		audit := &models.SoftDeleteAudit{}
		var metadataJSON []byte

		err := rows.Scan(
			&audit.ID,
			&audit.ContentType,
			&audit.ContentID,
			&audit.DeletedBy,
			&audit.Reason,
			&metadataJSON,
			&audit.DeletedAt,
			&audit.RestoredAt,
			&audit.RestoredBy,
		)
		if err != nil {
			return nil, err
		}

		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &audit.Metadata); err != nil {
				return nil, err
			}
		}

		audits = append(audits, audit)
	}

	return audits, rows.Err()
}

func scanSoftDeleteAudit(row *sql.Row) (*models.SoftDeleteAudit, error) {
	audit := &models.SoftDeleteAudit{}
	var metadataJSON []byte

	err := row.Scan(
		&audit.ID,
		&audit.ContentType,
		&audit.ContentID,
		&audit.DeletedBy,
		&audit.Reason,
		&metadataJSON,
		&audit.DeletedAt,
		&audit.RestoredAt,
		&audit.RestoredBy,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &audit.Metadata); err != nil {
			return nil, err
		}
	}

	return audit, nil
}
