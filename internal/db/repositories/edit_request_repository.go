// edit_request_repository.go implements EditRequestRepository for the
// user-submitted content changes the bulk revert operation acts on.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/pawtrails/backoffice/internal/db/models"
)

// EditRequestRepository handles edit request database operations
type EditRequestRepository struct {
	db *sql.DB
}

// NewEditRequestRepository creates a new EditRequestRepository
func NewEditRequestRepository(db *sql.DB) *EditRequestRepository {
	return &EditRequestRepository{db: db}
}

const editRequestColumns = `id, content_type, content_id, user_id, status, reviewed_by, reviewed_at, reason, created_at`

// GetEditRequest retrieves an edit request by ID
func (r *EditRequestRepository) GetEditRequest(ctx context.Context, id string) (*models.EditRequest, error) {
	query := `SELECT ` + editRequestColumns + ` FROM edit_requests WHERE id = $1`
	return scanEditRequest(r.db.QueryRowContext(ctx, query, id))
}

// GetForUpdateTx retrieves an edit request with a row lock inside tx
func (r *EditRequestRepository) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*models.EditRequest, error) {
	query := `SELECT ` + editRequestColumns + ` FROM edit_requests WHERE id = $1 FOR UPDATE`
	return scanEditRequest(tx.QueryRowContext(ctx, query, id))
}

// RejectTx marks a pending edit request as rejected inside tx
func (r *EditRequestRepository) RejectTx(ctx context.Context, tx *sql.Tx, id, reviewerID, reason string, reviewedAt time.Time) error {
	query := `
		UPDATE edit_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4, reason = $5
		WHERE id = $1
	`
	_, err := tx.ExecContext(ctx, query, id, models.EditRequestRejected, reviewerID, reviewedAt, reason)
	return err
}

func scanEditRequest(row *sql.Row) (*models.EditRequest, error) {
	req := &models.EditRequest{}
	err := row.Scan(
		&req.ID,
		&req.ContentType,
		&req.ContentID,
		&req.UserID,
		&req.Status,
		&req.ReviewedBy,
		&req.ReviewedAt,
		&req.Reason,
		&req.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}
