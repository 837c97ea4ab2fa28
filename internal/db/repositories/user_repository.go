// user_repository.go implements UserRepository, covering account lookups plus
// the range-block mutations (scheduled deletion, session invalidation).
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/pawtrails/backoffice/internal/db/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, role, session_invalidated_at, deletion_scheduled_at, deletion_reason, created_at, updated_at`

// GetUser retrieves a user by ID
func (r *UserRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetForUpdateTx retrieves a user with a row lock inside tx
func (r *UserRepository) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return scanUser(tx.QueryRowContext(ctx, query, id))
}

// ApplyRangeBlockTx schedules the user's deletion and invalidates existing
// tokens inside tx. Sessions are revoked separately via RevokeSessionsTx.
func (r *UserRepository) ApplyRangeBlockTx(ctx context.Context, tx *sql.Tx, userID, reason string, scheduledAt, now time.Time) error {
	query := `
		UPDATE users
		SET deletion_scheduled_at = $2, deletion_reason = $3, session_invalidated_at = $4, updated_at = $4
		WHERE id = $1
	`
	_, err := tx.ExecContext(ctx, query, userID, scheduledAt, reason, now)
	return err
}

// RevokeSessionsTx revokes all active sessions for the user inside tx and
// returns how many were revoked
func (r *UserRepository) RevokeSessionsTx(ctx context.Context, tx *sql.Tx, userID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `UPDATE sessions SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.SessionInvalidatedAt,
		&u.DeletionScheduledAt,
		&u.DeletionReason,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
