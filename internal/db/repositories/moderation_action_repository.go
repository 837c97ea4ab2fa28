// moderation_action_repository.go implements ModerationActionRepository,
// recording one row per discrete moderation decision.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pawtrails/backoffice/internal/db/models"
)

// ModerationActionRepository handles moderation action log database operations
type ModerationActionRepository struct {
	db *sql.DB
}

// NewModerationActionRepository creates a new ModerationActionRepository
func NewModerationActionRepository(db *sql.DB) *ModerationActionRepository {
	return &ModerationActionRepository{db: db}
}

// CreateTx inserts an action log row inside tx, so the record commits or
// rolls back together with the mutation it describes
func (r *ModerationActionRepository) CreateTx(ctx context.Context, tx *sql.Tx, action *models.ModerationActionLog) error {
	if action.ID == "" {
		action.ID = uuid.New().String()
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now()
	}

	metadataJSON, err := marshalMetadata(action.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO moderation_actions (id, action, content_type, content_id, performed_by, reason, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.ExecContext(ctx, query,
		action.ID,
		action.Action,
		action.ContentType,
		action.ContentID,
		action.PerformedBy,
		action.Reason,
		metadataJSON,
		action.CreatedAt,
	)

	return err
}

// ListByContent retrieves the action history for one content item, newest first
func (r *ModerationActionRepository) ListByContent(ctx context.Context, contentType, contentID string) ([]*models.ModerationActionLog, error) {
	query := `
		SELECT id, action, content_type, content_id, performed_by, reason, metadata, created_at
		FROM moderation_actions
		WHERE content_type = $1 AND content_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, contentType, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := make([]*models.ModerationActionLog, 0)
	for rows.Next() {
		action := &models.ModerationActionLog{}
		var metadataJSON []byte

		err := rows.Scan(
			&action.ID,
			&action.Action,
			&action.ContentType,
			&action.ContentID,
			&action.PerformedBy,
			&action.Reason,
			&metadataJSON,
			&action.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &action.Metadata); err != nil {
				return nil, err
			}
		}

		actions = append(actions, action)
	}

	return actions, rows.Err()
}
