// content_repository.go implements ContentRepository, a single repository
// shared by all four content tables. Table names come from a fixed allowlist,
// never from request input, so interpolating them into SQL is safe.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pawtrails/backoffice/internal/db/models"
)

// ContentRepository handles the moderation-relevant columns of content tables
type ContentRepository struct {
	db *sql.DB
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db *sql.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

var contentTables = map[string]bool{
	"articles":   true,
	"blog_posts": true,
	"places":     true,
	"products":   true,
}

func checkTable(table string) error {
	if !contentTables[table] {
		return fmt.Errorf("unknown content table %q", table)
	}
	return nil
}

// GetContent retrieves a content row by ID, including soft deleted rows
func (r *ContentRepository) GetContent(ctx context.Context, table, id string) (*models.ContentItem, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, author_id, title, deleted_at, created_at FROM %s WHERE id = $1`, table)

	item := &models.ContentItem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.AuthorID,
		&item.Title,
		&item.DeletedAt,
		&item.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SoftDeleteTx stamps deleted_at on a live row inside tx. Returns false when
// the row is missing or already deleted.
func (r *ContentRepository) SoftDeleteTx(ctx context.Context, tx *sql.Tx, table, id string, deletedAt time.Time) (bool, error) {
	if err := checkTable(table); err != nil {
		return false, err
	}

	query := fmt.Sprintf(`UPDATE %s SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, table)
	res, err := tx.ExecContext(ctx, query, id, deletedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RestoreTx clears deleted_at inside tx. Clearing an already-live row is
// fine, so the affected count is not checked.
func (r *ContentRepository) RestoreTx(ctx context.Context, tx *sql.Tx, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET deleted_at = NULL WHERE id = $1`, table)
	_, err := tx.ExecContext(ctx, query, id)
	return err
}
