// Package moderation implements the privileged actions of the back office:
// bulk edit-request reverts, bulk account range blocks, and the soft delete /
// restore lifecycle for content. Every mutation lands one row in
// moderation_actions inside the same transaction, and every top-level action
// is reported to the audit trail.
package moderation

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/pawtrails/backoffice/internal/db/models"
	"github.com/pawtrails/backoffice/internal/db/repositories"
)

var (
	// ErrUnsupportedContentType is returned for content types outside the registry
	ErrUnsupportedContentType = errors.New("unsupported content type")
	// ErrContentNotFound is returned when the targeted content row does not exist
	ErrContentNotFound = errors.New("content not found")
	// ErrAlreadyDeleted is returned when soft deleting content that is already deleted
	ErrAlreadyDeleted = errors.New("content is already deleted")
)

// ContentOps is the operation set registered for one content type
type ContentOps struct {
	SoftDelete func(ctx context.Context, tx *sql.Tx, id string, deletedAt time.Time) (bool, error)
	Restore    func(ctx context.Context, tx *sql.Tx, id string) error
	Get        func(ctx context.Context, id string) (*models.ContentItem, error)
}

// Registry maps content type names to their entity-table operations. The set
// is closed at construction: adding a type is a registration change here, not
// a new branch in the manager.
type Registry struct {
	ops map[string]ContentOps
}

// NewRegistry builds the registry over the four content tables
func NewRegistry(content *repositories.ContentRepository) *Registry {
	r := &Registry{ops: make(map[string]ContentOps)}
	for contentType, table := range map[string]string{
		"article":   "articles",
		"blog_post": "blog_posts",
		"place":     "places",
		"product":   "products",
	} {
		table := table
		r.ops[contentType] = ContentOps{
			SoftDelete: func(ctx context.Context, tx *sql.Tx, id string, deletedAt time.Time) (bool, error) {
				return content.SoftDeleteTx(ctx, tx, table, id, deletedAt)
			},
			Restore: func(ctx context.Context, tx *sql.Tx, id string) error {
				return content.RestoreTx(ctx, tx, table, id)
			},
			Get: func(ctx context.Context, id string) (*models.ContentItem, error) {
				return content.GetContent(ctx, table, id)
			},
		}
	}
	return r
}

// Lookup returns the operations for a content type
func (r *Registry) Lookup(contentType string) (ContentOps, bool) {
	ops, ok := r.ops[contentType]
	return ops, ok
}

// Types lists the registered content type names, sorted
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.ops))
	for t := range r.ops {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
