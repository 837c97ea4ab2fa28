// softdelete.go implements the soft delete / restore lifecycle. Deletion is a
// deleted_at timestamp on the entity row, never a row removal, so every
// deletion is reversible and leaves a SoftDeleteAudit record behind.
package moderation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pawtrails/backoffice/internal/audit"
	"github.com/pawtrails/backoffice/internal/db/models"
	"github.com/pawtrails/backoffice/internal/db/repositories"
)

// SoftDeleteManager soft-deletes and restores content across registered types
type SoftDeleteManager struct {
	db       *sql.DB
	registry *Registry
	audits   *repositories.SoftDeleteRepository
	actions  *repositories.ModerationActionRepository
	writer   *audit.Writer
}

// NewSoftDeleteManager creates a SoftDeleteManager
func NewSoftDeleteManager(db *sql.DB, registry *Registry, audits *repositories.SoftDeleteRepository, actions *repositories.ModerationActionRepository, writer *audit.Writer) *SoftDeleteManager {
	return &SoftDeleteManager{
		db:       db,
		registry: registry,
		audits:   audits,
		actions:  actions,
		writer:   writer,
	}
}

// SoftDeleteRequest describes one deletion
type SoftDeleteRequest struct {
	ContentType string
	ContentID   string
	DeletedBy   string
	Reason      *string
	Metadata    map[string]interface{}
}

// SoftDelete marks the content deleted and records one SoftDeleteAudit row
// and one ModerationActionLog row in the same transaction. An unsupported
// content type fails before any write. Returns the SoftDeleteAudit row ID.
func (m *SoftDeleteManager) SoftDelete(ctx context.Context, req SoftDeleteRequest) (string, error) {
	ops, ok := m.registry.Lookup(req.ContentType)
	if !ok {
		return "", fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedContentType, req.ContentType, m.registry.Types())
	}

	now := time.Now()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin soft delete: %w", err)
	}
	defer tx.Rollback()

	deleted, err := ops.SoftDelete(ctx, tx, req.ContentID, now)
	if err != nil {
		return "", fmt.Errorf("soft delete %s %s: %w", req.ContentType, req.ContentID, err)
	}
	if !deleted {
		// The update matched no live row. Tell the caller which case it hit.
		item, getErr := ops.Get(ctx, req.ContentID)
		if getErr != nil {
			return "", getErr
		}
		if item == nil {
			return "", fmt.Errorf("%w: %s %s", ErrContentNotFound, req.ContentType, req.ContentID)
		}
		return "", fmt.Errorf("%w: %s %s", ErrAlreadyDeleted, req.ContentType, req.ContentID)
	}

	sdAudit := &models.SoftDeleteAudit{
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		DeletedBy:   req.DeletedBy,
		Reason:      req.Reason,
		Metadata:    req.Metadata,
		DeletedAt:   now,
	}
	if err := m.audits.CreateTx(ctx, tx, sdAudit); err != nil {
		return "", fmt.Errorf("create soft delete audit: %w", err)
	}

	action := &models.ModerationActionLog{
		Action:      "delete",
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		PerformedBy: req.DeletedBy,
		Reason:      req.Reason,
		Metadata:    req.Metadata,
		CreatedAt:   now,
	}
	if err := m.actions.CreateTx(ctx, tx, action); err != nil {
		return "", fmt.Errorf("create action log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit soft delete: %w", err)
	}

	m.writer.Write(ctx, audit.Entry{
		ActorID:    &req.DeletedBy,
		Action:     "soft_delete",
		TargetType: req.ContentType,
		TargetID:   req.ContentID,
		Reason:     req.Reason,
		Metadata:   req.Metadata,
	})

	return sdAudit.ID, nil
}

// Restore clears deleted_at and closes every outstanding SoftDeleteAudit row
// for the item. Restoring content with no outstanding deletion is a no-op
// success, so retries are harmless.
func (m *SoftDeleteManager) Restore(ctx context.Context, contentType, contentID, restoredBy string) error {
	ops, ok := m.registry.Lookup(contentType)
	if !ok {
		return fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedContentType, contentType, m.registry.Types())
	}

	now := time.Now()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback()

	if err := ops.Restore(ctx, tx, contentID); err != nil {
		return fmt.Errorf("restore %s %s: %w", contentType, contentID, err)
	}

	if _, err := m.audits.RestoreOutstandingTx(ctx, tx, contentType, contentID, restoredBy, now); err != nil {
		return fmt.Errorf("close soft delete audits: %w", err)
	}

	action := &models.ModerationActionLog{
		Action:      "restore",
		ContentType: contentType,
		ContentID:   contentID,
		PerformedBy: restoredBy,
		CreatedAt:   now,
	}
	if err := m.actions.CreateTx(ctx, tx, action); err != nil {
		return fmt.Errorf("create action log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}

	m.writer.Write(ctx, audit.Entry{
		ActorID:    &restoredBy,
		Action:     "restore",
		TargetType: contentType,
		TargetID:   contentID,
	})

	return nil
}

// IsDeleted reports whether the content is currently soft deleted
func (m *SoftDeleteManager) IsDeleted(ctx context.Context, contentType, contentID string) (bool, error) {
	ops, ok := m.registry.Lookup(contentType)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	item, err := ops.Get(ctx, contentID)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, fmt.Errorf("%w: %s %s", ErrContentNotFound, contentType, contentID)
	}
	return item.Deleted(), nil
}

// GetSoftDeleteAudit returns the outstanding audit row, or nil when the
// content is not currently deleted
func (m *SoftDeleteManager) GetSoftDeleteAudit(ctx context.Context, contentType, contentID string) (*models.SoftDeleteAudit, error) {
	if _, ok := m.registry.Lookup(contentType); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	return m.audits.GetOutstanding(ctx, contentType, contentID)
}

// History returns the full deletion history for the item, newest first
func (m *SoftDeleteManager) History(ctx context.Context, contentType, contentID string) ([]*models.SoftDeleteAudit, error) {
	if _, ok := m.registry.Lookup(contentType); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	return m.audits.ListByContent(ctx, contentType, contentID)
}
