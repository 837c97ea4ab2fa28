// Package models - moderation_action.go defines the ModerationActionLog model,
// one row per discrete moderation decision including each item in a bulk run.
package models

import "time"

// ModerationActionLog records a single moderation decision against one content item
type ModerationActionLog struct {
	ID          string                 `json:"id"`
	Action      string                 `json:"action"` // "bulk_revert", "bulk_range_block", "soft_delete", "restore"
	ContentType string                 `json:"contentType"`
	ContentID   string                 `json:"contentId"`
	PerformedBy string                 `json:"performedBy"`
	Reason      *string                `json:"reason,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"` // JSONB: e.g. block duration, prior status
	CreatedAt   time.Time              `json:"createdAt"`
}
