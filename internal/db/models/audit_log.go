// Package models - audit_log.go defines the AuditLog model for the append-only
// audit trail, capturing actor, action, affected content, and arbitrary metadata.
package models

import "time"

// AuditLog represents a single entry in the append-only audit trail
type AuditLog struct {
	ID         string                 `json:"id"`
	ActorID    *string                `json:"actorId,omitempty"` // Nullable for system actions
	Action     string                 `json:"action"`            // "bulk_revert", "bulk_range_block", "soft_delete", "restore"
	TargetType string                 `json:"targetType"`        // "article", "blog_post", "place", "product", "user", "bulk"
	TargetID   string                 `json:"targetId"`
	Reason     *string                `json:"reason,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"` // JSONB: additional context
	CreatedAt  time.Time              `json:"createdAt"`
}
