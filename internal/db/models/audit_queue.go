package models

import "time"

// AuditQueueEntry is an audit entry parked in the fallback queue because the
// direct write to audit_logs failed. CreatedAt is the time of the original
// event, not of the enqueue, and is preserved when the entry is drained.
type AuditQueueEntry struct {
	ID          string                 `json:"id"`
	ActorID     *string                `json:"actorId,omitempty"`
	Action      string                 `json:"action"`
	TargetType  string                 `json:"targetType"`
	TargetID    string                 `json:"targetId"`
	Reason      *string                `json:"reason,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Attempts    int                    `json:"attempts"`
	LastAttempt *time.Time             `json:"lastAttempt,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}
