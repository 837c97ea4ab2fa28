package models

import "time"

// SoftDeleteAudit tracks one soft deletion of a content item. A restore flips
// RestoredAt/RestoredBy on the outstanding row instead of deleting it, so the
// table doubles as a deletion history.
type SoftDeleteAudit struct {
	ID          string                 `json:"id"`
	ContentType string                 `json:"contentType"`
	ContentID   string                 `json:"contentId"`
	DeletedBy   string                 `json:"deletedBy"`
	Reason      *string                `json:"reason,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	DeletedAt   time.Time              `json:"deletedAt"`
	RestoredAt  *time.Time             `json:"restoredAt,omitempty"`
	RestoredBy  *string                `json:"restoredBy,omitempty"`
}

// Outstanding reports whether the deletion has not been restored yet
func (a *SoftDeleteAudit) Outstanding() bool {
	return a.RestoredAt == nil
}
