// Package models - edit_request.go defines the EditRequest model for
// user-submitted content changes awaiting moderator review.
package models

import "time"

// Edit request review states
const (
	EditRequestPending  = "pending"
	EditRequestApproved = "approved"
	EditRequestRejected = "rejected"
)

// EditRequest represents a user-submitted content change pending review
type EditRequest struct {
	ID          string
	ContentType string
	ContentID   string
	UserID      string
	Status      string // "pending", "approved", "rejected"
	ReviewedBy  *string
	ReviewedAt  *time.Time
	Reason      *string
	CreatedAt   time.Time
}
