package models

import "time"

// Moderation queue item states
const (
	QueueItemPending  = "pending"
	QueueItemInReview = "in_review"
	QueueItemResolved = "resolved"
)

// Moderation queue priorities
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// ModerationQueueItem represents one reported content item awaiting review
type ModerationQueueItem struct {
	ID          string
	ContentType string
	ContentID   string
	Priority    string
	Status      string
	ReportCount int
	AssignedTo  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
