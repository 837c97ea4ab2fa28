// Package models defines the database model types for the back office.
// Models are pure data types. Query logic belongs in the repositories layer.
package models

import "time"

// APIKey represents an API key for service authentication
type APIKey struct {
	ID        string
	UserID    string
	Name      string     // Friendly name (e.g., "Moderation Bot")
	KeyHash   string     // Bcrypt hash of the full key
	KeyPrefix string     // First 10 chars for lookup (e.g., "paw_abc123")
	ExpiresAt  *time.Time // Optional expiration
	LastUsedAt *time.Time // Best-effort usage tracking
	CreatedAt  time.Time
}

// Expired returns true if the key has an expiry in the past
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}
