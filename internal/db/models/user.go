// Package models - user.go defines the User model for platform accounts along
// with the role helpers the moderation surface relies on.
package models

import "time"

// User roles in ascending order of privilege
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User represents a platform account
type User struct {
	ID                   string
	Email                string
	Name                 string
	Role                 string
	SessionInvalidatedAt *time.Time // Tokens issued before this are rejected
	DeletionScheduledAt  *time.Time // Set by a range block, cleared by revert
	DeletionReason       *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsModerator returns true for moderator and admin accounts
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

// IsAdmin returns true for admin accounts
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session represents a login session. Revoked sessions stay on record.
type Session struct {
	ID        string
	UserID    string
	Revoked   bool
	CreatedAt time.Time
	ExpiresAt time.Time
}
