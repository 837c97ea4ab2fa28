// Package auth - scopes.go defines permission scope constants for the back
// office and provides HasScope, HasAnyScope, and HasAllScopes helpers.
package auth

import (
	"errors"
	"fmt"
)

// Scope represents a permission/scope type
type Scope string

const (
	// Moderation scopes
	ScopeModerationRead  Scope = "moderation:read"
	ScopeModerationWrite Scope = "moderation:write"

	// Audit log scopes
	ScopeAuditRead Scope = "audit:read"

	// User management scopes
	ScopeUsersRead  Scope = "users:read"
	ScopeUsersWrite Scope = "users:write"

	// API key management scopes
	ScopeAPIKeysManage Scope = "api_keys:manage"

	// Admin scope (wildcard - all permissions)
	ScopeAdmin Scope = "admin"
)

// AllScopes returns all valid scopes
func AllScopes() []Scope {
	return []Scope{
		ScopeModerationRead,
		ScopeModerationWrite,
		ScopeAuditRead,
		ScopeUsersRead,
		ScopeUsersWrite,
		ScopeAPIKeysManage,
		ScopeAdmin,
	}
}

// ValidScopes returns a map of valid scope strings
func ValidScopes() map[string]bool {
	validScopes := make(map[string]bool)
	for _, scope := range AllScopes() {
		validScopes[string(scope)] = true
	}
	return validScopes
}

// ValidateScopes checks if all provided scopes are valid
func ValidateScopes(scopes []string) error {
	validScopes := ValidScopes()
	for _, scope := range scopes {
		if !validScopes[scope] {
			return fmt.Errorf("invalid scope: %s", scope)
		}
	}
	return nil
}

// HasScope checks if a user has a required scope.
// The admin scope is a wildcard, and write scopes imply their read scope.
func HasScope(userScopes []string, required Scope) bool {
	requiredStr := string(required)

	for _, scope := range userScopes {
		if scope == requiredStr {
			return true
		}
		if scope == string(ScopeAdmin) {
			return true
		}
		if required == ScopeModerationRead && scope == string(ScopeModerationWrite) {
			return true
		}
		if required == ScopeUsersRead && scope == string(ScopeUsersWrite) {
			return true
		}
	}
	return false
}

// HasAnyScope checks if a user has at least one of the required scopes
func HasAnyScope(userScopes []string, requiredScopes []Scope) bool {
	for _, required := range requiredScopes {
		if HasScope(userScopes, required) {
			return true
		}
	}
	return false
}

// HasAllScopes checks if a user has all of the required scopes
func HasAllScopes(userScopes []string, requiredScopes []Scope) bool {
	for _, required := range requiredScopes {
		if !HasScope(userScopes, required) {
			return false
		}
	}
	return true
}

// ScopesForRole maps a user role to the scopes it grants
func ScopesForRole(role string) []string {
	switch role {
	case "admin":
		return []string{string(ScopeAdmin)}
	case "moderator":
		return []string{
			string(ScopeModerationRead),
			string(ScopeModerationWrite),
			string(ScopeAuditRead),
			string(ScopeUsersRead),
		}
	default:
		return nil
	}
}

// ValidateScopeString validates a single scope string
func ValidateScopeString(scope string) error {
	if !ValidScopes()[scope] {
		return errors.New("invalid scope")
	}
	return nil
}
