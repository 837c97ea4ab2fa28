// Package middleware provides Gin HTTP middleware for authentication,
// authorization, rate limiting, security headers, and request logging.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Security → RateLimit → Auth → RBAC → AccessLog → Handler
//
// Security headers run first so they appear on all responses including errors.
// Rate limiting runs before auth to block brute-force attempts before any DB
// work. Auth populates the user identity and scopes; RBAC reads from that
// context.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawtrails/backoffice/internal/auth"
	"github.com/pawtrails/backoffice/internal/db/models"
	"github.com/pawtrails/backoffice/internal/db/repositories"
	"github.com/pawtrails/backoffice/internal/safego"
)

// AuthMiddleware validates authentication (JWT or API key)
func AuthMiddleware(userRepo *repositories.UserRepository, apiKeyRepo *repositories.APIKeyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing authorization header",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must start with 'Bearer '",
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is empty",
			})
			return
		}

		// JWT is attempted first because it is stateless. API key validation
		// always needs a DB round-trip, so JWT is the lower-latency path for
		// back-office browser sessions.
		if claims, err := auth.ValidateJWT(token); err == nil {
			user, err := userRepo.GetUser(c.Request.Context(), claims.UserID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to load user",
				})
				return
			}
			if user == nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "User not found",
				})
				return
			}

			// A range block stamps session_invalidated_at on the account.
			// Any token minted before that instant is dead, even though its
			// signature and expiry are still valid.
			if user.SessionInvalidatedAt != nil && claims.IssuedAt != nil &&
				claims.IssuedAt.Time.Before(*user.SessionInvalidatedAt) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Session has been revoked",
				})
				return
			}

			c.Set("user", user)
			c.Set("user_id", user.ID)
			c.Set("auth_method", "jwt")
			c.Set("scopes", auth.ScopesForRole(user.Role))

			c.Next()
			return
		}

		// Try API key. We never store the raw key, only its bcrypt hash. The
		// 10-character prefix is stored plaintext alongside the hash so an
		// indexed query narrows the candidate set before the expensive bcrypt
		// comparison runs. Without the prefix every request would bcrypt-scan
		// the whole api_keys table.
		keyPrefix := token
		if len(token) > auth.DisplayPrefixLength {
			keyPrefix = token[:auth.DisplayPrefixLength]
		}
		apiKey, err := authenticateAPIKey(c.Request.Context(), token, keyPrefix, apiKeyRepo)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Authentication failed",
			})
			return
		}

		if apiKey != nil {
			if apiKey.Expired(time.Now()) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "API key expired",
				})
				return
			}

			user, err := userRepo.GetUser(c.Request.Context(), apiKey.UserID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to load user",
				})
				return
			}
			if user == nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "API key owner not found",
				})
				return
			}

			// Last-used tracking is best-effort. Making it synchronous would
			// add a DB write to every authenticated request; the timeout
			// prevents leaked goroutines when the DB is unreachable.
			safego.Go(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = apiKeyRepo.UpdateLastUsed(ctx, apiKey.ID)
			})

			c.Set("api_key", apiKey)
			c.Set("api_key_id", apiKey.ID)
			c.Set("auth_method", "api_key")
			c.Set("user", user)
			c.Set("user_id", user.ID)
			c.Set("scopes", auth.ScopesForRole(user.Role))

			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid credentials",
		})
	}
}

// authenticateAPIKey looks up candidates by prefix and bcrypt-validates each
func authenticateAPIKey(ctx context.Context, providedKey, keyPrefix string, apiKeyRepo *repositories.APIKeyRepository) (*models.APIKey, error) {
	keys, err := apiKeyRepo.GetAPIKeysByPrefix(ctx, keyPrefix)
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		if auth.ValidateAPIKey(providedKey, key.KeyHash) {
			return key, nil
		}
	}

	return nil, nil
}

// CurrentUser returns the authenticated user from the gin context, or nil
func CurrentUser(c *gin.Context) *models.User {
	val, ok := c.Get("user")
	if !ok {
		return nil
	}
	user, _ := val.(*models.User)
	return user
}
