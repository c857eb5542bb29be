// Package middleware carries the HTTP cross-cutting concerns: auth,
// request logging, CORS and metrics.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/samantr/randp-backend/internal/auth"
)

const (
	// UserIDKey is the gin context key for the authenticated user id.
	UserIDKey = "user_id"
	// EmailKey is the gin context key for the authenticated user's email.
	EmailKey = "email"
)

// GetUserID extracts the authenticated user id from the gin context.
// Returns empty string if the request was not authenticated.
func GetUserID(c *gin.Context) string {
	id, _ := c.Value(UserIDKey).(string)
	return id
}

// GetEmail extracts the authenticated user's email from the gin context.
func GetEmail(c *gin.Context) string {
	email, _ := c.Value(EmailKey).(string)
	return email
}

// RequireAuth validates the Bearer token on every request in the group and
// stores the user id and email in the gin context.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}
