package middleware

import (
	"context"
	"net/http"
	"strings"

	"cognition-berries/pkg/identity"
	"cognition-berries/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID    = "user_id"
	ContextUserRole  = "user_role"
	ContextUserEmail = "user_email"
	ContextUserName  = "user_name"

	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Identity injected for every request when SKIP_AUTH is on.
var SkipAuthIdentity = identity.Identity{
	UID:   "test-user-id",
	Email: "test@example.com",
	Name:  "Test User",
}

// RoleResolver maps a verified caller onto a stored user, creating it on
// first sight, and returns the role recorded for it.
type RoleResolver interface {
	ResolveRole(ctx context.Context, id *identity.Identity) (string, error)
}

func AuthMiddleware(verifier identity.Verifier, resolver RoleResolver, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		id, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			log.Warn("Rejected bearer token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		role, err := resolver.ResolveRole(c.Request.Context(), id)
		if err != nil {
			log.Error("Failed to resolve role for %s: %v", id.UID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}

		setIdentity(c, id, role)
		c.Next()
	}
}

// SkipAuthMiddleware trusts every request as the synthetic admin. Test mode only.
func SkipAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := SkipAuthIdentity
		setIdentity(c, &id, RoleAdmin)
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: " + role + " access required"})
			return
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, id *identity.Identity, role string) {
	c.Set(ContextUserID, id.UID)
	c.Set(ContextUserRole, role)
	c.Set(ContextUserEmail, id.Email)
	c.Set(ContextUserName, id.Name)
}
