package middleware

import (
	"net/http"
	"strings"

	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const actorContextKey = "actor"

// AuthMiddleware validates the bearer token and stores the resolved
// actor in the request context.
func AuthMiddleware(identity *services.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_authorization",
				"message": "Authorization header is required",
			})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_authorization_format",
				"message": "Authorization header must be in format: Bearer <token>",
			})
			c.Abort()
			return
		}

		actor, err := identity.Verify(tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Token validation failed",
			})
			c.Abort()
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the allowed set.
// Must run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "authentication_required",
				"message": "Authentication is required",
			})
			c.Abort()
			return
		}
		if !actor.Role.IsAny(roles...) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Role not permitted for this operation",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated actor, or nil outside an
// authenticated request.
func GetActor(c *gin.Context) *services.Actor {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return nil
	}
	actor, ok := value.(*services.Actor)
	if !ok {
		return nil
	}
	return actor
}

// GetCompanyID returns the authenticated actor's tenant.
func GetCompanyID(c *gin.Context) (uuid.UUID, bool) {
	actor := GetActor(c)
	if actor == nil {
		return uuid.Nil, false
	}
	return actor.CompanyID, true
}
