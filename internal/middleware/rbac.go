package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Suraj757/learning-profile-api/internal/models"
	appErrors "github.com/Suraj757/learning-profile-api/pkg/errors"
	"github.com/Suraj757/learning-profile-api/pkg/response"
)

// RequireRoles limits a route to the listed account roles. It must run after
// the session middleware.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.SessionClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
