package middleware

import (
	"github.com/gin-gonic/gin"

	"ptv/internal/core/apperror"
	appctx "ptv/internal/core/context"
)

// RequireRole lets the request through when the user has any of roles.
// Administrators pass every role check.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := appctx.GetUser(ctx)
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}
		if user.IsAdmin {
			c.Next()
			return
		}
		for _, required := range roles {
			if appctx.HasRole(ctx, required) {
				c.Next()
				return
			}
		}
		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_roles", roles),
		)
		c.Abort()
	}
}

// RequireAdmin restricts imports and other registry-wide operations.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(appctx.RoleEeva)
}
