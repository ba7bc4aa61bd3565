// Package middleware provides HTTP middleware for the registry API.
package middleware

import (
	"github.com/gin-gonic/gin"

	"ptv/internal/core/security"
)

// Scope derives the caller's access scope from the authenticated user and
// stores it in the request context for the organization policy.
//
// Must run after Auth.
func Scope() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		c.Request = c.Request.WithContext(security.WithScope(ctx, security.NewAccessScope(ctx)))
		c.Next()
	}
}
