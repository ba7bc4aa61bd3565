// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	appctx "ptv/internal/core/context"
	"ptv/internal/infrastructure/http/v1/middleware"
)

// VersionedRouteHandler defines the interface for versioned entity handlers.
// All versioned handlers must implement these methods.
type VersionedRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Save(c *gin.Context)
	Publish(c *gin.Context)
	Archive(c *gin.Context)
	Restore(c *gin.Context)
	Withdraw(c *gin.Context)
	GetLatest(c *gin.Context)
	GetPublished(c *gin.Context)
	History(c *gin.Context)
}

// editorRoles may change content; every authenticated user may read.
var editorRoles = []string{appctx.RoleEeva, appctx.RolePete, appctx.RoleShirley}

// RegisterVersionedRoutes registers the lifecycle routes of a versioned entity.
//
// Usage:
//
//	handler := handlers.NewChannelHandler(baseHandler, registry.Channels, registry.Types)
//	RegisterVersionedRoutes(protected.Group("/channels"), handler)
func RegisterVersionedRoutes(group *gin.RouterGroup, handler VersionedRouteHandler) {
	edit := middleware.RequireRole(editorRoles...)

	group.GET("", handler.List)
	group.POST("", edit, handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", edit, handler.Save)
	group.POST("/:id/publish", edit, handler.Publish)
	group.POST("/:id/archive", edit, handler.Archive)
	group.POST("/:id/restore", edit, handler.Restore)
	group.POST("/:id/withdraw", edit, handler.Withdraw)

	roots := group.Group("/roots/:rootId")
	roots.GET("/latest", handler.GetLatest)
	roots.GET("/published", handler.GetPublished)
	roots.GET("/history", handler.History)
}
