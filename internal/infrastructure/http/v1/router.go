// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"ptv/internal/app"
	"ptv/internal/infrastructure/http/v1/handlers"
	"ptv/internal/infrastructure/http/v1/middleware"
	"ptv/internal/infrastructure/mapserver"
	"ptv/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Registry holds the wired caches and domain services
	Registry *app.Container

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Feedback processes citizen feedback; the route is public
	Feedback handlers.FeedbackProcessor

	// MapGate validates and proxies map server queries. Optional.
	MapGate *mapserver.Gate

	// Version is reported by /health/info
	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Registry.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	if cfg.MapGate != nil {
		router.GET("/mapserver", cfg.MapGate.Handle)
	}

	baseHandler := handlers.NewBaseHandler()

	v1 := router.Group("/api/v1")
	{
		if cfg.Feedback != nil {
			feedbackHandler := handlers.NewFeedbackHandler(baseHandler, cfg.Feedback)
			v1.POST("/feedback", middleware.OptionalAuth(cfg.JWTValidator), feedbackHandler.Send)
		}

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		protected.Use(middleware.Scope())

		registerVersionedRoutes(protected, baseHandler, cfg.Registry)
		registerReferenceRoutes(protected, baseHandler, cfg.Registry)
	}

	return router
}

// registerVersionedRoutes registers the versioned entity endpoints.
func registerVersionedRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, reg *app.Container) {
	// --- SERVICES ---
	{
		handler := handlers.NewServiceHandler(base, reg.Services, reg.Services, reg.Types)
		group := rg.Group("/services")
		group.GET("/by-channel/:channelId", handler.ListByChannel)
		RegisterVersionedRoutes(group, handler)
	}

	// --- CHANNELS ---
	{
		handler := handlers.NewChannelHandler(base, reg.Channels, reg.Types)
		RegisterVersionedRoutes(rg.Group("/channels"), handler)
	}

	// --- ORGANIZATIONS ---
	{
		handler := handlers.NewOrganizationHandler(base, reg.OrganizationService, reg.Organizations, reg.Types)
		group := rg.Group("/organizations")
		group.GET("/roots/:rootId/hierarchy", handler.Hierarchy)
		RegisterVersionedRoutes(group, handler)
	}

	// --- GENERAL DESCRIPTIONS ---
	{
		handler := handlers.NewGeneralDescriptionHandler(base, reg.GeneralDescriptions, reg.Types)
		RegisterVersionedRoutes(rg.Group("/general-descriptions"), handler)
	}
}

// registerReferenceRoutes registers types, classifications, countries and imports.
func registerReferenceRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, reg *app.Container) {
	handler := handlers.NewReferenceHandler(base, reg.Finto, reg.Countries, reg.Types)

	rg.GET("/types/:kind", handler.Types)
	rg.GET("/classifications/:kind", handler.Tree)
	rg.GET("/ontology", handler.SearchOntology)
	rg.GET("/ontology/:id", handler.OntologyTerm)
	rg.GET("/countries", handler.Countries)

	imports := rg.Group("/imports")
	imports.Use(middleware.RequireAdmin())
	{
		imports.POST("/ontology", handler.ImportOntology)
		imports.POST("/classifications/:kind", handler.ImportTree)
		imports.POST("/countries", handler.ImportCountries)
	}
}
