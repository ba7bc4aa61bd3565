// Package main is the entry point for the PTV registry API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ptv/internal/app"
	"ptv/internal/config"
	"ptv/internal/domain/auth"
	"ptv/internal/domain/feedback"
	v1 "ptv/internal/infrastructure/http/v1"
	"ptv/internal/infrastructure/email"
	"ptv/internal/infrastructure/mapserver"
	"ptv/internal/infrastructure/storage/postgres"
	"ptv/pkg/logger"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (default: ./ptv.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	log.Infow("starting ptv server", "version", cfg.App.Version, "env", cfg.App.Env)

	// --- Database ---
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	// --- Registry ---
	registry, err := app.New(pool)
	if err != nil {
		log.Fatalw("failed to wire registry", "error", err)
	}
	if err := registry.Start(ctx); err != nil {
		log.Fatalw("failed to load registry caches", "error", err)
	}
	defer registry.Stop()

	// --- JWT Service ---
	jwtService := auth.NewJWTService(cfg.JWT)

	// --- Feedback ---
	var feedbackService *feedback.Service
	if cfg.Email.URL != "" {
		feedbackService = feedback.NewService(registry.Organizations, jwtService, email.NewClient(cfg.Email))
	} else {
		log.Warn("email.url not set, feedback endpoint disabled")
	}

	// --- Map server gate ---
	var gate *mapserver.Gate
	if cfg.MapServer.Upstream != "" {
		gate, err = mapserver.NewGate(cfg.MapServer)
		if err != nil {
			log.Fatalw("invalid map server configuration", "error", err)
		}
	}

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Registry:     registry,
		Logger:       log,
		JWTValidator: jwtService,
		MapGate:      gate,
		Version:      cfg.App.Version,
	}
	if feedbackService != nil {
		routerCfg.Feedback = feedbackService
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	postgres.LogPoolStats(logger.WithLogger(shutdownCtx, log), pool.Unwrap())

	log.Info("server stopped")
}
