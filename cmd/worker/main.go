// Package main is the entry point for the PTV scheduled publishing worker.
// It publishes language versions whose ValidFrom has passed and archives
// versions whose ValidTo has passed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ptv/internal/app"
	"ptv/internal/config"
	"ptv/internal/domain/versioned/channel"
	"ptv/internal/domain/versioned/generaldescription"
	"ptv/internal/domain/versioned/organization"
	"ptv/internal/domain/versioned/service"
	"ptv/internal/infrastructure/storage/postgres"
	"ptv/pkg/logger"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (default: ./ptv.yaml)")
	once := flag.Bool("once", false, "Run a single pass and exit")
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

	log.Infow("starting ptv worker", "interval", cfg.Worker.Interval)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	registry, err := app.New(pool)
	if err != nil {
		log.Fatalw("failed to wire registry", "error", err)
	}
	if err := registry.Start(ctx); err != nil {
		log.Fatalw("failed to load registry caches", "error", err)
	}
	defer registry.Stop()

	scheduler := NewScheduler(cfg.Worker.Interval, log,
		newJob[*organization.Organization]("organization", registry.OrganizationService),
		newJob[*generaldescription.GeneralDescription]("general_description", registry.GeneralDescriptions),
		newJob[*channel.Channel]("channel", registry.Channels),
		newJob[*service.Service]("service", registry.Services),
	)

	if *once {
		out := scheduler.RunOnce(ctx)
		log.Infow("single pass completed", "published", out.Published, "archived", out.Archived, "failed", out.Failed)
		return
	}

	scheduler.Run(ctx)
	postgres.LogPoolStats(ctx, pool.Unwrap())
	log.Info("worker stopped")
}
