// Package main provides the schema migration CLI.
// Usage: migrate [-config ptv.yaml] <command> [arguments]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"ptv/internal/config"
	"ptv/internal/infrastructure/storage/postgres"
	"ptv/internal/infrastructure/storage/postgres/migrations"
	"ptv/pkg/logger"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (default: ./ptv.yaml)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]
	if command == "help" {
		printUsage()
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log.WithComponent("migrate"))

	if command == "fixup" {
		fixup(ctx, log, cfg)
		return
	}

	m, err := migrations.New(cfg.Database.DSN)
	if err != nil {
		log.Fatalw("failed to create migrator", "error", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warnw("failed to close migrator", "error", err)
		}
	}()

	switch command {
	case "up":
		err = m.Up(ctx)

	case "down":
		err = m.Down(ctx)

	case "step":
		if len(args) < 2 {
			log.Fatal("step count required. Usage: migrate step <n>")
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			log.Fatalw("invalid step count", "value", args[1])
		}
		err = m.Steps(ctx, n)

	case "force":
		if len(args) < 2 {
			log.Fatal("version required. Usage: migrate force <version>")
		}
		version, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			log.Fatalw("invalid version number", "value", args[1])
		}
		err = m.Force(ctx, version)

	case "version":
		version, dirty, verErr := m.Version()
		if verErr != nil {
			log.Fatalw("failed to get version", "error", verErr)
		}
		if version == 0 {
			log.Info("no migrations applied")
		} else {
			log.Infow("current migration version", "version", version, "dirty", dirty)
		}

	default:
		log.Errorw("unknown command", "command", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalw("migration failed", "command", command, "error", err)
	}
}

// fixup wraps legacy plain text descriptions in the rich text envelope.
func fixup(ctx context.Context, log *logger.Logger, cfg *config.Config) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	changed, err := migrations.FixupDescriptions(ctx, postgres.NewTxManager(pool))
	if err != nil {
		log.Fatalw("description fixup failed", "changed", changed, "error", err)
	}
	log.Infow("description fixup completed", "changed", changed)
}

func printUsage() {
	fmt.Println(`PTV Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                Apply all pending migrations
  down              Roll back all migrations
  step <n>          Apply n migrations (positive=up, negative=down)
  force <version>   Force set migration version (clears a dirty state)
  version           Show current migration version
  fixup             Wrap plain text descriptions in the rich text envelope
  help              Show this help

Flags:
  -config string    Path to config file (default: ./ptv.yaml)

Environment Variables:
  PTV_DATABASE_DSN  Connection string (postgres://...)

Examples:
  migrate up
  migrate step -1
  migrate fixup`)
}
