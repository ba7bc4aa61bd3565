// Package main seeds the type code tables the registry resolves codes against.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ptv/internal/config"
	"ptv/internal/domain/types"
	"ptv/internal/infrastructure/storage/postgres"
	"ptv/internal/infrastructure/storage/postgres/reference_repo"
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

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log.WithComponent("seed"))

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)
	repo := reference_repo.NewTypeRepo(txm)
	rows := types.SeedRows()

	err = txm.ExecuteWriter(ctx, func(ctx context.Context) error {
		return repo.Seed(ctx, rows)
	})
	if err != nil {
		log.Fatalw("failed to seed types", "error", err)
	}

	log.Infow("seeding completed successfully", "types", len(rows))
}
