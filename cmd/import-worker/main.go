package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"weld-inspection-db/internal/config"
	"weld-inspection-db/internal/db"
	"weld-inspection-db/internal/logger"
	"weld-inspection-db/internal/queue"
	"weld-inspection-db/internal/storage"
	"weld-inspection-db/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting import worker")

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	if err := db.EnsureSchema(context.Background(), database); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure schema")
	}

	// Initialize Redis client
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize S3 storage
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	importWorker := worker.NewImportWorker(
		cfg,
		db.NewFileRepository(database),
		db.NewWeldRepository(database),
		s3Storage,
		redisClient,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- importWorker.Start(ctx)
	}()

	// Wait for interrupt signal or consumer failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info().Msg("Shutting down import worker...")
		cancel()
		err = <-done
	case err = <-done:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Import worker failed")
	}

	// The consumer has returned, so nothing submits to the pool any more.
	importWorker.Stop()

	log.Info().Msg("Import worker exited")
}
