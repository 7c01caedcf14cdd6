// Package main is the entry point for the bookkeeping refresh worker.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/bookkeeping/config"
	"github.com/finance-tracker/bookkeeping/internal/infra/db"
	"github.com/finance-tracker/bookkeeping/internal/infra/dependency"
	"github.com/finance-tracker/bookkeeping/internal/infra/worker"
	"github.com/finance-tracker/bookkeeping/internal/integration/adapters"
	"github.com/finance-tracker/bookkeeping/internal/integration/cache"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	logger.Info("Starting bookkeeping worker",
		"interval", cfg.Worker.Interval.String(),
		"concurrency", cfg.Worker.Concurrency,
		"categorize", cfg.Worker.Categorize,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.NewPostgresConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	if err := database.Migrate(); err != nil {
		logger.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = cache.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, running without category cache", "error", err)
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	// The worker owns the consuming side of the learning queue.
	var learningBus *adapters.AMQPLearningBus
	if cfg.Learning.AMQPURL != "" {
		learningBus, err = adapters.NewAMQPLearningBus(&cfg.Learning)
		if err != nil {
			logger.Warn("Learning broker unavailable, not consuming corrections", "error", err)
			learningBus = nil
		} else {
			defer func() { _ = learningBus.Close() }()
		}
	}

	injector := dependency.NewInjector(cfg, database.DB(), redisClient, learningBus)

	var wg sync.WaitGroup

	if learningBus != nil && injector.LearningRepo != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := learningBus.Consume(ctx, injector.LearningRepo); err != nil {
				logger.Error("Learning consumer stopped", "error", err)
			}
		}()
	}

	var categorizer worker.Categorizer
	if cfg.Worker.Categorize {
		categorizer = injector.RunCategorization
	}
	refresher := worker.NewRefresher(
		injector.TransactionRepo,
		injector.DetectRecurring,
		injector.GetPerformance,
		categorizer,
		cfg.Worker.Concurrency,
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		refresher.Run(ctx, cfg.Worker.Interval, cfg.Worker.RunOnStart)
	}()

	<-ctx.Done()
	logger.Info("Shutting down worker...")
	wg.Wait()
	logger.Info("Worker shutdown complete")
}
