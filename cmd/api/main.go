// Package main is the entry point for the bookkeeping API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/bookkeeping/config"
	"github.com/finance-tracker/bookkeeping/internal/infra/db"
	"github.com/finance-tracker/bookkeeping/internal/infra/dependency"
	"github.com/finance-tracker/bookkeeping/internal/integration/adapters"
	"github.com/finance-tracker/bookkeeping/internal/integration/cache"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	slog.Info("Starting bookkeeping API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.NewPostgresConnection(ctx, &cfg.Database)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := database.Migrate(); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// The category cache is optional; without Redis categories are read from the database.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = cache.NewClient(ctx, &cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable, running without category cache", "error", err)
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	var learningBus *adapters.AMQPLearningBus
	if cfg.Learning.AMQPURL != "" {
		learningBus, err = adapters.NewAMQPLearningBus(&cfg.Learning)
		if err != nil {
			slog.Warn("Learning broker unavailable, recording corrections in-process", "error", err)
			learningBus = nil
		} else {
			defer func() { _ = learningBus.Close() }()
		}
	}

	injector := dependency.NewInjector(cfg, database.DB(), redisClient, learningBus)
	engine := injector.Router.Setup(cfg.Server.Environment)

	// Drop expired rate limit entries once per window.
	cleanupInterval := cfg.Server.RateLimitWindow
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				injector.RateLimiter.Cleanup()
			}
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return
	}

	slog.Info("Server exited properly")
}
