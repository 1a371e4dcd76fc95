// Package main provides the API server entry point for the split ledger service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/split-ledger/internal/api"
	"github.com/split-ledger/internal/config"
	"github.com/split-ledger/internal/ens"
	"github.com/split-ledger/internal/logging"
	"github.com/split-ledger/internal/registry"
	"github.com/split-ledger/internal/retry"
	"github.com/split-ledger/internal/service"
	"github.com/split-ledger/internal/storage"
)

func main() {
	fmt.Println("Split Ledger API Server")
	log.Println("Server starting...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	ctx := logging.WithLogger(context.Background(), logger)

	// Initialize database connections
	logger.Info("Connecting to databases...")

	// Connect to Postgres
	var postgres *storage.PostgresDB
	err = retry.WithBackoff(ctx, retry.DefaultConfig(), func(ctx context.Context, attempt int) error {
		var connErr error
		postgres, connErr = storage.NewPostgresDB(&cfg.Database.Postgres)
		return connErr
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	// Run migrations
	if err := storage.RunMigrations(cfg.Database.Postgres.DatabaseURL(), "migrations"); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	// Connect to Redis. Redis is a cache and a record index; the service
	// degrades to in-memory records without it.
	var redis *storage.RedisCache
	err = retry.WithBackoff(ctx, retry.DefaultConfig(), func(ctx context.Context, attempt int) error {
		var connErr error
		redis, connErr = storage.NewRedisCache(&cfg.Database.Redis)
		return connErr
	})
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, using in-memory records")
		redis = nil
	} else {
		defer redis.Close()
	}

	logger.Info("Database connections established")

	// Initialize the name resolver
	var resolverCache ens.ResultCache
	if redis != nil {
		resolverCache = redis
	}
	resolver, err := ens.NewResolver(&ens.Config{
		Endpoint:          cfg.Chain.RPCEndpoint(),
		RequestsPerSecond: cfg.Resolver.RequestsPerSecond,
		Burst:             cfg.Resolver.Burst,
		CacheTTL:          cfg.Resolver.CacheTTL,
	}, resolverCache, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize name resolver")
	}
	defer resolver.Close()

	// Initialize storage
	casClient := storage.NewCASClient(&cfg.Storage)
	gateway := storage.NewGateway(casClient, redis, logger)

	// Initialize repositories
	splitRepo := storage.NewSplitRepository(postgres)
	groupRepo := storage.NewGroupRepository(postgres)

	// Initialize services
	logger.Info("Initializing services...")

	account := os.Getenv("ACCOUNT_ADDRESS")
	dashboard := service.NewDashboardService(
		&service.Config{
			SettleDelay:      2 * time.Second,
			AutoSaveDebounce: cfg.AutoSave.Debounce,
		},
		resolver,
		registry.NewRegistry(),
		gateway,
		splitRepo,
		groupRepo,
		func() string { return account },
		logger,
	)
	defer dashboard.Stop()

	logger.Info("Services initialized")

	// Create server configuration
	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}

	server := api.NewServer(serverConfig, dashboard)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
