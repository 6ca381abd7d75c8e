package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marketplace-wallet-ledger/internal/config"
	"github.com/marketplace-wallet-ledger/internal/data/mongo"
	"github.com/marketplace-wallet-ledger/internal/data/postgres"
	"github.com/marketplace-wallet-ledger/internal/ledger"
	"github.com/marketplace-wallet-ledger/internal/logger"
	"github.com/marketplace-wallet-ledger/internal/platform/gateway"
	"github.com/marketplace-wallet-ledger/internal/platform/persistence"
	"github.com/marketplace-wallet-ledger/internal/wallet_api"
	"github.com/marketplace-wallet-ledger/internal/wallet_api/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("wallet_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	walletRepo := postgres.NewWalletRepository(log, postgresDB)
	holdRepo := postgres.NewHoldRepository(log, postgresDB)
	usedRepo := postgres.NewUsedTransactionRepository(log, postgresDB)
	intentRepo := postgres.NewIntentRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	transactionRepo := mongo.NewTransactionRepository(log, mongoDB.Database())

	// Initialize the payment gateway client
	gatewayClient := gateway.NewHTTPClient(log, &cfg.Gateway)

	// Initialize the ledger engine shared by every money-moving operation
	engine := ledger.NewEngine(postgresDB, walletRepo, holdRepo, usedRepo, intentRepo, outboxRepo, log)

	// Initialize services
	walletService := service.NewWalletService(walletRepo, holdRepo, transactionRepo)
	topUpService := service.NewTopUpService(log, gatewayClient, intentRepo, engine)
	escrowService := service.NewEscrowService(engine, holdRepo)

	// Initialize REST server
	server := wallet_api.NewServer(log, cfg, walletService, topUpService, escrowService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so no request observes closed stores
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
