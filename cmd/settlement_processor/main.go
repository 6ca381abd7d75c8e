package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/marketplace-wallet-ledger/internal/config"
	"github.com/marketplace-wallet-ledger/internal/data/mongo"
	"github.com/marketplace-wallet-ledger/internal/data/postgres"
	"github.com/marketplace-wallet-ledger/internal/ledger"
	"github.com/marketplace-wallet-ledger/internal/logger"
	"github.com/marketplace-wallet-ledger/internal/platform/messaging/consumers"
	"github.com/marketplace-wallet-ledger/internal/platform/messaging/producers"
	"github.com/marketplace-wallet-ledger/internal/platform/persistence"
	"github.com/marketplace-wallet-ledger/internal/settlement_processor/consumer"
	"github.com/marketplace-wallet-ledger/internal/settlement_processor/outbox_poller"
	"github.com/marketplace-wallet-ledger/internal/settlement_processor/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("settlement_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Settlement Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

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

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Handler should be nil-safe.

	// Initialize wallet event producer for history fan-out
	walletEventProducer, err := producers.NewWalletEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize wallet event Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize the ledger engine and settlement service
	engine := ledger.NewEngine(postgresDB, walletRepo, holdRepo, usedRepo, intentRepo, outboxRepo, log)

	settlementService := service.NewSettlementService(engine, log)

	workerPoolService, err := service.NewWorkerPoolSettlementService(
		settlementService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log.With("component", "worker_pool"),
	)
	if err != nil {
		log.Error("Failed to create worker pool service, falling back to base service", "error", err)
	} else {
		log.Info("Created worker pool settlement service", "pool_size", cfg.WorkerPool.Size)
		settlementService = workerPoolService
	}

	// Initialize contract event handler
	contractEventHandler := consumer.NewContractEventHandler(
		log,
		settlementService,
		dlqProducer,
	)

	// Initialize outbox poller
	historyPublisher := outbox_poller.NewHistoryPublisher(
		outboxRepo,
		transactionRepo,
		walletEventProducer,
		log,
	)
	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		outboxRepo,
		historyPublisher,
		log,
	)

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.ContractEventTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.ContractEventTopic, cfg.Kafka.ConsumerGroup, contractEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shutdown the worker pool if it was created
	if wpService, ok := settlementService.(*service.WorkerPoolSettlementService); ok {
		log.Info("Shutting down worker pool", "running_workers", wpService.Running())
		wpService.Shutdown()
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close Kafka producers
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}
	if err = walletEventProducer.Close(); err != nil {
		log.Error("Error closing wallet event Kafka producer", "error", err)
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Settlement Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Settlement Processor shutdown completed with errors")
	} else {
		log.Info("Settlement Processor shutdown completed successfully")
	}
}
