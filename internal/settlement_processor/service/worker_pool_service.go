package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolSettlementService runs settlements on a bounded worker pool so a
// burst of contract resolutions cannot exhaust database connections.
type WorkerPoolSettlementService struct {
	baseService SettlementService
	pool        *ants.Pool
	logger      *slog.Logger
	// Protects the in-flight results map
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolSettlementService(
	baseService SettlementService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolSettlementService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolSettlementService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// SettleContract submits the event to the worker pool and waits for the
// outcome, so the caller's offset commit still reflects the real result.
func (s *WorkerPoolSettlementService) SettleContract(ctx context.Context, event *shared.ContractEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Submitting contract settlement to worker pool",
		"event_id", event.EventID.String(),
		"hold_id", event.HoldID.String(),
	)

	resultChan := make(chan error, 1)

	eventID := event.EventID.String()
	s.mu.Lock()
	s.results[eventID] = resultChan
	s.mu.Unlock()

	// Copy the event to avoid data races with the caller
	eventCopy := *event

	err := s.pool.Submit(func() {
		err := s.baseService.SettleContract(ctx, &eventCopy)

		resultChan <- err

		s.mu.Lock()
		delete(s.results, eventID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		s.mu.Lock()
		delete(s.results, eventID)
		close(resultChan)
		s.mu.Unlock()

		logger.Error("Failed to submit contract settlement to worker pool",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolSettlementService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolSettlementService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolSettlementService) Capacity() int {
	return s.pool.Cap()
}
