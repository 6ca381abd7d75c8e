package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/marketplace-wallet-ledger/internal/domain/escrow"
	"github.com/marketplace-wallet-ledger/internal/ledger"
)

// EscrowServiceImpl implements the EscrowService interface
type EscrowServiceImpl struct {
	engine   ledger.Engine
	holdRepo escrow.Repository
}

// NewEscrowService creates a new escrow service
func NewEscrowService(engine ledger.Engine, holdRepo escrow.Repository) EscrowService {
	return &EscrowServiceImpl{
		engine:   engine,
		holdRepo: holdRepo,
	}
}

func (s *EscrowServiceImpl) CreateHold(ctx context.Context, params ledger.HoldParams) (*escrow.Hold, error) {
	return s.engine.CreateHold(ctx, params)
}

func (s *EscrowServiceImpl) ReleaseHold(ctx context.Context, holdID uuid.UUID, correlationID string) (*ledger.SettlementOutcome, error) {
	return s.engine.ReleaseHold(ctx, ledger.SettleParams{
		HoldID:        holdID,
		CorrelationID: correlationID,
	})
}

func (s *EscrowServiceImpl) RefundHold(ctx context.Context, holdID uuid.UUID, reason, correlationID string) (*ledger.SettlementOutcome, error) {
	return s.engine.RefundHold(ctx, ledger.SettleParams{
		HoldID:        holdID,
		Reason:        reason,
		CorrelationID: correlationID,
	})
}

func (s *EscrowServiceImpl) GetHold(ctx context.Context, holdID uuid.UUID) (*escrow.Hold, error) {
	return s.holdRepo.GetByID(ctx, holdID)
}

func (s *EscrowServiceImpl) GetHoldsByContract(ctx context.Context, contractID string) ([]*escrow.Hold, error) {
	return s.holdRepo.GetByContractID(ctx, contractID)
}
