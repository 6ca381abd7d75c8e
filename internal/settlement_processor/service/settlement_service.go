package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/marketplace-wallet-ledger/internal/domain/escrow"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/ledger"
)

type SettlementServiceImpl struct {
	engine ledger.Engine
	logger *slog.Logger
}

func NewSettlementService(engine ledger.Engine, logger *slog.Logger) SettlementService {
	return &SettlementServiceImpl{
		engine: engine,
		logger: logger,
	}
}

// SettleContract maps a contract resolution onto the escrow engine: a
// completed contract releases the hold to the payee, a cancelled one refunds
// the payer. A hold that is already settled, in either direction, comes back
// as a no-op outcome and is acknowledged. Outcomes that can never succeed on
// retry (unknown hold, unknown event type, a hold in an unexpected state)
// are logged and consumed; everything else is returned for redelivery.
func (s *SettlementServiceImpl) SettleContract(ctx context.Context, event *shared.ContractEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Settling contract",
		"event_id", event.EventID.String(),
		"contract_id", event.ContractID,
		"hold_id", event.HoldID.String(),
		"type", string(event.Type),
	)

	params := ledger.SettleParams{
		HoldID:        event.HoldID,
		Reason:        event.Reason,
		CorrelationID: event.CorrelationID,
	}

	var outcome *ledger.SettlementOutcome
	var err error
	switch event.Type {
	case shared.ContractEventCompleted:
		outcome, err = s.engine.ReleaseHold(ctx, params)
	case shared.ContractEventCancelled:
		outcome, err = s.engine.RefundHold(ctx, params)
	default:
		logger.Error("Unknown contract event type, dropping event",
			"event_id", event.EventID.String(),
			"type", string(event.Type),
		)
		return nil // Acknowledge, a replay cannot fix the type
	}

	if err != nil {
		if errors.Is(err, escrow.ErrHoldNotFound{HoldID: event.HoldID}) {
			logger.Error("Contract event references unknown hold, dropping event",
				"event_id", event.EventID.String(),
				"hold_id", event.HoldID.String(),
			)
			return nil
		}
		if errors.Is(err, escrow.ErrInvalidHoldState) {
			logger.Error("Hold in an unexpected state, dropping event",
				"event_id", event.EventID.String(),
				"hold_id", event.HoldID.String(),
			)
			return nil
		}
		return err // Retriable, offset stays uncommitted
	}

	if !outcome.Applied {
		logger.Info("Contract event replay ignored, hold already settled",
			"event_id", event.EventID.String(),
			"hold_id", event.HoldID.String(),
			"status", string(outcome.Hold.Status),
		)
	}
	return nil
}
