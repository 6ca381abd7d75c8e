package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/platform/messaging/producers"
	"github.com/marketplace-wallet-ledger/internal/settlement_processor/service"
)

// ContractEventHandler handles incoming contract resolution messages from Kafka
type ContractEventHandler struct {
	settlementService service.SettlementService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewContractEventHandler creates a new handler
func NewContractEventHandler(
	logger *slog.Logger,
	settlementService service.SettlementService,
	producer producers.DeadLetterPublisher,
) *ContractEventHandler {
	return &ContractEventHandler{
		settlementService: settlementService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages
func (h *ContractEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.ContractEvent
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal contract event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received contract event for settlement",
		"event_id", event.EventID.String(),
		"contract_id", event.ContractID,
		"hold_id", event.HoldID.String(),
		"type", string(event.Type),
	)

	if err := h.settlementService.SettleContract(ctx, &event); err != nil {
		logger.Error("Failed to settle contract",
			"event_id", event.EventID.String(),
			"hold_id", event.HoldID.String(),
			"error", err,
		)
		return fmt.Errorf("settling contract event %s failed: %w", event.EventID.String(), err)
	}

	logger.Info("Contract event settled", "event_id", event.EventID.String())
	return nil // Success, commit offset
}
