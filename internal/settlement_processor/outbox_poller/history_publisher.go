package outbox_poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marketplace-wallet-ledger/internal/domain/outbox"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/transaction"
	"github.com/marketplace-wallet-ledger/internal/platform/messaging/producers"
)

// HistoryPublisher projects an outbox message into the transaction history
// store and fans it out to the wallet events topic.
type HistoryPublisher interface {
	PublishTransaction(ctx context.Context, message *outbox.Message) error
}

// HistoryPublisherImpl implements HistoryPublisher
type HistoryPublisherImpl struct {
	outboxRepo      outbox.Repository
	transactionRepo transaction.Repository
	eventProducer   producers.MessagePublisher
	logger          *slog.Logger
}

// NewHistoryPublisher creates a new publisher
func NewHistoryPublisher(
	outboxRepo outbox.Repository,
	transactionRepo transaction.Repository,
	eventProducer producers.MessagePublisher,
	logger *slog.Logger,
) HistoryPublisher {
	return &HistoryPublisherImpl{
		outboxRepo:      outboxRepo,
		transactionRepo: transactionRepo,
		eventProducer:   eventProducer,
		logger:          logger,
	}
}

// PublishTransaction writes the history entry and publishes the wallet
// event. Both steps are idempotent on the transaction id, so replaying a
// message after a partial failure converges instead of duplicating.
func (p *HistoryPublisherImpl) PublishTransaction(ctx context.Context, message *outbox.Message) error {
	var entry transaction.Entry
	if err := json.Unmarshal(message.Payload, &entry); err != nil {
		p.logger.Error("Failed to unmarshal transaction entry from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if entry.CorrelationID != "" {
		logger = p.logger.With("correlation_id", entry.CorrelationID)
	}

	logger.Info("Projecting outbox message into transaction history", "outbox_id", message.ID, "transaction_id", message.TransactionID)

	err := p.transactionRepo.Create(ctx, &entry)
	if err != nil {
		if errors.Is(err, transaction.ErrDuplicateEntry{}) {
			logger.Info("Transaction entry already projected", "transaction_id", entry.TransactionID)
		} else {
			logger.Error("Failed to create transaction entry in MongoDB", "transaction_id", entry.TransactionID, "error", err)
			return fmt.Errorf("failed to create transaction entry %s: %w", entry.TransactionID, err)
		}
	}

	if err := p.eventProducer.Publish(ctx, entry.WalletID, &entry); err != nil {
		logger.Error("Failed to publish wallet event", "transaction_id", entry.TransactionID, "error", err)
		return fmt.Errorf("failed to publish wallet event for %s: %w", entry.TransactionID, err)
	}

	// Mark outbox message as processed
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("history write for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.TransactionID, message.ID, err)
	}

	logger.Info("Outbox message processed and marked as PROCESSED", "outbox_id", message.ID, "transaction_id", message.TransactionID)
	return nil
}
