package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/marketplace-wallet-ledger/internal/domain/topup"
	"github.com/marketplace-wallet-ledger/internal/platform/persistence"
)

// IntentRepository implements topup.IntentRepository for PostgreSQL
type IntentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewIntentRepository creates a new PostgreSQL top-up intent repository
func NewIntentRepository(logger *slog.Logger, db *persistence.PostgresDB) topup.IntentRepository {
	return &IntentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *IntentRepository) WithTx(tx pgx.Tx) topup.IntentRepository {
	return &IntentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create persists a new top-up intent
func (r *IntentRepository) Create(ctx context.Context, intent *topup.Intent) error {
	query := `
		INSERT INTO topup_intents (gateway_transaction_id, wallet_id, owner_id, owner_type, amount, currency, reference, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		intent.GatewayTransactionID,
		intent.WalletID,
		intent.OwnerID,
		intent.OwnerType,
		intent.Amount,
		intent.Currency,
		intent.Reference,
		intent.Status,
		intent.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create top-up intent",
			"gateway_transaction_id", intent.GatewayTransactionID,
			"wallet_id", intent.WalletID,
			"error", err,
		)
		return fmt.Errorf("failed to create top-up intent: %w", err)
	}

	return nil
}

// GetByGatewayTransactionID retrieves an intent by the gateway's transaction id
func (r *IntentRepository) GetByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*topup.Intent, error) {
	query := `
		SELECT gateway_transaction_id, wallet_id, owner_id, owner_type, amount, currency, reference, status, created_at, settled_at
		FROM topup_intents
		WHERE gateway_transaction_id = $1
	`

	var intent topup.Intent
	err := r.querier.QueryRow(ctx, query, gatewayTransactionID).Scan(
		&intent.GatewayTransactionID,
		&intent.WalletID,
		&intent.OwnerID,
		&intent.OwnerType,
		&intent.Amount,
		&intent.Currency,
		&intent.Reference,
		&intent.Status,
		&intent.CreatedAt,
		&intent.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, topup.ErrIntentNotFound{GatewayTransactionID: gatewayTransactionID}
		}
		r.logger.Error("Failed to get top-up intent",
			"gateway_transaction_id", gatewayTransactionID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to get top-up intent: %w", err)
	}

	return &intent, nil
}

// UpdateStatus moves an intent to a terminal status. Settled intents record
// the settlement time.
func (r *IntentRepository) UpdateStatus(ctx context.Context, gatewayTransactionID string, status topup.IntentStatus) error {
	var query string
	var args []interface{}

	if status == topup.IntentStatusSettled {
		query = `UPDATE topup_intents SET status = $1, settled_at = $2 WHERE gateway_transaction_id = $3`
		args = []interface{}{status, time.Now(), gatewayTransactionID}
	} else {
		query = `UPDATE topup_intents SET status = $1 WHERE gateway_transaction_id = $2`
		args = []interface{}{status, gatewayTransactionID}
	}

	result, err := r.querier.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update top-up intent status",
			"gateway_transaction_id", gatewayTransactionID,
			"status", status,
			"error", err,
		)
		return fmt.Errorf("failed to update top-up intent status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return topup.ErrIntentNotFound{GatewayTransactionID: gatewayTransactionID}
	}

	return nil
}
