package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/marketplace-wallet-ledger/internal/domain/topup"
	"github.com/marketplace-wallet-ledger/internal/platform/persistence"
)

// UsedTransactionRepository implements topup.UsedTransactionRepository for PostgreSQL
type UsedTransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewUsedTransactionRepository creates a new PostgreSQL used-transaction repository
func NewUsedTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) topup.UsedTransactionRepository {
	return &UsedTransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction. The claim must always run
// inside the transaction that applies the corresponding credit.
func (r *UsedTransactionRepository) WithTx(tx pgx.Tx) topup.UsedTransactionRepository {
	return &UsedTransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Claim atomically registers a gateway transaction id. ON CONFLICT DO
// NOTHING turns a duplicate into zero affected rows rather than an error,
// which is reported to the caller as claimed=false.
func (r *UsedTransactionRepository) Claim(ctx context.Context, used *topup.UsedTransaction) (bool, error) {
	query := `
		INSERT INTO used_transaction_ids (gateway_transaction_id, wallet_id, amount, reference, used_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (gateway_transaction_id) DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query,
		used.GatewayTransactionID,
		used.WalletID,
		used.Amount,
		used.Reference,
		used.UsedAt,
	)
	if err != nil {
		r.logger.Error("Failed to claim gateway transaction id",
			"gateway_transaction_id", used.GatewayTransactionID,
			"error", err,
		)
		return false, fmt.Errorf("failed to claim gateway transaction id: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// GetByGatewayTransactionID retrieves the record of an applied transaction.
// Returns nil when the id has never been claimed.
func (r *UsedTransactionRepository) GetByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*topup.UsedTransaction, error) {
	query := `
		SELECT gateway_transaction_id, wallet_id, amount, reference, used_at
		FROM used_transaction_ids
		WHERE gateway_transaction_id = $1
	`

	var used topup.UsedTransaction
	err := r.querier.QueryRow(ctx, query, gatewayTransactionID).Scan(
		&used.GatewayTransactionID,
		&used.WalletID,
		&used.Amount,
		&used.Reference,
		&used.UsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Never claimed
		}
		r.logger.Error("Failed to get used transaction id",
			"gateway_transaction_id", gatewayTransactionID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to get used transaction id: %w", err)
	}

	return &used, nil
}
