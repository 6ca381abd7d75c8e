// Package postgres provides PostgreSQL implementations of the domain repositories.
// It handles all database operations while maintaining transaction safety and
// proper error handling for the wallet ledger system.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/wallet"
	"github.com/marketplace-wallet-ledger/internal/platform/persistence"
)

// WalletRepository implements the wallet.Repository interface for PostgreSQL
type WalletRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewWalletRepository(logger *slog.Logger, db *persistence.PostgresDB) wallet.Repository {
	return &WalletRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic operations
// across multiple repository calls. The returned repository will use the provided
// transaction for all database operations.
func (r *WalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	return &WalletRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetOrCreate returns the wallet for the given id, creating it on first
// access. The insert tolerates a concurrent creation of the same id: ON
// CONFLICT DO NOTHING makes the losing insert a no-op and the follow-up
// read returns the row the winner committed.
func (r *WalletRepository) GetOrCreate(ctx context.Context, id string, ownerID string, ownerType shared.OwnerType, currency string) (*wallet.Wallet, error) {
	w, err := wallet.NewWallet(ownerID, ownerType, currency)
	if err != nil {
		return nil, err
	}
	if w.ID != id {
		return nil, fmt.Errorf("wallet id %q does not match owner derivation %q", id, w.ID)
	}

	insert := `
		INSERT INTO wallets (id, owner_id, owner_type, balance, currency, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.querier.Exec(ctx, insert,
		w.ID,
		w.OwnerID,
		w.OwnerType,
		w.Balance,
		w.Currency,
		w.Version,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create wallet", "id", id, "error", err)
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a wallet by its ID
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*wallet.Wallet, error) {
	query := `
		SELECT id, owner_id, owner_type, balance, currency, version, created_at, updated_at
		FROM wallets
		WHERE id = $1
	`

	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&w.ID,
		&w.OwnerID,
		&w.OwnerType,
		&w.Balance,
		&w.Currency,
		&w.Version,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{WalletID: id}
		}
		r.logger.Error("Failed to get wallet", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &w, nil
}

// Update persists a mutated wallet using optimistic locking.
// Returns ErrConcurrentModification if the wallet was modified between read and update.
func (r *WalletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	query := `
		UPDATE wallets
		SET balance = $1, version = $2, updated_at = $3
		WHERE id = $4 AND version = $5
	`

	result, err := r.querier.Exec(ctx, query,
		w.Balance,
		w.Version,
		w.UpdatedAt,
		w.ID,
		w.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update wallet", "id", w.ID, "error", err)
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	if result.RowsAffected() == 0 {
		return wallet.ErrConcurrentModification{WalletID: w.ID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the wallet and returns its current state.
// This must be used within a transaction when mutating the balance.
func (r *WalletRepository) LockForUpdate(ctx context.Context, id string) (*wallet.Wallet, error) {
	query := `
		SELECT id, owner_id, owner_type, balance, currency, version, created_at, updated_at
		FROM wallets
		WHERE id = $1
		FOR UPDATE
	`

	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&w.ID,
		&w.OwnerID,
		&w.OwnerType,
		&w.Balance,
		&w.Currency,
		&w.Version,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{WalletID: id}
		}
		r.logger.Error("Failed to lock wallet for update", "id", id, "error", err)
		return nil, fmt.Errorf("failed to lock wallet for update: %w", err)
	}

	return &w, nil
}
