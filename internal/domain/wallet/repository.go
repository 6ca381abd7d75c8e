package wallet

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
)

// Repository defines wallet persistence operations
type Repository interface {
	// GetOrCreate returns the wallet for the given id, creating it lazily on
	// first access. Creation is idempotent under concurrent callers: exactly
	// one row is created and every caller observes it.
	GetOrCreate(ctx context.Context, id string, ownerID string, ownerType shared.OwnerType, currency string) (*Wallet, error)

	GetByID(ctx context.Context, id string) (*Wallet, error)
	Update(ctx context.Context, w *Wallet) error

	// LockForUpdate acquires a pessimistic lock for balance mutation
	LockForUpdate(ctx context.Context, id string) (*Wallet, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	WalletID string
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for wallet: " + e.WalletID
}

// ErrWalletNotFound indicates missing wallet
type ErrWalletNotFound struct {
	WalletID string
}

func (e ErrWalletNotFound) Error() string {
	return "wallet not found: " + e.WalletID
}
