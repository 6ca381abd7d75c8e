package topup

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// UsedTransactionRepository is the idempotency guard's persistence layer.
// Claim must run inside the same database transaction as the credit it
// protects, so a crash can never leave an id claimed without its credit.
type UsedTransactionRepository interface {
	// Claim atomically registers the gateway transaction id. It returns
	// false when a record already exists, in which case the caller must
	// treat the operation as an already-processed duplicate, not a failure.
	Claim(ctx context.Context, used *UsedTransaction) (bool, error)

	GetByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*UsedTransaction, error)
	WithTx(tx pgx.Tx) UsedTransactionRepository
}

// IntentRepository manages top-up intent persistence
type IntentRepository interface {
	Create(ctx context.Context, intent *Intent) error
	GetByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*Intent, error)
	UpdateStatus(ctx context.Context, gatewayTransactionID string, status IntentStatus) error
	WithTx(tx pgx.Tx) IntentRepository
}

// ErrIntentNotFound indicates missing top-up intent
type ErrIntentNotFound struct {
	GatewayTransactionID string
}

func (e ErrIntentNotFound) Error() string {
	return "top-up intent not found: " + e.GatewayTransactionID
}
