package escrow

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines escrow hold persistence operations
type Repository interface {
	Create(ctx context.Context, hold *Hold) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hold, error)
	GetByContractID(ctx context.Context, contractID string) ([]*Hold, error)
	GetActiveByWalletID(ctx context.Context, walletID string) ([]*Hold, error)

	// TransitionFromHeld conditionally moves the hold out of the held state,
	// recording the transition timestamp and, for refunds, the reason. It
	// returns false without error when the hold exists but has already left
	// the held state, which lets concurrent release/refund callers race
	// safely: the first transition wins, later ones observe false.
	TransitionFromHeld(ctx context.Context, id uuid.UUID, to HoldStatus, reason string) (bool, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrHoldNotFound indicates missing escrow hold
type ErrHoldNotFound struct {
	HoldID uuid.UUID
}

func (e ErrHoldNotFound) Error() string {
	return "escrow hold not found: " + e.HoldID.String()
}
