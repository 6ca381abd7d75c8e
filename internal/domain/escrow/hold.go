package escrow

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	// ErrInvalidHoldState is returned when a release or refund finds the
	// hold in a state that is neither held nor terminal. Settled holds are
	// not an error: settling them again, in either direction, is a no-op.
	ErrInvalidHoldState = errors.New("hold is not in a settleable state")
	ErrInvalidAmount    = errors.New("hold amount must be positive")
	ErrEmptyContractID  = errors.New("contract id cannot be empty")
	ErrSameWallet       = errors.New("payer and payee wallets must differ")
)

// HoldStatus is the escrow hold state machine: held is the only
// non-terminal state; released and refunded are terminal and mutually
// exclusive.
type HoldStatus string

const (
	HoldStatusHeld     HoldStatus = "HELD"
	HoldStatusReleased HoldStatus = "RELEASED"
	HoldStatusRefunded HoldStatus = "REFUNDED"
)

// Hold is funds debited from a payer but not yet credited to a payee,
// pending contract resolution. The paired debit happens atomically with
// hold creation, so a hold row always has its funds secured.
type Hold struct {
	ID           uuid.UUID  `json:"id"`
	ContractID   string     `json:"contract_id"`
	FromWalletID string     `json:"from_wallet_id"`
	ToWalletID   string     `json:"to_wallet_id"`
	Amount       int64      `json:"amount"` // Stored in cents/minor units
	Currency     string     `json:"currency"`
	Status       HoldStatus `json:"status"`
	Reason       string     `json:"reason,omitempty"` // Refund reason, set once
	CreatedAt    time.Time  `json:"created_at"`
	HeldAt       time.Time  `json:"held_at"`
	ReleasedAt   *time.Time `json:"released_at,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`
}

// NewHold creates a hold in the held state
func NewHold(contractID, fromWalletID, toWalletID string, amount int64, currency string) (*Hold, error) {
	if contractID == "" {
		return nil, ErrEmptyContractID
	}
	if fromWalletID == toWalletID {
		return nil, ErrSameWallet
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Hold{
		ID:           uuid.New(),
		ContractID:   contractID,
		FromWalletID: fromWalletID,
		ToWalletID:   toWalletID,
		Amount:       amount,
		Currency:     currency,
		Status:       HoldStatusHeld,
		CreatedAt:    now,
		HeldAt:       now,
	}, nil
}

// Settled reports whether the hold has reached a terminal state
func (h *Hold) Settled() bool {
	return h.Status == HoldStatusReleased || h.Status == HoldStatusRefunded
}
