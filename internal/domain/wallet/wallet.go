package wallet

import (
	"errors"
	"fmt"
	"time"

	"github.com/marketplace-wallet-ledger/internal/domain/shared"
)

// Common errors
var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrEmptyOwnerID          = errors.New("owner id cannot be empty")
	ErrInvalidOwnerType      = errors.New("owner type must be user or agency")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
)

// Wallet is a single owner's balance-holding record. Held escrow funds are
// debited from Balance at hold creation, so Balance is always the spendable
// amount. Amounts are stored in minor units to keep balance arithmetic exact.
type Wallet struct {
	ID        string           `json:"id"` // Deterministic: "<owner_type>_<owner_id>"
	OwnerID   string           `json:"owner_id"`
	OwnerType shared.OwnerType `json:"owner_type"`
	Balance   int64            `json:"balance"` // Stored in cents/minor units
	Currency  string           `json:"currency"`
	Version   int              `json:"version"` // For optimistic locking
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// WalletID derives the deterministic wallet key for an owner. Owner ids may
// themselves contain underscores; only the first separator is structural.
func WalletID(ownerType shared.OwnerType, ownerID string) string {
	return fmt.Sprintf("%s_%s", ownerType, ownerID)
}

// NewWallet creates a new wallet with a zero balance
func NewWallet(ownerID string, ownerType shared.OwnerType, currency string) (*Wallet, error) {
	if ownerID == "" {
		return nil, ErrEmptyOwnerID
	}
	if ownerType != shared.OwnerTypeUser && ownerType != shared.OwnerTypeAgency {
		return nil, ErrInvalidOwnerType
	}
	if len(currency) != 3 { // Basic validation for currency code length
		return nil, ErrInvalidCurrencyFormat
	}

	now := time.Now()
	return &Wallet{
		ID:        WalletID(ownerType, ownerID),
		OwnerID:   ownerID,
		OwnerType: ownerType,
		Balance:   0,
		Currency:  currency,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Credit adds the specified amount to the wallet balance
func (w *Wallet) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	w.Balance += amount
	w.UpdatedAt = time.Now()
	w.Version++
	return nil
}

// Debit subtracts the specified amount from the wallet balance
func (w *Wallet) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if w.Balance < amount {
		return ErrInsufficientFunds
	}

	w.Balance -= amount
	w.UpdatedAt = time.Now()
	w.Version++
	return nil
}

// CanDebit checks if the wallet has sufficient spendable funds
func (w *Wallet) CanDebit(amount int64) bool {
	return w.Balance >= amount
}
