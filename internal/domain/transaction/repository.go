package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository manages transaction history persistence with pagination support
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Entry, error)
	GetByReferenceID(ctx context.Context, referenceID string) (*Entry, error)
	GetByWalletID(ctx context.Context, walletID string, limit, offset int) ([]*Entry, error)
	CountByWalletID(ctx context.Context, walletID string) (int64, error)
	GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*Entry, error)
}

// ErrEntryNotFound indicates missing transaction entry
type ErrEntryNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "transaction entry not found: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrEntryNotFound
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	// A zero target TransactionID matches any ErrEntryNotFound
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrDuplicateEntry indicates transaction uniqueness violation
type ErrDuplicateEntry struct {
	TransactionID uuid.UUID
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate transaction entry: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrDuplicateEntry
func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}
