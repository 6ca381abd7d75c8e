package shared

import "errors"

var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrCurrencyMismatch       = errors.New("currency does not match wallet currency")
)

// TransactionType defines possible ledger transaction operations
type TransactionType string

const (
	TransactionTypeDeposit       TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal    TransactionType = "WITHDRAWAL"
	TransactionTypePayment       TransactionType = "PAYMENT"
	TransactionTypeRefund        TransactionType = "REFUND"
	TransactionTypeEscrowHold    TransactionType = "ESCROW_HOLD"
	TransactionTypeEscrowRelease TransactionType = "ESCROW_RELEASE"
)

// TransactionStatus defines transaction processing states
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// OwnerType identifies the kind of entity a wallet belongs to
type OwnerType string

const (
	OwnerTypeUser   OwnerType = "user"
	OwnerTypeAgency OwnerType = "agency"
)

// RelatedEntityType is the closed set of entities a transaction may be
// caused by. Transactions carry a typed reference instead of a free-form
// metadata map.
type RelatedEntityType string

const (
	RelatedEntityContract     RelatedEntityType = "contract"
	RelatedEntityProject      RelatedEntityType = "project"
	RelatedEntityTask         RelatedEntityType = "task"
	RelatedEntitySubscription RelatedEntityType = "subscription"
)

// RelatedEntity ties a transaction to the entity that caused it
type RelatedEntity struct {
	Type RelatedEntityType `json:"type" bson:"type"`
	ID   string            `json:"id" bson:"id"`
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// ValidTransactionType reports whether t is a known transaction type
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypePayment,
		TransactionTypeRefund, TransactionTypeEscrowHold, TransactionTypeEscrowRelease:
		return true
	}
	return false
}
