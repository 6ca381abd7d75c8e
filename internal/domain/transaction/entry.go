package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
)

// Entry is one record in a wallet's append-only transaction history.
// Entries become immutable once their status leaves PENDING; corrections
// are made with new offsetting entries, never by editing history.
type Entry struct {
	TransactionID uuid.UUID                `json:"transaction_id" bson:"transaction_id"`
	WalletID      string                   `json:"wallet_id" bson:"wallet_id"`
	Type          shared.TransactionType   `json:"type" bson:"type"`
	Amount        int64                    `json:"amount" bson:"amount"` // Stored in cents/minor units
	Currency      string                   `json:"currency" bson:"currency"`
	BalanceAfter  int64                    `json:"balance_after" bson:"balance_after"`
	Description   string                   `json:"description,omitempty" bson:"description,omitempty"`
	ReferenceID   string                   `json:"reference_id,omitempty" bson:"reference_id,omitempty"`
	RelatedEntity *shared.RelatedEntity    `json:"related_entity,omitempty" bson:"related_entity,omitempty"`
	CorrelationID string                   `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	Status        shared.TransactionStatus `json:"status" bson:"status"`
	FailureReason string                   `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	CreatedAt     time.Time                `json:"created_at" bson:"created_at"`
	ProcessedAt   *time.Time               `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
}
