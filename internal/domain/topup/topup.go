// Package topup holds the records that make externally-triggered credits
// safe: the write-once used-transaction registry that guards against double
// crediting, and the intent created at initiation time so verification and
// webhook paths can resolve the target wallet from a structured field
// instead of parsing it back out of a reference string.
package topup

import (
	"errors"
	"fmt"
	"time"

	"github.com/marketplace-wallet-ledger/internal/domain/shared"
)

var ErrEmptyGatewayTransactionID = errors.New("gateway transaction id cannot be empty")

// UsedTransaction records that a gateway transaction id has been applied.
// Rows are write-once; existence is the sole gate against duplicate credits.
type UsedTransaction struct {
	GatewayTransactionID string    `json:"gateway_transaction_id"`
	WalletID             string    `json:"wallet_id"`
	Amount               int64     `json:"amount"` // Stored in cents/minor units
	Reference            string    `json:"reference"`
	UsedAt               time.Time `json:"used_at"`
}

// IntentStatus tracks a top-up intent through its lifecycle
type IntentStatus string

const (
	IntentStatusPending IntentStatus = "PENDING"
	IntentStatusSettled IntentStatus = "SETTLED"
	IntentStatusFailed  IntentStatus = "FAILED"
)

// Intent is persisted when a top-up is initiated with the gateway. The
// wallet id and owner are stored as their own indexed columns, so the
// webhook path never reconstructs them from the delimited reference string.
type Intent struct {
	GatewayTransactionID string           `json:"gateway_transaction_id"`
	WalletID             string           `json:"wallet_id"`
	OwnerID              string           `json:"owner_id"`
	OwnerType            shared.OwnerType `json:"owner_type"`
	Amount               int64            `json:"amount"` // Stored in cents/minor units
	Currency             string           `json:"currency"`
	Reference            string           `json:"reference"`
	Status               IntentStatus     `json:"status"`
	CreatedAt            time.Time        `json:"created_at"`
	SettledAt            *time.Time       `json:"settled_at,omitempty"`
}

// NewReference builds the opaque correlation string handed to the gateway at
// initiation. Nothing is ever parsed back out of it.
func NewReference(walletID string) string {
	return fmt.Sprintf("topup_%s_%d", walletID, time.Now().UnixNano())
}

// NewIntent creates a pending top-up intent
func NewIntent(gatewayTransactionID, walletID, ownerID string, ownerType shared.OwnerType, amount int64, currency, reference string) (*Intent, error) {
	if gatewayTransactionID == "" {
		return nil, ErrEmptyGatewayTransactionID
	}

	return &Intent{
		GatewayTransactionID: gatewayTransactionID,
		WalletID:             walletID,
		OwnerID:              ownerID,
		OwnerType:            ownerType,
		Amount:               amount,
		Currency:             currency,
		Reference:            reference,
		Status:               IntentStatusPending,
		CreatedAt:            time.Now(),
	}, nil
}
