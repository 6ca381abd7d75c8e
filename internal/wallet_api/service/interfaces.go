package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/marketplace-wallet-ledger/internal/domain/escrow"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/topup"
	"github.com/marketplace-wallet-ledger/internal/domain/transaction"
	"github.com/marketplace-wallet-ledger/internal/domain/wallet"
	"github.com/marketplace-wallet-ledger/internal/ledger"
)

// WalletService defines read operations over wallets and their history
type WalletService interface {
	// GetWallet retrieves the wallet and its active escrow holds
	// Returns ErrWalletNotFound if no money has ever moved for this owner
	GetWallet(ctx context.Context, ownerType shared.OwnerType, ownerID string) (*wallet.Wallet, []*escrow.Hold, error)

	// GetTransactionHistory retrieves the paginated transaction history
	// Returns entries, total count, and any error
	GetTransactionHistory(ctx context.Context, ownerType shared.OwnerType, ownerID string, page, perPage int) ([]*transaction.Entry, int64, error)
}

// InitiateTopUpParams describes a top-up initiation request
type InitiateTopUpParams struct {
	OwnerID       string
	OwnerType     shared.OwnerType
	Amount        int64
	Currency      string
	ReturnURL     string
	CorrelationID string
}

// TopUpStatus is the synchronous outcome reported to the caller
type TopUpStatus string

const (
	TopUpStatusSuccess TopUpStatus = "SUCCESS"
	TopUpStatusPending TopUpStatus = "PENDING"
	TopUpStatusFailed  TopUpStatus = "FAILED"
)

// InitiateTopUpResult carries what the caller needs to complete checkout
type InitiateTopUpResult struct {
	Intent     *topup.Intent
	PaymentURL string
}

// VerifyTopUpResult reports what verification concluded. Wallet is set when
// the credit was applied now or earlier; a gateway outage reports PENDING.
type VerifyTopUpResult struct {
	Status           TopUpStatus
	Applied          bool
	AlreadyProcessed bool
	Wallet           *wallet.Wallet
}

// TopUpService drives the top-up lifecycle against the payment gateway.
// Both the client poll path and the webhook path converge on the same
// verification and crediting flow, so whichever arrives first wins and the
// other becomes a no-op.
type TopUpService interface {
	InitiateTopUp(ctx context.Context, params InitiateTopUpParams) (*InitiateTopUpResult, error)
	VerifyTopUp(ctx context.Context, gatewayTransactionID, correlationID string) (*VerifyTopUpResult, error)

	// HandleWebhook re-verifies the referenced payment with the gateway and
	// applies it. Returns true when this call moved money, false when the
	// notification was ignored (duplicate, unknown, or unsuccessful payment).
	HandleWebhook(ctx context.Context, gatewayTransactionID, correlationID string) (bool, error)
}

// EscrowService exposes escrow hold management to the HTTP layer
type EscrowService interface {
	CreateHold(ctx context.Context, params ledger.HoldParams) (*escrow.Hold, error)
	ReleaseHold(ctx context.Context, holdID uuid.UUID, correlationID string) (*ledger.SettlementOutcome, error)
	RefundHold(ctx context.Context, holdID uuid.UUID, reason, correlationID string) (*ledger.SettlementOutcome, error)
	GetHold(ctx context.Context, holdID uuid.UUID) (*escrow.Hold, error)
	GetHoldsByContract(ctx context.Context, contractID string) ([]*escrow.Hold, error)
}
