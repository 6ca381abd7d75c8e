// Package ledger is the only code allowed to mutate wallet balances. Every
// operation runs as a single PostgreSQL transaction: the wallet row is
// locked, the mutation validated and applied, and the resulting transaction
// entry written to the outbox before commit.
package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/marketplace-wallet-ledger/internal/domain/escrow"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/topup"
	"github.com/marketplace-wallet-ledger/internal/domain/transaction"
	"github.com/marketplace-wallet-ledger/internal/domain/wallet"
)

// Engine exposes every balance-mutating operation of the ledger. There is
// deliberately no standalone primitive for recording a history entry: each
// operation writes its own completed entry to the outbox inside the same
// transaction as the balance change, so an entry can never exist without
// the movement it describes.
type Engine interface {
	// Credit adds funds to a wallet, creating it lazily on first use
	Credit(ctx context.Context, params CreditParams) (*transaction.Entry, error)

	// Debit removes spendable funds from an existing wallet
	Debit(ctx context.Context, params DebitParams) (*transaction.Entry, error)

	// ProcessTopUp applies a verified gateway payment exactly once. A
	// duplicate gateway transaction id is a successful no-op outcome, not
	// an error.
	ProcessTopUp(ctx context.Context, params TopUpParams) (*TopUpOutcome, error)

	// CreateHold debits the payer and creates an escrow hold atomically
	CreateHold(ctx context.Context, params HoldParams) (*escrow.Hold, error)

	// ReleaseHold credits the held amount to the payee. Safe under
	// concurrent and repeated calls: the first transition wins, and any
	// later release or refund of a settled hold is a no-op outcome
	// carrying the state that won.
	ReleaseHold(ctx context.Context, params SettleParams) (*SettlementOutcome, error)

	// RefundHold returns the held amount to the payer, recording the
	// reason. Same no-op semantics on a settled hold as ReleaseHold.
	RefundHold(ctx context.Context, params SettleParams) (*SettlementOutcome, error)
}

// CreditParams describes a credit to a wallet identified by its owner
type CreditParams struct {
	OwnerID       string
	OwnerType     shared.OwnerType
	Amount        int64
	Currency      string
	Type          shared.TransactionType
	Description   string
	ReferenceID   string
	RelatedEntity *shared.RelatedEntity
	CorrelationID string
}

// DebitParams describes a debit from an existing wallet
type DebitParams struct {
	OwnerID       string
	OwnerType     shared.OwnerType
	Amount        int64
	Currency      string
	Type          shared.TransactionType
	Description   string
	ReferenceID   string
	RelatedEntity *shared.RelatedEntity
	CorrelationID string
}

// TopUpParams carries a gateway payment that has been verified as successful
type TopUpParams struct {
	GatewayTransactionID string
	OwnerID              string
	OwnerType            shared.OwnerType
	Amount               int64
	Currency             string
	Reference            string
	CorrelationID        string
}

// TopUpOutcome reports what a top-up application did. Applied is false when
// the gateway transaction id had already been claimed; Previous then carries
// the original credit record and Wallet the current balance.
type TopUpOutcome struct {
	Applied  bool
	Wallet   *wallet.Wallet
	Entry    *transaction.Entry
	Previous *topup.UsedTransaction
}

// HoldParams describes an escrow hold between two owners
type HoldParams struct {
	ContractID    string
	FromOwnerID   string
	FromOwnerType shared.OwnerType
	ToOwnerID     string
	ToOwnerType   shared.OwnerType
	Amount        int64
	Currency      string
	CorrelationID string
}

// SettleParams identifies the hold to release or refund
type SettleParams struct {
	HoldID        uuid.UUID
	Reason        string
	CorrelationID string
}

// SettlementOutcome reports a release or refund. Applied is false when the
// hold was already settled before this call; Hold then carries the terminal
// state that won, which may be the opposite of the one requested.
type SettlementOutcome struct {
	Applied bool
	Hold    *escrow.Hold
}
