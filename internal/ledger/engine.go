package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/marketplace-wallet-ledger/internal/domain/escrow"
	"github.com/marketplace-wallet-ledger/internal/domain/outbox"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/topup"
	"github.com/marketplace-wallet-ledger/internal/domain/transaction"
	"github.com/marketplace-wallet-ledger/internal/domain/wallet"
)

// TxRunner executes a function inside a single database transaction.
// *persistence.PostgresDB satisfies it.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type engine struct {
	pgDB       TxRunner
	walletRepo wallet.Repository
	holdRepo   escrow.Repository
	usedRepo   topup.UsedTransactionRepository
	intentRepo topup.IntentRepository
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

// NewEngine wires the ledger engine over its store handles. All handles are
// injected so the same engine serves both the API process and the
// settlement processor.
func NewEngine(
	pgDB TxRunner,
	walletRepo wallet.Repository,
	holdRepo escrow.Repository,
	usedRepo topup.UsedTransactionRepository,
	intentRepo topup.IntentRepository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) Engine {
	return &engine{
		pgDB:       pgDB,
		walletRepo: walletRepo,
		holdRepo:   holdRepo,
		usedRepo:   usedRepo,
		intentRepo: intentRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

func (e *engine) opLogger(correlationID string) *slog.Logger {
	if correlationID == "" {
		return e.logger
	}
	return e.logger.With("correlation_id", correlationID)
}

// completedEntry builds the history record for a mutation that has been
// applied to the locked wallet.
func completedEntry(w *wallet.Wallet, txType shared.TransactionType, amount int64, description, referenceID string, related *shared.RelatedEntity, correlationID string) *transaction.Entry {
	now := time.Now()
	return &transaction.Entry{
		TransactionID: uuid.New(),
		WalletID:      w.ID,
		Type:          txType,
		Amount:        amount,
		Currency:      w.Currency,
		BalanceAfter:  w.Balance,
		Description:   description,
		ReferenceID:   referenceID,
		RelatedEntity: related,
		CorrelationID: correlationID,
		Status:        shared.TransactionStatusCompleted,
		CreatedAt:     now,
		ProcessedAt:   &now,
	}
}

// appendOutbox stages the entry for projection and fan-out inside the
// caller's transaction.
func (e *engine) appendOutbox(ctx context.Context, tx pgx.Tx, entry *transaction.Entry) error {
	message, err := outbox.NewMessage(entry)
	if err != nil {
		return err
	}
	return e.outboxRepo.WithTx(tx).Create(ctx, message)
}

// applyCredit locks the wallet row, validates the mutation, and persists the
// new balance. The wallet must already exist inside this transaction.
func (e *engine) applyCredit(ctx context.Context, tx pgx.Tx, walletID string, amount int64, currency string) (*wallet.Wallet, error) {
	walletRepo := e.walletRepo.WithTx(tx)

	w, err := walletRepo.LockForUpdate(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if currency != "" && w.Currency != currency {
		return nil, shared.ErrCurrencyMismatch
	}
	if err := w.Credit(amount); err != nil {
		return nil, err
	}
	if err := walletRepo.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (e *engine) applyDebit(ctx context.Context, tx pgx.Tx, walletID string, amount int64, currency string) (*wallet.Wallet, error) {
	walletRepo := e.walletRepo.WithTx(tx)

	w, err := walletRepo.LockForUpdate(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if currency != "" && w.Currency != currency {
		return nil, shared.ErrCurrencyMismatch
	}
	if err := w.Debit(amount); err != nil {
		return nil, err
	}
	if err := walletRepo.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}
