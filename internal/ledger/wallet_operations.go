package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/topup"
	"github.com/marketplace-wallet-ledger/internal/domain/transaction"
	"github.com/marketplace-wallet-ledger/internal/domain/wallet"
)

// Credit adds funds to the owner's wallet, creating it on first use. The
// lazy creation and the credit commit as one unit.
func (e *engine) Credit(ctx context.Context, params CreditParams) (*transaction.Entry, error) {
	logger := e.opLogger(params.CorrelationID)
	walletID := wallet.WalletID(params.OwnerType, params.OwnerID)

	if !shared.ValidTransactionType(params.Type) {
		return nil, shared.ErrInvalidTransactionType
	}

	var entry *transaction.Entry
	err := e.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		walletRepo := e.walletRepo.WithTx(tx)
		if _, err := walletRepo.GetOrCreate(ctx, walletID, params.OwnerID, params.OwnerType, params.Currency); err != nil {
			return err
		}

		w, err := e.applyCredit(ctx, tx, walletID, params.Amount, params.Currency)
		if err != nil {
			return err
		}

		entry = completedEntry(w, params.Type, params.Amount, params.Description, params.ReferenceID, params.RelatedEntity, params.CorrelationID)
		return e.appendOutbox(ctx, tx, entry)
	})
	if err != nil {
		logger.Error("Credit failed", "wallet_id", walletID, "amount", params.Amount, "error", err)
		return nil, err
	}

	logger.Info("Wallet credited",
		"wallet_id", walletID,
		"amount", params.Amount,
		"balance_after", entry.BalanceAfter,
		"transaction_id", entry.TransactionID.String(),
	)
	return entry, nil
}

// Debit removes spendable funds from the owner's wallet. The wallet must
// already exist; debiting a wallet that was never credited is a NotFound.
func (e *engine) Debit(ctx context.Context, params DebitParams) (*transaction.Entry, error) {
	logger := e.opLogger(params.CorrelationID)
	walletID := wallet.WalletID(params.OwnerType, params.OwnerID)

	if !shared.ValidTransactionType(params.Type) {
		return nil, shared.ErrInvalidTransactionType
	}

	var entry *transaction.Entry
	err := e.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		w, err := e.applyDebit(ctx, tx, walletID, params.Amount, params.Currency)
		if err != nil {
			return err
		}

		entry = completedEntry(w, params.Type, params.Amount, params.Description, params.ReferenceID, params.RelatedEntity, params.CorrelationID)
		return e.appendOutbox(ctx, tx, entry)
	})
	if err != nil {
		logger.Error("Debit failed", "wallet_id", walletID, "amount", params.Amount, "error", err)
		return nil, err
	}

	logger.Info("Wallet debited",
		"wallet_id", walletID,
		"amount", params.Amount,
		"balance_after", entry.BalanceAfter,
		"transaction_id", entry.TransactionID.String(),
	)
	return entry, nil
}

// ProcessTopUp credits a verified gateway payment at most once. The
// idempotency claim, the credit, the history entry, and the intent
// settlement all commit in the same transaction, so a crash between any two
// of them cannot split a top-up.
func (e *engine) ProcessTopUp(ctx context.Context, params TopUpParams) (*TopUpOutcome, error) {
	logger := e.opLogger(params.CorrelationID)
	walletID := wallet.WalletID(params.OwnerType, params.OwnerID)

	outcome := &TopUpOutcome{}
	err := e.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		usedRepo := e.usedRepo.WithTx(tx)
		walletRepo := e.walletRepo.WithTx(tx)

		claimed, err := usedRepo.Claim(ctx, &topup.UsedTransaction{
			GatewayTransactionID: params.GatewayTransactionID,
			WalletID:             walletID,
			Amount:               params.Amount,
			Reference:            params.Reference,
			UsedAt:               time.Now(),
		})
		if err != nil {
			return err
		}

		if !claimed {
			// Duplicate delivery. Report the original credit and the
			// current balance without touching anything.
			previous, err := usedRepo.GetByGatewayTransactionID(ctx, params.GatewayTransactionID)
			if err != nil {
				return err
			}
			w, err := walletRepo.GetByID(ctx, previous.WalletID)
			if err != nil {
				return err
			}
			outcome.Applied = false
			outcome.Previous = previous
			outcome.Wallet = w
			return nil
		}

		if _, err := walletRepo.GetOrCreate(ctx, walletID, params.OwnerID, params.OwnerType, params.Currency); err != nil {
			return err
		}

		w, err := e.applyCredit(ctx, tx, walletID, params.Amount, params.Currency)
		if err != nil {
			return err
		}

		entry := completedEntry(w, shared.TransactionTypeDeposit, params.Amount,
			"Wallet top-up", params.GatewayTransactionID, nil, params.CorrelationID)
		if err := e.appendOutbox(ctx, tx, entry); err != nil {
			return err
		}

		// Every caller resolves the wallet through the intent row first, so
		// a missing intent here means the initiation record was lost. Fail
		// the transaction and let the caller retry.
		if err := e.intentRepo.WithTx(tx).UpdateStatus(ctx, params.GatewayTransactionID, topup.IntentStatusSettled); err != nil {
			return err
		}

		outcome.Applied = true
		outcome.Wallet = w
		outcome.Entry = entry
		return nil
	})
	if err != nil {
		logger.Error("Top-up processing failed",
			"gateway_transaction_id", params.GatewayTransactionID,
			"wallet_id", walletID,
			"error", err,
		)
		return nil, err
	}

	if outcome.Applied {
		logger.Info("Top-up applied",
			"gateway_transaction_id", params.GatewayTransactionID,
			"wallet_id", walletID,
			"amount", params.Amount,
			"balance_after", outcome.Wallet.Balance,
		)
	} else {
		logger.Info("Duplicate top-up ignored",
			"gateway_transaction_id", params.GatewayTransactionID,
			"wallet_id", outcome.Previous.WalletID,
			"original_amount", outcome.Previous.Amount,
		)
	}
	return outcome, nil
}
