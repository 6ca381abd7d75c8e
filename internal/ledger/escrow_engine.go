package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/marketplace-wallet-ledger/internal/domain/escrow"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/wallet"
)

// CreateHold debits the payer and creates the hold in one transaction. A
// hold row can never exist without its funds having been secured, and a
// failed debit leaves no hold behind. Both wallets are materialized here so
// settlement later only ever touches existing rows.
func (e *engine) CreateHold(ctx context.Context, params HoldParams) (*escrow.Hold, error) {
	logger := e.opLogger(params.CorrelationID)

	fromWalletID := wallet.WalletID(params.FromOwnerType, params.FromOwnerID)
	toWalletID := wallet.WalletID(params.ToOwnerType, params.ToOwnerID)

	hold, err := escrow.NewHold(params.ContractID, fromWalletID, toWalletID, params.Amount, params.Currency)
	if err != nil {
		return nil, err
	}

	err = e.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		walletRepo := e.walletRepo.WithTx(tx)
		if _, err := walletRepo.GetOrCreate(ctx, fromWalletID, params.FromOwnerID, params.FromOwnerType, params.Currency); err != nil {
			return err
		}
		if _, err := walletRepo.GetOrCreate(ctx, toWalletID, params.ToOwnerID, params.ToOwnerType, params.Currency); err != nil {
			return err
		}

		w, err := e.applyDebit(ctx, tx, fromWalletID, params.Amount, params.Currency)
		if err != nil {
			return err
		}

		if err := e.holdRepo.WithTx(tx).Create(ctx, hold); err != nil {
			return err
		}

		entry := completedEntry(w, shared.TransactionTypeEscrowHold, params.Amount,
			"Funds held in escrow", hold.ID.String(),
			&shared.RelatedEntity{Type: shared.RelatedEntityContract, ID: params.ContractID},
			params.CorrelationID)
		return e.appendOutbox(ctx, tx, entry)
	})
	if err != nil {
		logger.Error("Escrow hold creation failed",
			"contract_id", params.ContractID,
			"from_wallet_id", fromWalletID,
			"amount", params.Amount,
			"error", err,
		)
		return nil, err
	}

	logger.Info("Escrow hold created",
		"hold_id", hold.ID.String(),
		"contract_id", params.ContractID,
		"from_wallet_id", fromWalletID,
		"to_wallet_id", toWalletID,
		"amount", params.Amount,
	)
	return hold, nil
}

// ReleaseHold credits the held amount to the payee
func (e *engine) ReleaseHold(ctx context.Context, params SettleParams) (*SettlementOutcome, error) {
	return e.settle(ctx, params, escrow.HoldStatusReleased)
}

// RefundHold returns the held amount to the payer
func (e *engine) RefundHold(ctx context.Context, params SettleParams) (*SettlementOutcome, error) {
	return e.settle(ctx, params, escrow.HoldStatusRefunded)
}

// settle moves a hold to a terminal state and credits the receiving wallet.
// The conditional transition is the race arbiter: out of any number of
// concurrent release and refund attempts exactly one wins, and only the
// winner moves money. Any settle call that finds the hold already in a
// terminal state, whether the same transition or the opposite one, is a
// successful no-op reporting the state that won.
func (e *engine) settle(ctx context.Context, params SettleParams, to escrow.HoldStatus) (*SettlementOutcome, error) {
	logger := e.opLogger(params.CorrelationID)

	outcome := &SettlementOutcome{}
	err := e.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		holdRepo := e.holdRepo.WithTx(tx)

		won, err := holdRepo.TransitionFromHeld(ctx, params.HoldID, to, params.Reason)
		if err != nil {
			return err
		}

		hold, err := holdRepo.GetByID(ctx, params.HoldID)
		if err != nil {
			return err
		}

		if !won {
			if hold.Settled() {
				outcome.Applied = false
				outcome.Hold = hold
				return nil
			}
			// A held hold that lost the transition should be impossible
			return escrow.ErrInvalidHoldState
		}

		var w *wallet.Wallet
		var entryType shared.TransactionType
		var description string
		if to == escrow.HoldStatusReleased {
			w, err = e.applyCredit(ctx, tx, hold.ToWalletID, hold.Amount, hold.Currency)
			entryType = shared.TransactionTypeEscrowRelease
			description = "Escrow released"
		} else {
			w, err = e.applyCredit(ctx, tx, hold.FromWalletID, hold.Amount, hold.Currency)
			entryType = shared.TransactionTypeRefund
			description = "Escrow refunded"
			if params.Reason != "" {
				description = "Escrow refunded: " + params.Reason
			}
		}
		if err != nil {
			return err
		}

		entry := completedEntry(w, entryType, hold.Amount,
			description, hold.ID.String(),
			&shared.RelatedEntity{Type: shared.RelatedEntityContract, ID: hold.ContractID},
			params.CorrelationID)
		if err := e.appendOutbox(ctx, tx, entry); err != nil {
			return err
		}

		outcome.Applied = true
		outcome.Hold = hold
		return nil
	})
	if err != nil {
		logger.Error("Escrow settlement failed",
			"hold_id", params.HoldID.String(),
			"target_status", string(to),
			"error", err,
		)
		return nil, err
	}

	if outcome.Applied {
		logger.Info("Escrow hold settled",
			"hold_id", params.HoldID.String(),
			"status", string(to),
			"amount", outcome.Hold.Amount,
		)
	} else {
		logger.Info("Escrow settlement ignored, hold already settled",
			"hold_id", params.HoldID.String(),
			"requested_status", string(to),
			"hold_status", string(outcome.Hold.Status),
		)
	}
	return outcome, nil
}
