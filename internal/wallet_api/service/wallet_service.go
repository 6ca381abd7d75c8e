package service

import (
	"context"

	"github.com/marketplace-wallet-ledger/internal/domain/escrow"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/transaction"
	"github.com/marketplace-wallet-ledger/internal/domain/wallet"
)

// WalletServiceImpl implements the WalletService interface
type WalletServiceImpl struct {
	walletRepo      wallet.Repository
	holdRepo        escrow.Repository
	transactionRepo transaction.Repository
}

// NewWalletService creates a new wallet read service
func NewWalletService(walletRepo wallet.Repository, holdRepo escrow.Repository, transactionRepo transaction.Repository) WalletService {
	return &WalletServiceImpl{
		walletRepo:      walletRepo,
		holdRepo:        holdRepo,
		transactionRepo: transactionRepo,
	}
}

// GetWallet retrieves the wallet and its active escrow holds. Wallets are
// created lazily by the first credit or hold, so an owner with no money
// movement yet has no wallet row.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, ownerType shared.OwnerType, ownerID string) (*wallet.Wallet, []*escrow.Hold, error) {
	walletID := wallet.WalletID(ownerType, ownerID)

	w, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, nil, err
	}

	holds, err := s.holdRepo.GetActiveByWalletID(ctx, walletID)
	if err != nil {
		return nil, nil, err
	}

	return w, holds, nil
}

// GetTransactionHistory retrieves the paginated transaction history for an
// owner, newest first. History is read from the projection store, which
// converges shortly after each commit.
func (s *WalletServiceImpl) GetTransactionHistory(ctx context.Context, ownerType shared.OwnerType, ownerID string, page, perPage int) ([]*transaction.Entry, int64, error) {
	walletID := wallet.WalletID(ownerType, ownerID)

	total, err := s.transactionRepo.CountByWalletID(ctx, walletID)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	entries, err := s.transactionRepo.GetByWalletID(ctx, walletID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
