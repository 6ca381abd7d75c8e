package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/marketplace-wallet-ledger/internal/domain/escrow"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/topup"
	"github.com/marketplace-wallet-ledger/internal/domain/transaction"
	"github.com/marketplace-wallet-ledger/internal/domain/wallet"
	"github.com/marketplace-wallet-ledger/internal/ledger"
	"github.com/marketplace-wallet-ledger/internal/platform/gateway"
)

// Mock implementations of the service dependencies

type MockLedgerEngine struct {
	mock.Mock
}

func (m *MockLedgerEngine) Credit(ctx context.Context, params ledger.CreditParams) (*transaction.Entry, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Entry), args.Error(1)
}

func (m *MockLedgerEngine) Debit(ctx context.Context, params ledger.DebitParams) (*transaction.Entry, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Entry), args.Error(1)
}

func (m *MockLedgerEngine) ProcessTopUp(ctx context.Context, params ledger.TopUpParams) (*ledger.TopUpOutcome, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TopUpOutcome), args.Error(1)
}

func (m *MockLedgerEngine) CreateHold(ctx context.Context, params ledger.HoldParams) (*escrow.Hold, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrow.Hold), args.Error(1)
}

func (m *MockLedgerEngine) ReleaseHold(ctx context.Context, params ledger.SettleParams) (*ledger.SettlementOutcome, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.SettlementOutcome), args.Error(1)
}

func (m *MockLedgerEngine) RefundHold(ctx context.Context, params ledger.SettleParams) (*ledger.SettlementOutcome, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.SettlementOutcome), args.Error(1)
}

type MockGatewayClient struct {
	mock.Mock
}

func (m *MockGatewayClient) Initiate(ctx context.Context, amount int64, currency, reference, returnURL string) (*gateway.InitiateResult, error) {
	args := m.Called(ctx, amount, currency, reference, returnURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.InitiateResult), args.Error(1)
}

func (m *MockGatewayClient) Verify(ctx context.Context, gatewayTransactionID string) (*gateway.VerifyResult, error) {
	args := m.Called(ctx, gatewayTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.VerifyResult), args.Error(1)
}

type MockIntentRepository struct {
	mock.Mock
}

func (m *MockIntentRepository) Create(ctx context.Context, intent *topup.Intent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}

func (m *MockIntentRepository) GetByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*topup.Intent, error) {
	args := m.Called(ctx, gatewayTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*topup.Intent), args.Error(1)
}

func (m *MockIntentRepository) UpdateStatus(ctx context.Context, gatewayTransactionID string, status topup.IntentStatus) error {
	args := m.Called(ctx, gatewayTransactionID, status)
	return args.Error(0)
}

func (m *MockIntentRepository) WithTx(tx pgx.Tx) topup.IntentRepository {
	args := m.Called(tx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(topup.IntentRepository)
}

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetOrCreate(ctx context.Context, id string, ownerID string, ownerType shared.OwnerType, currency string) (*wallet.Wallet, error) {
	args := m.Called(ctx, id, ownerID, ownerType, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id string) (*wallet.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWalletRepository) LockForUpdate(ctx context.Context, id string) (*wallet.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	args := m.Called(tx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(wallet.Repository)
}

type MockHoldRepository struct {
	mock.Mock
}

func (m *MockHoldRepository) Create(ctx context.Context, hold *escrow.Hold) error {
	args := m.Called(ctx, hold)
	return args.Error(0)
}

func (m *MockHoldRepository) GetByID(ctx context.Context, id uuid.UUID) (*escrow.Hold, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrow.Hold), args.Error(1)
}

func (m *MockHoldRepository) GetByContractID(ctx context.Context, contractID string) ([]*escrow.Hold, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*escrow.Hold), args.Error(1)
}

func (m *MockHoldRepository) GetActiveByWalletID(ctx context.Context, walletID string) ([]*escrow.Hold, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*escrow.Hold), args.Error(1)
}

func (m *MockHoldRepository) TransitionFromHeld(ctx context.Context, id uuid.UUID, to escrow.HoldStatus, reason string) (bool, error) {
	args := m.Called(ctx, id, to, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockHoldRepository) WithTx(tx pgx.Tx) escrow.Repository {
	args := m.Called(tx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(escrow.Repository)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, entry *transaction.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*transaction.Entry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Entry), args.Error(1)
}

func (m *MockTransactionRepository) GetByReferenceID(ctx context.Context, referenceID string) (*transaction.Entry, error) {
	args := m.Called(ctx, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Entry), args.Error(1)
}

func (m *MockTransactionRepository) GetByWalletID(ctx context.Context, walletID string, limit, offset int) ([]*transaction.Entry, error) {
	args := m.Called(ctx, walletID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Entry), args.Error(1)
}

func (m *MockTransactionRepository) CountByWalletID(ctx context.Context, walletID string) (int64, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*transaction.Entry, error) {
	args := m.Called(ctx, startTime, endTime, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Entry), args.Error(1)
}
