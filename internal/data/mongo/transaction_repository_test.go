package mongo

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/transaction"
)

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

func testEntry(txID uuid.UUID) *transaction.Entry {
	return &transaction.Entry{
		TransactionID: txID,
		WalletID:      "user_u-42",
		Type:          shared.TransactionTypeDeposit,
		Amount:        5000,
		Currency:      "USD",
		BalanceAfter:  5000,
		ReferenceID:   "gw-txn-1",
		CorrelationID: "corr-1",
		Status:        shared.TransactionStatusCompleted,
		CreatedAt:     time.Now(),
	}
}

func TestNewTransactionRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewTransactionRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &TransactionRepository{}, repo)
}

func TestTransactionRepository_Create(t *testing.T) {
	txID := uuid.New()
	entry := testEntry(txID)

	tests := []struct {
		name          string
		setupMocks    func(m *MockTransactionRepository)
		expectedError error
	}{
		{
			name: "successful creation",
			setupMocks: func(m *MockTransactionRepository) {
				m.On("Create", mock.Anything, entry).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "duplicate entry",
			setupMocks: func(m *MockTransactionRepository) {
				m.On("Create", mock.Anything, entry).Return(transaction.ErrDuplicateEntry{TransactionID: txID})
			},
			expectedError: transaction.ErrDuplicateEntry{TransactionID: txID},
		},
		{
			name: "database error",
			setupMocks: func(m *MockTransactionRepository) {
				m.On("Create", mock.Anything, entry).Return(errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockTransactionRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			err := mockRepo.Create(ctx, entry)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTransactionRepository_GetByTransactionID(t *testing.T) {
	txID := uuid.New()
	entry := testEntry(txID)

	tests := []struct {
		name          string
		setupMocks    func(m *MockTransactionRepository)
		expectedEntry *transaction.Entry
		expectedError error
	}{
		{
			name: "entry found",
			setupMocks: func(m *MockTransactionRepository) {
				m.On("GetByTransactionID", mock.Anything, txID).Return(entry, nil)
			},
			expectedEntry: entry,
			expectedError: nil,
		},
		{
			name: "entry not found",
			setupMocks: func(m *MockTransactionRepository) {
				m.On("GetByTransactionID", mock.Anything, txID).Return(nil, transaction.ErrEntryNotFound{TransactionID: txID})
			},
			expectedEntry: nil,
			expectedError: transaction.ErrEntryNotFound{TransactionID: txID},
		},
		{
			name: "database error",
			setupMocks: func(m *MockTransactionRepository) {
				m.On("GetByTransactionID", mock.Anything, txID).Return(nil, errors.New("db error"))
			},
			expectedEntry: nil,
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockTransactionRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			result, err := mockRepo.GetByTransactionID(ctx, txID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedEntry, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTransactionRepository_GetByWalletID(t *testing.T) {
	entries := []*transaction.Entry{testEntry(uuid.New()), testEntry(uuid.New())}

	tests := []struct {
		name            string
		setupMocks      func(m *MockTransactionRepository)
		expectedEntries []*transaction.Entry
		expectedError   error
	}{
		{
			name: "entries found",
			setupMocks: func(m *MockTransactionRepository) {
				m.On("GetByWalletID", mock.Anything, "user_u-42", 10, 0).Return(entries, nil)
			},
			expectedEntries: entries,
			expectedError:   nil,
		},
		{
			name: "empty history",
			setupMocks: func(m *MockTransactionRepository) {
				m.On("GetByWalletID", mock.Anything, "user_u-42", 10, 0).Return([]*transaction.Entry{}, nil)
			},
			expectedEntries: []*transaction.Entry{},
			expectedError:   nil,
		},
		{
			name: "database error",
			setupMocks: func(m *MockTransactionRepository) {
				m.On("GetByWalletID", mock.Anything, "user_u-42", 10, 0).Return(nil, errors.New("db error"))
			},
			expectedEntries: nil,
			expectedError:   errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockTransactionRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			result, err := mockRepo.GetByWalletID(ctx, "user_u-42", 10, 0)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedEntries, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

var _ transaction.Repository = (*MockTransactionRepository)(nil)
