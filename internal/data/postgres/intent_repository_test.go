package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/topup"
)

func TestIntentRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &IntentRepository{querier: mock, logger: logger}

	intent := &topup.Intent{
		GatewayTransactionID: "gw-txn-1",
		WalletID:             "user_u-42",
		OwnerID:              "u-42",
		OwnerType:            shared.OwnerTypeUser,
		Amount:               5000,
		Currency:             "USD",
		Reference:            "topup_user_u-42_1",
		Status:               topup.IntentStatusPending,
		CreatedAt:            time.Now(),
	}

	mock.ExpectExec(`INSERT INTO topup_intents`).
		WithArgs(intent.GatewayTransactionID, intent.WalletID, intent.OwnerID, intent.OwnerType, intent.Amount, intent.Currency, intent.Reference, intent.Status, intent.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(ctx, intent)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntentRepository_GetByGatewayTransactionID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &IntentRepository{querier: mock, logger: logger}

	t.Run("Found", func(t *testing.T) {
		createdAt := time.Now()
		mock.ExpectQuery(`FROM topup_intents`).
			WithArgs("gw-txn-1").
			WillReturnRows(pgxmock.NewRows([]string{"gateway_transaction_id", "wallet_id", "owner_id", "owner_type", "amount", "currency", "reference", "status", "created_at", "settled_at"}).
				AddRow("gw-txn-1", "user_u-42", "u-42", shared.OwnerTypeUser, int64(5000), "USD", "topup_user_u-42_1", topup.IntentStatusPending, createdAt, nil))

		intent, err := repo.GetByGatewayTransactionID(ctx, "gw-txn-1")

		require.NoError(t, err)
		assert.Equal(t, "user_u-42", intent.WalletID)
		assert.Equal(t, "u-42", intent.OwnerID)
		assert.Equal(t, shared.OwnerTypeUser, intent.OwnerType)
		assert.Equal(t, topup.IntentStatusPending, intent.Status)
		assert.Nil(t, intent.SettledAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`FROM topup_intents`).
			WithArgs("gw-txn-unknown").
			WillReturnError(pgx.ErrNoRows)

		intent, err := repo.GetByGatewayTransactionID(ctx, "gw-txn-unknown")

		assert.Nil(t, intent)
		assert.ErrorIs(t, err, topup.ErrIntentNotFound{GatewayTransactionID: "gw-txn-unknown"})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIntentRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &IntentRepository{querier: mock, logger: logger}

	t.Run("SettledRecordsSettlementTime", func(t *testing.T) {
		mock.ExpectExec(`UPDATE topup_intents SET status = \$1, settled_at = \$2`).
			WithArgs(topup.IntentStatusSettled, pgxmock.AnyArg(), "gw-txn-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateStatus(ctx, "gw-txn-1", topup.IntentStatusSettled)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failed", func(t *testing.T) {
		mock.ExpectExec(`UPDATE topup_intents SET status = \$1 WHERE`).
			WithArgs(topup.IntentStatusFailed, "gw-txn-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateStatus(ctx, "gw-txn-1", topup.IntentStatusFailed)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownIntent", func(t *testing.T) {
		mock.ExpectExec(`UPDATE topup_intents SET status = \$1 WHERE`).
			WithArgs(topup.IntentStatusFailed, "gw-txn-unknown").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(ctx, "gw-txn-unknown", topup.IntentStatusFailed)

		assert.ErrorIs(t, err, topup.ErrIntentNotFound{GatewayTransactionID: "gw-txn-unknown"})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
