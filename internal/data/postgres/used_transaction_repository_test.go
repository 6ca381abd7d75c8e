package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace-wallet-ledger/internal/domain/topup"
)

func TestUsedTransactionRepository_Claim(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &UsedTransactionRepository{querier: mock, logger: logger}

	used := &topup.UsedTransaction{
		GatewayTransactionID: "gw-txn-1",
		WalletID:             "user_u-42",
		Amount:               5000,
		Reference:            "topup_user_u-42_1",
		UsedAt:               time.Now(),
	}

	t.Run("FirstClaimWins", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO used_transaction_ids`).
			WithArgs(used.GatewayTransactionID, used.WalletID, used.Amount, used.Reference, used.UsedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		claimed, err := repo.Claim(ctx, used)

		require.NoError(t, err)
		assert.True(t, claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateIsNotAnError", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO used_transaction_ids`).
			WithArgs(used.GatewayTransactionID, used.WalletID, used.Amount, used.Reference, used.UsedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 0)) // ON CONFLICT DO NOTHING

		claimed, err := repo.Claim(ctx, used)

		require.NoError(t, err)
		assert.False(t, claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectExec(`INSERT INTO used_transaction_ids`).
			WithArgs(used.GatewayTransactionID, used.WalletID, used.Amount, used.Reference, used.UsedAt).
			WillReturnError(dbErr)

		claimed, err := repo.Claim(ctx, used)

		assert.False(t, claimed)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUsedTransactionRepository_GetByGatewayTransactionID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &UsedTransactionRepository{querier: mock, logger: logger}

	t.Run("Found", func(t *testing.T) {
		usedAt := time.Now()
		mock.ExpectQuery(`FROM used_transaction_ids`).
			WithArgs("gw-txn-1").
			WillReturnRows(pgxmock.NewRows([]string{"gateway_transaction_id", "wallet_id", "amount", "reference", "used_at"}).
				AddRow("gw-txn-1", "user_u-42", int64(5000), "topup_user_u-42_1", usedAt))

		used, err := repo.GetByGatewayTransactionID(ctx, "gw-txn-1")

		require.NoError(t, err)
		require.NotNil(t, used)
		assert.Equal(t, "user_u-42", used.WalletID)
		assert.Equal(t, int64(5000), used.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NeverClaimed", func(t *testing.T) {
		mock.ExpectQuery(`FROM used_transaction_ids`).
			WithArgs("gw-txn-unknown").
			WillReturnError(pgx.ErrNoRows)

		used, err := repo.GetByGatewayTransactionID(ctx, "gw-txn-unknown")

		require.NoError(t, err)
		assert.Nil(t, used)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
