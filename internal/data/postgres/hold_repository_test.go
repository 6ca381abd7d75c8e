package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace-wallet-ledger/internal/domain/escrow"
)

func holdRows(h *escrow.Hold) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "contract_id", "from_wallet_id", "to_wallet_id", "amount", "currency", "status", "reason", "created_at", "held_at", "released_at", "refunded_at"}).
		AddRow(h.ID, h.ContractID, h.FromWalletID, h.ToWalletID, h.Amount, h.Currency, h.Status, h.Reason, h.CreatedAt, h.HeldAt, h.ReleasedAt, h.RefundedAt)
}

func testHold() *escrow.Hold {
	now := time.Now()
	return &escrow.Hold{
		ID:           uuid.New(),
		ContractID:   "contract-1",
		FromWalletID: "user_payer",
		ToWalletID:   "agency_payee",
		Amount:       5000,
		Currency:     "USD",
		Status:       escrow.HoldStatusHeld,
		CreatedAt:    now,
		HeldAt:       now,
	}
}

func TestHoldRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &HoldRepository{querier: mock, logger: logger}
	hold := testHold()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO escrow_holds`).
			WithArgs(hold.ID, hold.ContractID, hold.FromWalletID, hold.ToWalletID, hold.Amount, hold.Currency, hold.Status, hold.Reason, hold.CreatedAt, hold.HeldAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, hold)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectExec(`INSERT INTO escrow_holds`).
			WithArgs(hold.ID, hold.ContractID, hold.FromWalletID, hold.ToWalletID, hold.Amount, hold.Currency, hold.Status, hold.Reason, hold.CreatedAt, hold.HeldAt).
			WillReturnError(dbErr)

		err := repo.Create(ctx, hold)

		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHoldRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &HoldRepository{querier: mock, logger: logger}
	hold := testHold()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`FROM escrow_holds WHERE id`).
			WithArgs(hold.ID).
			WillReturnRows(holdRows(hold))

		got, err := repo.GetByID(ctx, hold.ID)

		require.NoError(t, err)
		assert.Equal(t, hold.ID, got.ID)
		assert.Equal(t, escrow.HoldStatusHeld, got.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		missing := uuid.New()
		mock.ExpectQuery(`FROM escrow_holds WHERE id`).
			WithArgs(missing).
			WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetByID(ctx, missing)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, escrow.ErrHoldNotFound{HoldID: missing})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHoldRepository_GetActiveByWalletID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &HoldRepository{querier: mock, logger: logger}
	hold := testHold()

	mock.ExpectQuery(`FROM escrow_holds WHERE from_wallet_id`).
		WithArgs("user_payer", escrow.HoldStatusHeld).
		WillReturnRows(holdRows(hold))

	holds, err := repo.GetActiveByWalletID(ctx, "user_payer")

	require.NoError(t, err)
	require.Len(t, holds, 1)
	assert.Equal(t, hold.ID, holds[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldRepository_TransitionFromHeld(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &HoldRepository{querier: mock, logger: logger}
	id := uuid.New()

	t.Run("ReleaseWins", func(t *testing.T) {
		mock.ExpectExec(`UPDATE escrow_holds`).
			WithArgs(escrow.HoldStatusReleased, pgxmock.AnyArg(), id, escrow.HoldStatusHeld).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		won, err := repo.TransitionFromHeld(ctx, id, escrow.HoldStatusReleased, "")

		require.NoError(t, err)
		assert.True(t, won)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadySettled", func(t *testing.T) {
		// Zero rows means the hold had already left the held state.
		mock.ExpectExec(`UPDATE escrow_holds`).
			WithArgs(escrow.HoldStatusReleased, pgxmock.AnyArg(), id, escrow.HoldStatusHeld).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		won, err := repo.TransitionFromHeld(ctx, id, escrow.HoldStatusReleased, "")

		require.NoError(t, err)
		assert.False(t, won)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RefundCarriesReason", func(t *testing.T) {
		mock.ExpectExec(`UPDATE escrow_holds`).
			WithArgs(escrow.HoldStatusRefunded, pgxmock.AnyArg(), id, escrow.HoldStatusHeld, "contract cancelled").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		won, err := repo.TransitionFromHeld(ctx, id, escrow.HoldStatusRefunded, "contract cancelled")

		require.NoError(t, err)
		assert.True(t, won)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InvalidTarget", func(t *testing.T) {
		won, err := repo.TransitionFromHeld(ctx, id, escrow.HoldStatusHeld, "")
		assert.False(t, won)
		assert.Error(t, err)
	})
}
