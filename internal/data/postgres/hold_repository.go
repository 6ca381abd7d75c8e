package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/marketplace-wallet-ledger/internal/domain/escrow"
	"github.com/marketplace-wallet-ledger/internal/platform/persistence"
)

// HoldRepository implements the escrow.Repository interface for PostgreSQL
type HoldRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewHoldRepository creates a new PostgreSQL escrow hold repository
func NewHoldRepository(logger *slog.Logger, db *persistence.PostgresDB) escrow.Repository {
	return &HoldRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *HoldRepository) WithTx(tx pgx.Tx) escrow.Repository {
	return &HoldRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const holdColumns = `id, contract_id, from_wallet_id, to_wallet_id, amount, currency, status, reason, created_at, held_at, released_at, refunded_at`

// Create stores a new escrow hold in the held state
func (r *HoldRepository) Create(ctx context.Context, hold *escrow.Hold) error {
	query := `
		INSERT INTO escrow_holds (id, contract_id, from_wallet_id, to_wallet_id, amount, currency, status, reason, created_at, held_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		hold.ID,
		hold.ContractID,
		hold.FromWalletID,
		hold.ToWalletID,
		hold.Amount,
		hold.Currency,
		hold.Status,
		hold.Reason,
		hold.CreatedAt,
		hold.HeldAt,
	)
	if err != nil {
		r.logger.Error("Failed to create escrow hold", "id", hold.ID.String(), "error", err)
		return fmt.Errorf("failed to create escrow hold: %w", err)
	}

	return nil
}

// GetByID retrieves an escrow hold by its ID
func (r *HoldRepository) GetByID(ctx context.Context, id uuid.UUID) (*escrow.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM escrow_holds WHERE id = $1`

	hold, err := r.scanHold(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, escrow.ErrHoldNotFound{HoldID: id}
		}
		r.logger.Error("Failed to get escrow hold", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get escrow hold: %w", err)
	}

	return hold, nil
}

// GetByContractID retrieves all holds securing a contract
func (r *HoldRepository) GetByContractID(ctx context.Context, contractID string) ([]*escrow.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM escrow_holds WHERE contract_id = $1 ORDER BY created_at ASC`

	rows, err := r.querier.Query(ctx, query, contractID)
	if err != nil {
		r.logger.Error("Failed to get escrow holds by contract", "contract_id", contractID, "error", err)
		return nil, fmt.Errorf("failed to get escrow holds by contract: %w", err)
	}
	defer rows.Close()

	return r.collectHolds(rows)
}

// GetActiveByWalletID retrieves a payer's holds still in the held state
func (r *HoldRepository) GetActiveByWalletID(ctx context.Context, walletID string) ([]*escrow.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM escrow_holds WHERE from_wallet_id = $1 AND status = $2 ORDER BY created_at ASC`

	rows, err := r.querier.Query(ctx, query, walletID, escrow.HoldStatusHeld)
	if err != nil {
		r.logger.Error("Failed to get active escrow holds", "wallet_id", walletID, "error", err)
		return nil, fmt.Errorf("failed to get active escrow holds: %w", err)
	}
	defer rows.Close()

	return r.collectHolds(rows)
}

// TransitionFromHeld conditionally moves a hold out of held. The WHERE
// clause on the current status makes the transition a compare-and-swap:
// under concurrent release and refund exactly one caller gets a row,
// the other observes false and must no-op.
func (r *HoldRepository) TransitionFromHeld(ctx context.Context, id uuid.UUID, to escrow.HoldStatus, reason string) (bool, error) {
	var query string
	now := time.Now()

	switch to {
	case escrow.HoldStatusReleased:
		query = `
			UPDATE escrow_holds
			SET status = $1, released_at = $2
			WHERE id = $3 AND status = $4
		`
	case escrow.HoldStatusRefunded:
		query = `
			UPDATE escrow_holds
			SET status = $1, refunded_at = $2, reason = $5
			WHERE id = $3 AND status = $4
		`
	default:
		return false, fmt.Errorf("invalid hold transition target: %s", to)
	}

	args := []interface{}{to, now, id, escrow.HoldStatusHeld}
	if to == escrow.HoldStatusRefunded {
		args = append(args, reason)
	}

	result, err := r.querier.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to transition escrow hold", "id", id.String(), "to", string(to), "error", err)
		return false, fmt.Errorf("failed to transition escrow hold: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *HoldRepository) scanHold(row pgx.Row) (*escrow.Hold, error) {
	var h escrow.Hold
	err := row.Scan(
		&h.ID,
		&h.ContractID,
		&h.FromWalletID,
		&h.ToWalletID,
		&h.Amount,
		&h.Currency,
		&h.Status,
		&h.Reason,
		&h.CreatedAt,
		&h.HeldAt,
		&h.ReleasedAt,
		&h.RefundedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *HoldRepository) collectHolds(rows pgx.Rows) ([]*escrow.Hold, error) {
	var holds []*escrow.Hold
	for rows.Next() {
		hold, err := r.scanHold(rows)
		if err != nil {
			r.logger.Error("Failed to scan escrow hold", "error", err)
			return nil, fmt.Errorf("failed to scan escrow hold: %w", err)
		}
		holds = append(holds, hold)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over escrow holds", "error", err)
		return nil, fmt.Errorf("error iterating over escrow holds: %w", err)
	}

	return holds, nil
}
