package service

import (
	"context"

	"github.com/marketplace-wallet-ledger/internal/domain/shared"
)

// SettlementService resolves escrow holds in response to contract events.
type SettlementService interface {
	SettleContract(ctx context.Context, event *shared.ContractEvent) error
}
