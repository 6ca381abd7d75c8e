package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/marketplace-wallet-ledger/internal/domain/topup"
	"github.com/marketplace-wallet-ledger/internal/domain/wallet"
	"github.com/marketplace-wallet-ledger/internal/ledger"
	"github.com/marketplace-wallet-ledger/internal/platform/gateway"
)

// TopUpServiceImpl implements the TopUpService interface
type TopUpServiceImpl struct {
	gatewayClient gateway.Client
	intentRepo    topup.IntentRepository
	engine        ledger.Engine
	logger        *slog.Logger
}

// NewTopUpService creates a new top-up service
func NewTopUpService(
	logger *slog.Logger,
	gatewayClient gateway.Client,
	intentRepo topup.IntentRepository,
	engine ledger.Engine,
) TopUpService {
	return &TopUpServiceImpl{
		gatewayClient: gatewayClient,
		intentRepo:    intentRepo,
		engine:        engine,
		logger:        logger,
	}
}

// InitiateTopUp starts a checkout with the gateway and records the intent.
// The intent row is what later lets verification and webhook delivery
// resolve the target wallet from structured columns.
func (s *TopUpServiceImpl) InitiateTopUp(ctx context.Context, params InitiateTopUpParams) (*InitiateTopUpResult, error) {
	if params.Amount <= 0 {
		return nil, wallet.ErrInvalidAmount
	}

	logger := s.logger
	if params.CorrelationID != "" {
		logger = s.logger.With("correlation_id", params.CorrelationID)
	}

	walletID := wallet.WalletID(params.OwnerType, params.OwnerID)
	reference := topup.NewReference(walletID)

	result, err := s.gatewayClient.Initiate(ctx, params.Amount, params.Currency, reference, params.ReturnURL)
	if err != nil {
		logger.Error("Gateway initiation failed", "wallet_id", walletID, "amount", params.Amount, "error", err)
		return nil, err
	}

	intent, err := topup.NewIntent(result.GatewayTransactionID, walletID, params.OwnerID, params.OwnerType, params.Amount, params.Currency, reference)
	if err != nil {
		return nil, err
	}

	if err := s.intentRepo.Create(ctx, intent); err != nil {
		return nil, err
	}

	logger.Info("Top-up initiated",
		"gateway_transaction_id", intent.GatewayTransactionID,
		"wallet_id", walletID,
		"amount", params.Amount,
	)

	return &InitiateTopUpResult{
		Intent:     intent,
		PaymentURL: result.PaymentURL,
	}, nil
}

// VerifyTopUp re-checks the payment with the gateway and credits the wallet
// when it settled successfully. An unreachable or timed-out gateway reports
// PENDING so the caller retries later; it is never reported as success.
func (s *TopUpServiceImpl) VerifyTopUp(ctx context.Context, gatewayTransactionID, correlationID string) (*VerifyTopUpResult, error) {
	logger := s.logger
	if correlationID != "" {
		logger = s.logger.With("correlation_id", correlationID)
	}

	intent, err := s.intentRepo.GetByGatewayTransactionID(ctx, gatewayTransactionID)
	if err != nil {
		return nil, err
	}

	verification, err := s.gatewayClient.Verify(ctx, gatewayTransactionID)
	if err != nil {
		if errors.Is(err, gateway.ErrGatewayTimeout) || errors.Is(err, gateway.ErrGatewayUnavailable) {
			logger.Warn("Gateway unreachable during verification, reporting pending",
				"gateway_transaction_id", gatewayTransactionID,
				"error", err,
			)
			return &VerifyTopUpResult{Status: TopUpStatusPending}, nil
		}
		return nil, err
	}

	return s.settleVerified(ctx, logger, intent, verification, correlationID)
}

// HandleWebhook applies a gateway notification. The webhook payload is
// never trusted: the payment is re-verified with the gateway before any
// credit. Returns true when this call applied the credit.
func (s *TopUpServiceImpl) HandleWebhook(ctx context.Context, gatewayTransactionID, correlationID string) (bool, error) {
	logger := s.logger
	if correlationID != "" {
		logger = s.logger.With("correlation_id", correlationID)
	}

	intent, err := s.intentRepo.GetByGatewayTransactionID(ctx, gatewayTransactionID)
	if err != nil {
		if errors.Is(err, topup.ErrIntentNotFound{GatewayTransactionID: gatewayTransactionID}) {
			logger.Warn("Webhook for unknown gateway transaction, ignoring",
				"gateway_transaction_id", gatewayTransactionID,
			)
			return false, nil
		}
		return false, err
	}

	verification, err := s.gatewayClient.Verify(ctx, gatewayTransactionID)
	if err != nil {
		// Let the gateway redeliver the webhook
		return false, err
	}

	result, err := s.settleVerified(ctx, logger, intent, verification, correlationID)
	if err != nil {
		return false, err
	}
	return result.Applied, nil
}

// settleVerified is where the poll and webhook paths converge. The ledger's
// idempotency claim makes the credit at-most-once no matter how many callers
// race through here.
func (s *TopUpServiceImpl) settleVerified(ctx context.Context, logger *slog.Logger, intent *topup.Intent, verification *gateway.VerifyResult, correlationID string) (*VerifyTopUpResult, error) {
	switch verification.Status {
	case gateway.StatusSuccess:
		amount := intent.Amount
		if verification.Amount > 0 {
			amount = verification.Amount
		}
		currency := intent.Currency
		if verification.Currency != "" {
			currency = verification.Currency
		}

		outcome, err := s.engine.ProcessTopUp(ctx, ledger.TopUpParams{
			GatewayTransactionID: intent.GatewayTransactionID,
			OwnerID:              intent.OwnerID,
			OwnerType:            intent.OwnerType,
			Amount:               amount,
			Currency:             currency,
			Reference:            intent.Reference,
			CorrelationID:        correlationID,
		})
		if err != nil {
			return nil, err
		}

		return &VerifyTopUpResult{
			Status:           TopUpStatusSuccess,
			Applied:          outcome.Applied,
			AlreadyProcessed: !outcome.Applied,
			Wallet:           outcome.Wallet,
		}, nil

	case gateway.StatusPending:
		return &VerifyTopUpResult{Status: TopUpStatusPending}, nil

	default:
		if intent.Status == topup.IntentStatusPending {
			if err := s.intentRepo.UpdateStatus(ctx, intent.GatewayTransactionID, topup.IntentStatusFailed); err != nil {
				logger.Error("Failed to mark top-up intent failed",
					"gateway_transaction_id", intent.GatewayTransactionID,
					"error", err,
				)
			}
		}
		logger.Info("Gateway reports payment failed",
			"gateway_transaction_id", intent.GatewayTransactionID,
			"raw_status", verification.RawStatus,
		)
		return &VerifyTopUpResult{Status: TopUpStatusFailed}, nil
	}
}
