package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/topup"
	"github.com/marketplace-wallet-ledger/internal/domain/wallet"
	"github.com/marketplace-wallet-ledger/internal/platform/gateway"
	"github.com/marketplace-wallet-ledger/internal/wallet_api/middleware"
	"github.com/marketplace-wallet-ledger/internal/wallet_api/service"
)

// TopUpHandler handles HTTP requests for the top-up lifecycle
type TopUpHandler struct {
	topUpService service.TopUpService
	logger       *slog.Logger
}

// NewTopUpHandler creates a new top-up handler
func NewTopUpHandler(logger *slog.Logger, topUpService service.TopUpService) *TopUpHandler {
	return &TopUpHandler{
		topUpService: topUpService,
		logger:       logger,
	}
}

// Initiate starts a checkout with the payment gateway
func (h *TopUpHandler) Initiate(c *gin.Context) {
	var req InitiateTopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.topUpService.InitiateTopUp(c.Request.Context(), service.InitiateTopUpParams{
		OwnerID:       req.OwnerID,
		OwnerType:     shared.OwnerType(req.OwnerType),
		Amount:        req.Amount,
		Currency:      req.Currency,
		ReturnURL:     req.ReturnURL,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidAmount) {
			RespondBadRequest(c, "Amount must be positive")
			return
		}
		if errors.Is(err, gateway.ErrGatewayTimeout) || errors.Is(err, gateway.ErrGatewayUnavailable) {
			RespondBadGateway(c, "Payment gateway is unreachable, try again later")
			return
		}
		h.logger.Error("Failed to initiate top-up", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, InitiateTopUpResponse{
		GatewayTransactionID: result.Intent.GatewayTransactionID,
		PaymentURL:           result.PaymentURL,
		Reference:            result.Intent.Reference,
		Status:               string(result.Intent.Status),
	})
}

// Verify re-checks a payment with the gateway and applies it if settled.
// A pending outcome means the caller should poll again; an unreachable
// gateway is reported as pending, never as success.
func (h *TopUpHandler) Verify(c *gin.Context) {
	gatewayTransactionID := c.Param("id")
	if gatewayTransactionID == "" {
		RespondBadRequest(c, "Gateway transaction ID is required")
		return
	}

	result, err := h.topUpService.VerifyTopUp(c.Request.Context(), gatewayTransactionID, middleware.GetCorrelationID(c))
	if err != nil {
		if errors.Is(err, topup.ErrIntentNotFound{GatewayTransactionID: gatewayTransactionID}) {
			RespondNotFound(c, "Top-up not found")
			return
		}
		h.logger.Error("Failed to verify top-up", "gateway_transaction_id", gatewayTransactionID, "error", err)
		RespondInternalError(c)
		return
	}

	response := VerifyTopUpResponse{
		Status:           string(result.Status),
		Applied:          result.Applied,
		AlreadyProcessed: result.AlreadyProcessed,
	}
	if result.Wallet != nil {
		w := mapWalletToResponse(result.Wallet)
		response.Wallet = &w
	}
	RespondOK(c, response)
}
