package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/marketplace-wallet-ledger/internal/platform/gateway"
	"github.com/marketplace-wallet-ledger/internal/wallet_api/middleware"
	"github.com/marketplace-wallet-ledger/internal/wallet_api/service"
)

// WebhookHandler receives payment notifications from the gateway
type WebhookHandler struct {
	topUpService service.TopUpService
	logger       *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(logger *slog.Logger, topUpService service.TopUpService) *WebhookHandler {
	return &WebhookHandler{
		topUpService: topUpService,
		logger:       logger,
	}
}

// HandlePayment processes a gateway payment notification. The payload's
// claimed status is never trusted: the payment is re-verified with the
// gateway before any credit. A 502 tells the gateway to redeliver.
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	var req PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid webhook payload", "error", err)
		RespondBadRequest(c, "Invalid webhook payload: "+err.Error())
		return
	}

	applied, err := h.topUpService.HandleWebhook(c.Request.Context(), req.TransactionID, middleware.GetCorrelationID(c))
	if err != nil {
		if errors.Is(err, gateway.ErrGatewayTimeout) || errors.Is(err, gateway.ErrGatewayUnavailable) {
			RespondBadGateway(c, "Could not verify payment with gateway")
			return
		}
		h.logger.Error("Failed to handle payment webhook", "transaction_id", req.TransactionID, "error", err)
		RespondInternalError(c)
		return
	}

	result := "ignored"
	if applied {
		result = "applied"
	}
	RespondOK(c, PaymentWebhookResponse{Result: result})
}
