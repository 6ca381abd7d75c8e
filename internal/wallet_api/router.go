package wallet_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketplace-wallet-ledger/internal/wallet_api/handler"
	"github.com/marketplace-wallet-ledger/internal/wallet_api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	walletHandler *handler.WalletHandler,
	topUpHandler *handler.TopUpHandler,
	escrowHandler *handler.EscrowHandler,
	webhookHandler *handler.WebhookHandler,
) {
	// Correlation must run first so the logger and handlers see the id
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Wallet read operations
		wallets := v1.Group("/wallets")
		{
			wallets.GET("/:owner_type/:owner_id", walletHandler.GetByOwner)
			wallets.GET("/:owner_type/:owner_id/transactions", walletHandler.GetTransactions)
		}

		// Top-up lifecycle
		topups := v1.Group("/topups")
		{
			topups.POST("", topUpHandler.Initiate)
			topups.GET("/:id/verify", topUpHandler.Verify)
		}

		// Escrow operations
		escrow := v1.Group("/escrow/holds")
		{
			escrow.POST("", escrowHandler.CreateHold)
			escrow.GET("/:id", escrowHandler.GetByID)
			escrow.POST("/:id/release", escrowHandler.Release)
			escrow.POST("/:id/refund", escrowHandler.Refund)
		}
		v1.GET("/escrow/contracts/:contract_id/holds", escrowHandler.GetByContract)

		// Gateway notifications
		v1.POST("/webhooks/payment", webhookHandler.HandlePayment)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
