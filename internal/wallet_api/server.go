package wallet_api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketplace-wallet-ledger/internal/config"
	"github.com/marketplace-wallet-ledger/internal/wallet_api/handler"
	"github.com/marketplace-wallet-ledger/internal/wallet_api/service"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	walletService service.WalletService,
	topUpService service.TopUpService,
	escrowService service.EscrowService,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	walletHandler := handler.NewWalletHandler(log, walletService)
	topUpHandler := handler.NewTopUpHandler(log, topUpService)
	escrowHandler := handler.NewEscrowHandler(log, escrowService)
	webhookHandler := handler.NewWebhookHandler(log, topUpService)

	setupRouter(log, httpRouter, walletHandler, topUpHandler, escrowHandler, webhookHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
