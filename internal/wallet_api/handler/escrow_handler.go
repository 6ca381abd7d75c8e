package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/marketplace-wallet-ledger/internal/domain/escrow"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/wallet"
	"github.com/marketplace-wallet-ledger/internal/ledger"
	"github.com/marketplace-wallet-ledger/internal/wallet_api/middleware"
	"github.com/marketplace-wallet-ledger/internal/wallet_api/service"
)

// EscrowHandler handles HTTP requests for escrow hold operations
type EscrowHandler struct {
	escrowService service.EscrowService
	logger        *slog.Logger
}

// NewEscrowHandler creates a new escrow handler
func NewEscrowHandler(logger *slog.Logger, escrowService service.EscrowService) *EscrowHandler {
	return &EscrowHandler{
		escrowService: escrowService,
		logger:        logger,
	}
}

// CreateHold places funds from the payer's wallet into escrow
func (h *EscrowHandler) CreateHold(c *gin.Context) {
	var req CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	hold, err := h.escrowService.CreateHold(c.Request.Context(), ledger.HoldParams{
		ContractID:    req.ContractID,
		FromOwnerID:   req.FromOwnerID,
		FromOwnerType: shared.OwnerType(req.FromOwnerType),
		ToOwnerID:     req.ToOwnerID,
		ToOwnerType:   shared.OwnerType(req.ToOwnerType),
		Amount:        req.Amount,
		Currency:      req.Currency,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientFunds):
			RespondUnprocessable(c, "INSUFFICIENT_FUNDS", "Insufficient spendable funds for this hold")
		case errors.Is(err, escrow.ErrInvalidAmount), errors.Is(err, wallet.ErrInvalidAmount):
			RespondBadRequest(c, "Amount must be positive")
		case errors.Is(err, escrow.ErrSameWallet):
			RespondBadRequest(c, "Payer and payee must differ")
		case errors.Is(err, escrow.ErrEmptyContractID):
			RespondBadRequest(c, "Contract ID is required")
		case errors.Is(err, shared.ErrCurrencyMismatch):
			RespondUnprocessable(c, "CURRENCY_MISMATCH", "Currency does not match the payer wallet")
		default:
			h.logger.Error("Failed to create escrow hold", "contract_id", req.ContractID, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapHoldToResponse(hold))
}

// Release credits the held amount to the payee. Calling release on a hold
// that is already settled, in either direction, succeeds without moving
// money; the response reports applied=false and the state that won.
func (h *EscrowHandler) Release(c *gin.Context) {
	holdID, ok := holdIDParam(c)
	if !ok {
		return
	}

	outcome, err := h.escrowService.ReleaseHold(c.Request.Context(), holdID, middleware.GetCorrelationID(c))
	if err != nil {
		h.respondSettlementError(c, holdID, err)
		return
	}

	RespondOK(c, SettlementResponse{
		Hold:    mapHoldToResponse(outcome.Hold),
		Applied: outcome.Applied,
	})
}

// Refund returns the held amount to the payer
func (h *EscrowHandler) Refund(c *gin.Context) {
	holdID, ok := holdIDParam(c)
	if !ok {
		return
	}

	// The body is optional, the reason defaults to empty
	var req RefundHoldRequest
	_ = c.ShouldBindJSON(&req)

	outcome, err := h.escrowService.RefundHold(c.Request.Context(), holdID, req.Reason, middleware.GetCorrelationID(c))
	if err != nil {
		h.respondSettlementError(c, holdID, err)
		return
	}

	RespondOK(c, SettlementResponse{
		Hold:    mapHoldToResponse(outcome.Hold),
		Applied: outcome.Applied,
	})
}

// GetByID retrieves an escrow hold, returning 404 if it doesn't exist
func (h *EscrowHandler) GetByID(c *gin.Context) {
	holdID, ok := holdIDParam(c)
	if !ok {
		return
	}

	hold, err := h.escrowService.GetHold(c.Request.Context(), holdID)
	if err != nil {
		var notFound escrow.ErrHoldNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Escrow hold not found")
			return
		}
		h.logger.Error("Failed to get escrow hold", "hold_id", holdID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapHoldToResponse(hold))
}

// GetByContract retrieves all holds recorded for a contract
func (h *EscrowHandler) GetByContract(c *gin.Context) {
	contractID := c.Param("contract_id")
	if contractID == "" {
		RespondBadRequest(c, "Contract ID is required")
		return
	}

	holds, err := h.escrowService.GetHoldsByContract(c.Request.Context(), contractID)
	if err != nil {
		h.logger.Error("Failed to get holds for contract", "contract_id", contractID, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]HoldResponse, 0, len(holds))
	for _, hold := range holds {
		responses = append(responses, mapHoldToResponse(hold))
	}
	RespondOK(c, responses)
}

func holdIDParam(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid hold ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *EscrowHandler) respondSettlementError(c *gin.Context, holdID uuid.UUID, err error) {
	var notFound escrow.ErrHoldNotFound
	switch {
	case errors.As(err, &notFound):
		RespondNotFound(c, "Escrow hold not found")
	case errors.Is(err, escrow.ErrInvalidHoldState):
		RespondConflict(c, "INVALID_HOLD_STATE", "Hold is not in a settleable state")
	default:
		h.logger.Error("Failed to settle escrow hold", "hold_id", holdID.String(), "error", err)
		RespondInternalError(c)
	}
}
