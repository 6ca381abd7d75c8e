package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketplace-wallet-ledger/internal/domain/escrow"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/transaction"
	"github.com/marketplace-wallet-ledger/internal/domain/wallet"
	"github.com/marketplace-wallet-ledger/internal/wallet_api/service"
)

// WalletHandler handles HTTP requests for wallet read operations
type WalletHandler struct {
	walletService service.WalletService
	logger        *slog.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(logger *slog.Logger, walletService service.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		logger:        logger,
	}
}

// ownerParams extracts and validates the owner path parameters
func ownerParams(c *gin.Context) (shared.OwnerType, string, bool) {
	ownerType := shared.OwnerType(c.Param("owner_type"))
	if ownerType != shared.OwnerTypeUser && ownerType != shared.OwnerTypeAgency {
		RespondBadRequest(c, "Owner type must be user or agency")
		return "", "", false
	}
	ownerID := c.Param("owner_id")
	if ownerID == "" {
		RespondBadRequest(c, "Owner ID is required")
		return "", "", false
	}
	return ownerType, ownerID, true
}

// GetByOwner retrieves a wallet with its active escrow holds, returning 404
// if no money has ever moved for this owner
func (h *WalletHandler) GetByOwner(c *gin.Context) {
	ownerType, ownerID, ok := ownerParams(c)
	if !ok {
		return
	}

	w, holds, err := h.walletService.GetWallet(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		var notFound wallet.ErrWalletNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Wallet not found")
			return
		}
		h.logger.Error("Failed to get wallet", "owner_type", string(ownerType), "owner_id", ownerID, "error", err)
		RespondInternalError(c)
		return
	}

	holdResponses := make([]HoldResponse, 0, len(holds))
	for _, hold := range holds {
		holdResponses = append(holdResponses, mapHoldToResponse(hold))
	}

	RespondOK(c, WalletDetailResponse{
		Wallet:      mapWalletToResponse(w),
		ActiveHolds: holdResponses,
	})
}

// GetTransactions retrieves paginated transaction history for a wallet
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	ownerType, ownerID, ok := ownerParams(c)
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	entries, total, err := h.walletService.GetTransactionHistory(
		c.Request.Context(),
		ownerType,
		ownerID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to get transaction history", "owner_type", string(ownerType), "owner_id", ownerID, "error", err)
		RespondInternalError(c)
		return
	}

	transactions := make([]TransactionResponse, 0, len(entries))
	for _, entry := range entries {
		transactions = append(transactions, mapEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, http.StatusOK, transactions, pagination.Page, pagination.PerPage, int(total))
}

// mapWalletToResponse maps a wallet entity to a wallet response DTO
func mapWalletToResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID,
		OwnerID:   w.OwnerID,
		OwnerType: string(w.OwnerType),
		Balance:   w.Balance,
		Currency:  w.Currency,
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
		UpdatedAt: w.UpdatedAt.Format(time.RFC3339),
	}
}

// mapHoldToResponse maps an escrow hold to a hold response DTO
func mapHoldToResponse(hold *escrow.Hold) HoldResponse {
	response := HoldResponse{
		ID:           hold.ID.String(),
		ContractID:   hold.ContractID,
		FromWalletID: hold.FromWalletID,
		ToWalletID:   hold.ToWalletID,
		Amount:       hold.Amount,
		Currency:     hold.Currency,
		Status:       string(hold.Status),
		Reason:       hold.Reason,
		CreatedAt:    hold.CreatedAt.Format(time.RFC3339),
	}
	if hold.ReleasedAt != nil {
		response.ReleasedAt = hold.ReleasedAt.Format(time.RFC3339)
	}
	if hold.RefundedAt != nil {
		response.RefundedAt = hold.RefundedAt.Format(time.RFC3339)
	}
	return response
}

// mapEntryToResponse maps a transaction entry to a transaction response DTO
func mapEntryToResponse(entry *transaction.Entry) TransactionResponse {
	response := TransactionResponse{
		TransactionID: entry.TransactionID.String(),
		WalletID:      entry.WalletID,
		Type:          string(entry.Type),
		Amount:        entry.Amount,
		Currency:      entry.Currency,
		BalanceAfter:  entry.BalanceAfter,
		Description:   entry.Description,
		ReferenceID:   entry.ReferenceID,
		Status:        string(entry.Status),
		FailureReason: entry.FailureReason,
		CreatedAt:     entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.RelatedEntity != nil {
		response.RelatedEntity = &RelatedEntityResponse{
			Type: string(entry.RelatedEntity.Type),
			ID:   entry.RelatedEntity.ID,
		}
	}
	if entry.ProcessedAt != nil {
		response.ProcessedAt = entry.ProcessedAt.Format(time.RFC3339)
	}
	return response
}
