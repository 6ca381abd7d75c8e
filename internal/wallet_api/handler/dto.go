package handler

// InitiateTopUpRequest represents a request to start a wallet top-up
type InitiateTopUpRequest struct {
	OwnerID   string `json:"owner_id" binding:"required"`
	OwnerType string `json:"owner_type" binding:"required,oneof=user agency"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Currency  string `json:"currency" binding:"required,len=3"`
	ReturnURL string `json:"return_url" binding:"omitempty,url"`
}

// InitiateTopUpResponse carries what the client needs to complete checkout
type InitiateTopUpResponse struct {
	GatewayTransactionID string `json:"gateway_transaction_id"`
	PaymentURL           string `json:"payment_url"`
	Reference            string `json:"reference"`
	Status               string `json:"status"`
}

// VerifyTopUpResponse reports the synchronous verification outcome
type VerifyTopUpResponse struct {
	Status           string          `json:"status"`
	Applied          bool            `json:"applied"`
	AlreadyProcessed bool            `json:"already_processed,omitempty"`
	Wallet           *WalletResponse `json:"wallet,omitempty"`
}

// PaymentWebhookRequest is the gateway's notification payload. Only the
// transaction id is used; the payment is re-verified with the gateway.
type PaymentWebhookRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Status        string `json:"status,omitempty"`
	Reference     string `json:"reference,omitempty"`
}

// PaymentWebhookResponse reports how the notification was handled
type PaymentWebhookResponse struct {
	Result string `json:"result"` // "applied" or "ignored"
}

// WalletResponse represents a wallet in API responses
type WalletResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	OwnerType string `json:"owner_type"`
	Balance   int64  `json:"balance"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// WalletDetailResponse is a wallet with its active escrow holds
type WalletDetailResponse struct {
	Wallet      WalletResponse `json:"wallet"`
	ActiveHolds []HoldResponse `json:"active_holds"`
}

// CreateHoldRequest represents a request to place funds in escrow
type CreateHoldRequest struct {
	ContractID    string `json:"contract_id" binding:"required"`
	FromOwnerID   string `json:"from_owner_id" binding:"required"`
	FromOwnerType string `json:"from_owner_type" binding:"required,oneof=user agency"`
	ToOwnerID     string `json:"to_owner_id" binding:"required"`
	ToOwnerType   string `json:"to_owner_type" binding:"required,oneof=user agency"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Currency      string `json:"currency" binding:"required,len=3"`
}

// RefundHoldRequest carries the optional refund reason
type RefundHoldRequest struct {
	Reason string `json:"reason,omitempty"`
}

// HoldResponse represents an escrow hold in API responses
type HoldResponse struct {
	ID           string `json:"id"`
	ContractID   string `json:"contract_id"`
	FromWalletID string `json:"from_wallet_id"`
	ToWalletID   string `json:"to_wallet_id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
	CreatedAt    string `json:"created_at"`
	ReleasedAt   string `json:"released_at,omitempty"`
	RefundedAt   string `json:"refunded_at,omitempty"`
}

// SettlementResponse reports a release or refund outcome
type SettlementResponse struct {
	Hold    HoldResponse `json:"hold"`
	Applied bool         `json:"applied"`
}

// TransactionResponse represents a history entry in API responses
type TransactionResponse struct {
	TransactionID string                 `json:"transaction_id"`
	WalletID      string                 `json:"wallet_id"`
	Type          string                 `json:"type"`
	Amount        int64                  `json:"amount"`
	Currency      string                 `json:"currency"`
	BalanceAfter  int64                  `json:"balance_after"`
	Description   string                 `json:"description,omitempty"`
	ReferenceID   string                 `json:"reference_id,omitempty"`
	RelatedEntity *RelatedEntityResponse `json:"related_entity,omitempty"`
	Status        string                 `json:"status"`
	FailureReason string                 `json:"failure_reason,omitempty"`
	CreatedAt     string                 `json:"created_at"`
	ProcessedAt   string                 `json:"processed_at,omitempty"`
}

// RelatedEntityResponse is the tagged reference to the entity behind a transaction
type RelatedEntityResponse struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
