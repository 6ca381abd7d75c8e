// Package gateway implements the client for the external payment processor.
// The processor is a black box: the ledger only depends on its initiate and
// verify endpoints and never trusts pushed webhook payloads without
// re-verifying against this client.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/marketplace-wallet-ledger/internal/config"
)

// Common errors. Both are retryable by the caller; neither may ever be
// interpreted as a successful payment.
var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayTimeout     = errors.New("payment gateway request timed out")
)

// Status is the normalized verification outcome
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusPending Status = "PENDING"
	StatusFailed  Status = "FAILED"
)

// InitiateResult is the outcome of starting a checkout with the gateway
type InitiateResult struct {
	PaymentURL           string
	GatewayTransactionID string
}

// VerifyResult is the outcome of verifying a gateway transaction
type VerifyResult struct {
	Status    Status
	RawStatus string
	Amount    int64 // Minor units, as settled by the gateway
	Currency  string
}

// Client is the contract the ledger expects from the payment gateway
type Client interface {
	Initiate(ctx context.Context, amount int64, currency, reference, returnURL string) (*InitiateResult, error)
	Verify(ctx context.Context, gatewayTransactionID string) (*VerifyResult, error)
}

// HTTPClient implements Client against the gateway's REST API
type HTTPClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates a gateway client with a bounded per-request timeout
func NewHTTPClient(logger *slog.Logger, cfg *config.GatewayConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: cfg.VerifyTimeout,
		},
		logger: logger,
	}
}

type initiateRequest struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Reference string `json:"reference"`
	ReturnURL string `json:"return_url"`
}

type initiateResponse struct {
	PaymentURL    string `json:"payment_url"`
	TransactionID string `json:"transaction_id"`
}

type verifyResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

// Initiate starts a checkout session with the gateway and returns the URL
// the payer must be redirected to plus the gateway's transaction id.
func (c *HTTPClient) Initiate(ctx context.Context, amount int64, currency, reference, returnURL string) (*InitiateResult, error) {
	body, err := json.Marshal(initiateRequest{
		Amount:    amount,
		Currency:  currency,
		Reference: reference,
		ReturnURL: returnURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initiate request: %w", err)
	}

	var resp initiateResponse
	if err := c.do(ctx, http.MethodPost, "/checkout", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}

	if resp.TransactionID == "" {
		return nil, fmt.Errorf("%w: initiate response missing transaction id", ErrGatewayUnavailable)
	}

	return &InitiateResult{
		PaymentURL:           resp.PaymentURL,
		GatewayTransactionID: resp.TransactionID,
	}, nil
}

// Verify queries the gateway for the authoritative state of a transaction.
// A timeout or transport failure is reported as an error and must be
// surfaced to callers as pending, never as success.
func (c *HTTPClient) Verify(ctx context.Context, gatewayTransactionID string) (*VerifyResult, error) {
	path := fmt.Sprintf("/transactions/%s/verify", gatewayTransactionID)

	var resp verifyResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	return &VerifyResult{
		Status:    NormalizeStatus(resp.Status),
		RawStatus: resp.Status,
		Amount:    resp.Amount,
		Currency:  resp.Currency,
	}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			c.logger.Warn("Gateway request timed out", "method", method, "path", path)
			return fmt.Errorf("%w: %s %s", ErrGatewayTimeout, method, path)
		}
		c.logger.Error("Gateway request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusInternalServerError {
		c.logger.Error("Gateway returned server error", "method", method, "path", path, "status", res.StatusCode)
		return fmt.Errorf("%w: status %d", ErrGatewayUnavailable, res.StatusCode)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("gateway rejected request %s %s: status %d", method, path, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode gateway response: %v", ErrGatewayUnavailable, err)
	}

	return nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
