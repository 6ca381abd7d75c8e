package gateway

import "strings"

// NormalizeStatus maps the gateway's raw status vocabulary onto the three
// states the ledger understands. Anything unrecognized is failed, never
// success: an inconclusive answer must not credit a wallet.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success", "successful", "completed", "paid":
		return StatusSuccess
	case "pending", "processing", "requires_payment_method":
		return StatusPending
	default:
		return StatusFailed
	}
}
