package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace-wallet-ledger/internal/domain/shared"
	"github.com/marketplace-wallet-ledger/internal/domain/transaction"
)

// Message stores a committed transaction entry for reliable projection into
// the history store and publication to the wallet events topic. Messages
// are written in the same database transaction as the balance change.
type Message struct {
	ID            int64               `json:"id"`
	TransactionID uuid.UUID           `json:"transaction_id"`
	WalletID      string              `json:"wallet_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(entry *transaction.Entry) (*Message, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}

	return &Message{
		TransactionID: entry.TransactionID,
		WalletID:      entry.WalletID,
		Payload:       payload,
		Status:        shared.OutboxStatusPending,
		Attempts:      0,
		CreatedAt:     time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetEntry extracts the transaction entry from the payload
func (m *Message) GetEntry() (*transaction.Entry, error) {
	var entry transaction.Entry
	if err := json.Unmarshal(m.Payload, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
