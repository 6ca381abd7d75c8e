package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidContractEventType = errors.New("invalid contract event type")

// ContractEventType defines the contract resolutions the ledger reacts to
type ContractEventType string

const (
	ContractEventCompleted ContractEventType = "CONTRACT_COMPLETED"
	ContractEventCancelled ContractEventType = "CONTRACT_CANCELLED"
)

// ContractEvent is the Kafka message announcing a contract resolution.
// Delivery is at-least-once; the escrow engine tolerates replays by
// treating a transition on an already settled hold as a no-op.
type ContractEvent struct {
	EventID       uuid.UUID         `json:"event_id"`
	ContractID    string            `json:"contract_id"`
	HoldID        uuid.UUID         `json:"hold_id"`
	Type          ContractEventType `json:"type"`
	Reason        string            `json:"reason,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}
