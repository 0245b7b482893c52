package amqp

import (
	"encoding/json"
	"time"
)

// OperationEvent is the message published after every recorded ledger
// operation. It carries the full operation so the statement worker can
// append a row without reading the wallet store.
type OperationEvent struct {
	Login       string    `json:"login"`
	OperationID string    `json:"operation_id"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ToJSON converts the event to JSON bytes.
func (e *OperationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// OperationEventFromJSON parses an event from JSON bytes.
func OperationEventFromJSON(data []byte) (*OperationEvent, error) {
	var e OperationEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
