package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"ledger/internal/core"
)

// EventOp names the change a TransactionEvent reports.
type EventOp string

const (
	OpCreated EventOp = "created"
	OpUpdated EventOp = "updated"
	OpDeleted EventOp = "deleted"
)

// TransactionEvent announces a change to a transaction. It carries the
// transaction as it was after the change, or just before a delete, so
// consumers never need to read the ledger back.
type TransactionEvent struct {
	Op          EventOp          `json:"op"`
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewTransactionEvent creates an event stamped with the current time.
func NewTransactionEvent(op EventOp, t core.Transaction) *TransactionEvent {
	t.Account, t.Category, t.Member = nil, nil, nil
	return &TransactionEvent{
		Op:          op,
		Transaction: t,
		Timestamp:   time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and sanity checks an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Op {
	case OpCreated, OpUpdated, OpDeleted:
	default:
		return nil, fmt.Errorf("unknown event op %q", ev.Op)
	}
	if ev.Transaction.ID == "" {
		return nil, fmt.Errorf("event without transaction id")
	}
	return &ev, nil
}
