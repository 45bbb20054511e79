package amqp

import (
	"encoding/json"
	"time"
)

// TransactionImportedMessage carries one bank-feed record from the
// poller to the import worker. Amounts are integer cents; ExternalRef
// is the feed's own identifier and keys the idempotent upsert.
type TransactionImportedMessage struct {
	ExternalRef string    `json:"external_ref"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Kind        string    `json:"kind"`
	AmountCents int64     `json:"amount_cents"`
	Note        string    `json:"note"`
	Feed        string    `json:"feed"`
	Timestamp   time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *TransactionImportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionImportedMessageFromJSON creates a message from JSON bytes
func TransactionImportedMessageFromJSON(data []byte) (*TransactionImportedMessage, error) {
	var msg TransactionImportedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// LedgerChangedMessage announces that stored transactions or rules
// changed, so downstream consumers can refresh derived projections.
type LedgerChangedMessage struct {
	Entity    string    `json:"entity"` // "transaction" or "rule"
	ID        string    `json:"id"`
	Action    string    `json:"action"` // "created", "updated", "deleted"
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(entity, id, action string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Entity:    entity,
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
