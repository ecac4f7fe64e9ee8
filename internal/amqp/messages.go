package amqp

import (
	"encoding/json"
	"time"
)

// Operations a sync message can request on the remote ledger.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// RecordSyncMessage is the lightweight queue payload: only the record
// id and the requested operation travel over the wire, the worker
// fetches the full record from the database.
type RecordSyncMessage struct {
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordSyncMessage creates an upsert message for a record id.
func NewRecordSyncMessage(id string) *RecordSyncMessage {
	return &RecordSyncMessage{ID: id, Op: OpUpsert, Timestamp: time.Now()}
}

// NewRecordDeleteMessage creates a delete message for a record id.
func NewRecordDeleteMessage(id string) *RecordSyncMessage {
	return &RecordSyncMessage{ID: id, Op: OpDelete, Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON creates a message from JSON bytes.
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
