package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Change operations.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// ChangeMessage announces that a record was written. It carries only the
// identity of the record; consumers read the row back from the store.
type ChangeMessage struct {
	Source    string    `json:"source"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change message stamped with the current time.
func NewChangeMessage(source, id, userID, op string) *ChangeMessage {
	return &ChangeMessage{
		Source:    source,
		ID:        id,
		UserID:    userID,
		Op:        op,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes and checks a message.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" || msg.Source == "" {
		return nil, errors.New("change message without source or id")
	}
	switch msg.Op {
	case OpCreated, OpUpdated, OpDeleted:
	default:
		return nil, errors.New("change message with unknown op " + msg.Op)
	}
	return &msg, nil
}
