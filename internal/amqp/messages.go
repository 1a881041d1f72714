package amqp

import (
	"encoding/json"
	"time"

	"insights/internal/core"
)

// SettingsChangedMessage announces one persisted goal or alert mutation.
// Consumers reload state from the store; the message carries no amounts.
type SettingsChangedMessage struct {
	Kind      core.SettingsKind `json:"kind"`
	Op        core.SettingsOp   `json:"op"`
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewSettingsChangedMessage builds a message from an engine change record.
func NewSettingsChangedMessage(change core.SettingsChange) *SettingsChangedMessage {
	ts := change.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &SettingsChangedMessage{
		Kind:      change.Kind,
		Op:        change.Op,
		ID:        change.ID,
		Timestamp: ts,
	}
}

// Change converts the message back into an engine change record.
func (m *SettingsChangedMessage) Change() core.SettingsChange {
	return core.SettingsChange{Kind: m.Kind, Op: m.Op, ID: m.ID, At: m.Timestamp}
}

func (m *SettingsChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SettingsChangedMessageFromJSON(data []byte) (*SettingsChangedMessage, error) {
	var msg SettingsChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
