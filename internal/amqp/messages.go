package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
)

// SnapshotSavedMessage carries the full collection after a commit. The
// mirror replaces its copy wholesale, so messages are idempotent and only
// the highest version matters.
type SnapshotSavedMessage struct {
	ID        string         `json:"id"`
	Version   int64          `json:"version"`
	Expenses  []core.Expense `json:"expenses"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewSnapshotSavedMessage creates a message with a fresh ID.
func NewSnapshotSavedMessage(version int64, expenses []core.Expense) *SnapshotSavedMessage {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return &SnapshotSavedMessage{
		ID:        uuid.NewString(),
		Version:   version,
		Expenses:  expenses,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotSavedMessageFromJSON decodes a message. Expense records are
// normalized so a hand-crafted payload cannot inject odd field values.
func SnapshotSavedMessageFromJSON(data []byte) (*SnapshotSavedMessage, error) {
	var wire struct {
		ID        string           `json:"id"`
		Version   int64            `json:"version"`
		Expenses  []core.RawRecord `json:"expenses"`
		Timestamp time.Time        `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return &SnapshotSavedMessage{
		ID:        wire.ID,
		Version:   wire.Version,
		Expenses:  core.NormalizeAll(wire.Expenses),
		Timestamp: wire.Timestamp,
	}, nil
}
