package events

import (
	"encoding/json"
	"time"
)

// Event types, also used as routing keys.
const (
	TypeLoaded     = "dataset.loaded"
	TypeLoadFailed = "dataset.load_failed"
)

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// LoadMessage announces the outcome of one dataset load.
type LoadMessage struct {
	Type      string    `json:"-"`
	Status    string    `json:"status"`
	Rows      int       `json:"rows"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLoadedMessage reports a successful load of rows records.
func NewLoadedMessage(rows int, at time.Time) *LoadMessage {
	return &LoadMessage{Type: TypeLoaded, Status: StatusOK, Rows: rows, Timestamp: at}
}

// NewLoadFailedMessage reports a failed load.
func NewLoadFailedMessage(err error, at time.Time) *LoadMessage {
	msg := &LoadMessage{Type: TypeLoadFailed, Status: StatusFailed, Timestamp: at}
	if err != nil {
		msg.Error = err.Error()
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *LoadMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LoadMessageFromJSON decodes a message body. The type is not part of the body.
func LoadMessageFromJSON(data []byte) (*LoadMessage, error) {
	var msg LoadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Status == StatusFailed {
		msg.Type = TypeLoadFailed
	} else {
		msg.Type = TypeLoaded
	}
	return &msg, nil
}
