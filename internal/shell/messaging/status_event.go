package messaging

import (
	"encoding/json"
	"time"

	"jobwatch/internal/core/domain"
)

// StatusEvent is the wire format for job status changes published to Kafka
type StatusEvent struct {
	Version     string   `json:"version"`
	EventType   string   `json:"event_type"`
	Timestamp   string   `json:"timestamp"` // RFC3339 format
	OperationID string   `json:"operation_id"`
	State       string   `json:"state"`
	Subject     string   `json:"subject"`
	Details     string   `json:"details"`
	Recipients  []string `json:"recipients"`
}

// NewStatusEvent builds the event for a dispatched notification
func NewStatusEvent(msg domain.Message) *StatusEvent {
	eventType := "job-status-changed"
	if msg.State.Terminal() {
		eventType = "job-finished"
	}

	return &StatusEvent{
		Version:     "v1",
		EventType:   eventType,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		OperationID: msg.OperationID,
		State:       string(msg.State),
		Subject:     msg.Subject,
		Details:     msg.Body,
		Recipients:  msg.Recipients,
	}
}

// ToJSON converts the status event to JSON bytes
func (e *StatusEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
