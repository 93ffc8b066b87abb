package domain

import "fmt"

// Message is one notification to be delivered through a transport.
// Built fresh for every dispatch; never reused across events.
type Message struct {
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	Sender     string   `json:"sender"`
	Recipients []string `json:"recipients"`

	// OperationID and State identify the event the message reports.
	// Transports that publish structured events key on them.
	OperationID string         `json:"operation_id"`
	State       OperationState `json:"state"`
}

// NewStatusMessage builds the notification for an operation snapshot
func NewStatusMessage(op Operation, sender string, recipients []string) Message {
	return Message{
		Subject:     fmt.Sprintf("Job %s: %s", op.ResourceID, op.State),
		Body:        op.Details,
		Sender:      sender,
		Recipients:  recipients,
		OperationID: op.ID,
		State:       op.State,
	}
}

// Refusal is one recipient rejection from the messaging server
type Refusal struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

// DeliveryResult is the outcome of one send attempt. A fully successful send
// has no refusals and no failure. A partially delivered send carries one
// refusal per rejected recipient. A transport-level failure that the caller
// chose to suppress is recorded in Failure.
type DeliveryResult struct {
	Refusals map[string]Refusal `json:"refusals,omitempty"`
	Failure  *TransportError    `json:"failure,omitempty"`
}

// OK reports a fully successful delivery
func (d DeliveryResult) OK() bool {
	return len(d.Refusals) == 0 && d.Failure == nil
}

// Failed reports a transport-level failure (connect, auth, protocol)
func (d DeliveryResult) Failed() bool {
	return d.Failure != nil
}

// MonitorEntry is one dispatched notification and its delivery outcome
type MonitorEntry struct {
	Message  Message        `json:"message"`
	Delivery DeliveryResult `json:"delivery"`
}

// MonitorLog is the chronological record of one monitoring session.
// It only grows during a session and is discarded when the caller is done
// with it; nothing is persisted.
type MonitorLog []MonitorEntry
