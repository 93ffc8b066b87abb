package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrWatchNotFound      = errors.New("watch not found")
	ErrInvalidSchedule    = errors.New("invalid schedule format")
	ErrInvalidRecipients  = errors.New("at least one recipient is required")
	ErrInvalidOperationID = errors.New("invalid or missing operation id")
	ErrInvalidStatus      = errors.New("invalid watch status")
	ErrWatchAlreadyPaused = errors.New("watch is already paused")
	ErrWatchNotPaused     = errors.New("watch is not paused")
	ErrSessionNotFound    = errors.New("monitor session not found")
	ErrNotCategorization  = errors.New("project is not a categorization project")
)

// TimeoutError is returned when a monitored operation does not reach a
// terminal state within the configured budget. Always fatal to the session.
type TimeoutError struct {
	OperationID string
	Budget      time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %s did not reach a terminal state within %s", e.OperationID, e.Budget)
}

// UnknownStateError is returned when the job service reports a state this
// version does not recognize. Treated as fatal, never silently ignored.
type UnknownStateError struct {
	Raw string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("unknown operation state %q", e.Raw)
}

// TransportError is a connection, authentication or protocol failure at the
// messaging layer. Depending on session configuration it either aborts the
// session or is recorded in the delivery result.
type TransportError struct {
	Op    string `json:"op"`
	Text  string `json:"text"`
	Cause error  `json:"-"`
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport %s failed: %s: %v", e.Op, e.Text, e.Cause)
	}
	return fmt.Sprintf("transport %s failed: %s", e.Op, e.Text)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
