package usecases

import (
	"context"
	"errors"
	"log"
	"time"

	"jobwatch/internal/core/domain"
)

// OperationSource fetches the current snapshot of a remote operation.
// Implementations must be poll-safe: idempotent and free of side effects.
type OperationSource interface {
	Operation(ctx context.Context, id string) (domain.Operation, error)
}

// MonitorOptions control one monitoring session
type MonitorOptions struct {
	// PollInterval is the pause between state fetches. Defaults to 1s.
	PollInterval time.Duration

	// Timeout is the wall-clock budget for the whole session. Zero means
	// no timeout.
	Timeout time.Duration

	// NotifyStates restricts dispatching to the given states. A nil set
	// notifies on every observed state.
	NotifyStates domain.StateSet

	// Recipients receive every notification dispatched by this session
	Recipients []string

	// RaiseTransportErrors aborts the session on a transport-level send
	// failure. When false the failure is recorded in the log and polling
	// continues.
	RaiseTransportErrors bool
}

// Monitor polls a remote operation until it reaches a terminal state and
// dispatches a notification for each observed state transition. One Monitor
// may serve many concurrent sessions; each Run call owns its own log and
// shares nothing with other calls.
type Monitor struct {
	source     OperationSource
	dispatcher *Dispatcher
}

func NewMonitor(source OperationSource, dispatcher *Dispatcher) *Monitor {
	return &Monitor{
		source:     source,
		dispatcher: dispatcher,
	}
}

// Run monitors the operation until it reaches a terminal state, the timeout
// budget is spent, or the context is cancelled. The returned log holds one
// entry per state transition that triggered a dispatch, in observation
// order. On timeout the partial log is returned together with a
// TimeoutError so results gathered so far are not lost.
func (m *Monitor) Run(ctx context.Context, operationID string, opts MonitorOptions) (domain.MonitorLog, error) {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = time.Second
	}

	var deadline time.Time
	if opts.Timeout > 0 {
		deadline = time.Now().Add(opts.Timeout)
	}

	log.Printf("Monitoring operation %s (interval: %v, timeout: %v, states: %v)",
		operationID, interval, opts.Timeout, opts.NotifyStates)

	var monitorLog domain.MonitorLog
	var lastState domain.OperationState
	observed := false

	for {
		op, err := m.source.Operation(ctx, operationID)
		if err != nil {
			return monitorLog, err
		}

		// Dispatch once per observed transition, including the very
		// first observation even when it is already terminal.
		if !observed || op.State != lastState {
			observed = true
			lastState = op.State

			entry, err := m.dispatcher.MaybeNotify(ctx, op, opts.NotifyStates, opts.Recipients)
			if err != nil {
				var transportErr *domain.TransportError
				if errors.As(err, &transportErr) && !opts.RaiseTransportErrors {
					// Record the failed send and keep watching the operation.
					failed := domain.MonitorEntry{
						Message:  domain.NewStatusMessage(op, m.dispatcher.sender, opts.Recipients),
						Delivery: domain.DeliveryResult{Failure: transportErr},
					}
					if entry != nil {
						failed.Message = entry.Message
					}
					monitorLog = append(monitorLog, failed)
					log.Printf("Notification for operation %s (%s) failed, continuing: %v", operationID, op.State, transportErr)
				} else {
					return monitorLog, err
				}
			} else if entry != nil {
				monitorLog = append(monitorLog, *entry)
				log.Printf("Dispatched notification for operation %s: %s", operationID, entry.Message.Subject)
			}
		}

		if op.State.Terminal() {
			log.Printf("Operation %s reached terminal state %s after %d notification(s)", operationID, op.State, len(monitorLog))
			return monitorLog, nil
		}

		// Sleep the interval or whatever is left of the budget,
		// whichever is smaller.
		wait := interval
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return monitorLog, &domain.TimeoutError{OperationID: operationID, Budget: opts.Timeout}
			}
			if remaining < wait {
				wait = remaining
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return monitorLog, ctx.Err()
		case <-timer.C:
		}

		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return monitorLog, &domain.TimeoutError{OperationID: operationID, Budget: opts.Timeout}
		}
	}
}
