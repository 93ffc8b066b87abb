package usecases

import (
	"context"

	"jobwatch/internal/core/domain"
)

// StatusNotifier is the transport port. Implementations deliver one message
// and report per-recipient refusals as data; only transport-level failures
// (connect, auth, protocol) come back as a *domain.TransportError. Must be
// safe for concurrent use across independent sessions.
type StatusNotifier interface {
	Send(ctx context.Context, msg domain.Message) (domain.DeliveryResult, error)
}

// Dispatcher decides whether an operation snapshot warrants a notification
// and builds the message when it does. It never reinterprets transport
// errors; the caller's error policy applies.
type Dispatcher struct {
	notifier StatusNotifier
	sender   string
}

func NewDispatcher(notifier StatusNotifier, sender string) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		sender:   sender,
	}
}

// MaybeNotify dispatches a notification when the operation's state is in the
// notify set (a nil set means every state). Returns nil when no dispatch
// happened. The delivery result is passed through from the transport
// unmodified; on a transport error the entry built so far is returned
// alongside the error so callers can record it.
func (d *Dispatcher) MaybeNotify(ctx context.Context, op domain.Operation, states domain.StateSet, recipients []string) (*domain.MonitorEntry, error) {
	if !states.Contains(op.State) {
		return nil, nil
	}

	msg := domain.NewStatusMessage(op, d.sender, recipients)

	result, err := d.notifier.Send(ctx, msg)
	entry := &domain.MonitorEntry{
		Message:  msg,
		Delivery: result,
	}
	if err != nil {
		return entry, err
	}
	return entry, nil
}
