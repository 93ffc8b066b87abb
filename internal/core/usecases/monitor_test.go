package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobwatch/internal/core/domain"
)

// scriptedSource replays a fixed sequence of states, repeating the last one
// for any further polls.
type scriptedSource struct {
	states  []string
	details string
	calls   int
}

func (s *scriptedSource) Operation(ctx context.Context, id string) (domain.Operation, error) {
	i := s.calls
	if i >= len(s.states) {
		i = len(s.states) - 1
	}
	s.calls++

	state, err := domain.ParseOperationState(s.states[i])
	if err != nil {
		return domain.Operation{}, err
	}

	return domain.Operation{
		ID:         id,
		ResourceID: id,
		State:      state,
		Details:    s.details,
	}, nil
}

// fakeNotifier records sent messages and optionally refuses recipients or
// fails at the transport level.
type fakeNotifier struct {
	sent    []domain.Message
	refuse  map[string]domain.Refusal
	failure *domain.TransportError
}

func (n *fakeNotifier) Send(ctx context.Context, msg domain.Message) (domain.DeliveryResult, error) {
	if n.failure != nil {
		return domain.DeliveryResult{}, n.failure
	}

	n.sent = append(n.sent, msg)

	refusals := make(map[string]domain.Refusal)
	for _, rcpt := range msg.Recipients {
		if refusal, ok := n.refuse[rcpt]; ok {
			refusals[rcpt] = refusal
		}
	}
	if len(refusals) == 0 {
		return domain.DeliveryResult{}, nil
	}
	return domain.DeliveryResult{Refusals: refusals}, nil
}

func newTestMonitor(source OperationSource, notifier StatusNotifier) *Monitor {
	return NewMonitor(source, NewDispatcher(notifier, "pipeline@example.com"))
}

func TestMonitorNotifiesOnTerminalStateOnly(t *testing.T) {
	source := &scriptedSource{states: []string{"RUNNING", "RUNNING", "SUCCEEDED"}, details: "records categorized"}
	notifier := &fakeNotifier{}
	monitor := newTestMonitor(source, notifier)

	monitorLog, err := monitor.Run(context.Background(), "op-9", MonitorOptions{
		PollInterval: time.Millisecond,
		NotifyStates: domain.StateSet{domain.StateSucceeded},
		Recipients:   []string{"team@example.com"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(monitorLog) != 1 {
		t.Fatalf("Expected exactly 1 log entry, got %d", len(monitorLog))
	}

	if monitorLog[0].Message.Subject != "Job op-9: SUCCEEDED" {
		t.Errorf("Expected subject 'Job op-9: SUCCEEDED', got %q", monitorLog[0].Message.Subject)
	}

	if !monitorLog[0].Delivery.OK() {
		t.Errorf("Expected successful delivery, got %+v", monitorLog[0].Delivery)
	}

	if source.calls != 3 {
		t.Errorf("Expected 3 polls, got %d", source.calls)
	}
}

func TestMonitorEmptyLogWhenTerminalStateNotInSet(t *testing.T) {
	source := &scriptedSource{states: []string{"RUNNING", "FAILED"}}
	notifier := &fakeNotifier{}
	monitor := newTestMonitor(source, notifier)

	monitorLog, err := monitor.Run(context.Background(), "op-1", MonitorOptions{
		PollInterval: time.Millisecond,
		NotifyStates: domain.StateSet{domain.StateSucceeded},
		Recipients:   []string{"team@example.com"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(monitorLog) != 0 {
		t.Errorf("Expected empty log, got %d entries", len(monitorLog))
	}

	if len(notifier.sent) != 0 {
		t.Errorf("Expected no messages sent, got %d", len(notifier.sent))
	}
}

func TestMonitorNotifiesEveryDistinctStateWhenSetIsNil(t *testing.T) {
	source := &scriptedSource{states: []string{"PENDING", "RUNNING", "SUCCEEDED"}}
	notifier := &fakeNotifier{}
	monitor := newTestMonitor(source, notifier)

	monitorLog, err := monitor.Run(context.Background(), "op-2", MonitorOptions{
		PollInterval: time.Millisecond,
		Recipients:   []string{"team@example.com"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(monitorLog) != 3 {
		t.Fatalf("Expected 3 log entries, got %d", len(monitorLog))
	}

	expected := []string{"Job op-2: PENDING", "Job op-2: RUNNING", "Job op-2: SUCCEEDED"}
	for i, subject := range expected {
		if monitorLog[i].Message.Subject != subject {
			t.Errorf("Entry %d: expected subject %q, got %q", i, subject, monitorLog[i].Message.Subject)
		}
	}
}

func TestMonitorRepeatedStateDispatchesOnce(t *testing.T) {
	source := &scriptedSource{states: []string{"RUNNING", "RUNNING", "RUNNING", "SUCCEEDED"}}
	notifier := &fakeNotifier{}
	monitor := newTestMonitor(source, notifier)

	monitorLog, err := monitor.Run(context.Background(), "op-3", MonitorOptions{
		PollInterval: time.Millisecond,
		Recipients:   []string{"team@example.com"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(monitorLog) != 2 {
		t.Fatalf("Expected 2 log entries (one per transition), got %d", len(monitorLog))
	}
}

func TestMonitorFirstFetchAlreadyTerminal(t *testing.T) {
	source := &scriptedSource{states: []string{"SUCCEEDED"}}
	notifier := &fakeNotifier{}
	monitor := newTestMonitor(source, notifier)

	monitorLog, err := monitor.Run(context.Background(), "op-4", MonitorOptions{
		PollInterval: time.Millisecond,
		Recipients:   []string{"team@example.com"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(monitorLog) != 1 {
		t.Fatalf("Expected exactly 1 log entry for already-terminal operation, got %d", len(monitorLog))
	}

	if source.calls != 1 {
		t.Errorf("Expected a single poll, got %d", source.calls)
	}
}

func TestMonitorTimeoutBeatsInterval(t *testing.T) {
	source := &scriptedSource{states: []string{"RUNNING"}}
	notifier := &fakeNotifier{}
	monitor := newTestMonitor(source, notifier)

	start := time.Now()
	monitorLog, err := monitor.Run(context.Background(), "op-5", MonitorOptions{
		PollInterval: time.Second,
		Timeout:      30 * time.Millisecond,
		Recipients:   []string{"team@example.com"},
	})
	elapsed := time.Since(start)

	var timeoutErr *domain.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected TimeoutError, got %v", err)
	}

	// The sleep must be clamped to the remaining budget, not a full interval.
	if elapsed > 500*time.Millisecond {
		t.Errorf("Expected timeout at or shortly after the 30ms budget, took %v", elapsed)
	}

	// The partial log survives the timeout.
	if len(monitorLog) != 1 {
		t.Errorf("Expected partial log with 1 entry, got %d", len(monitorLog))
	}
}

func TestMonitorUnknownStateIsFatal(t *testing.T) {
	source := &scriptedSource{states: []string{"RUNNING", "LIMBO"}}
	notifier := &fakeNotifier{}
	monitor := newTestMonitor(source, notifier)

	_, err := monitor.Run(context.Background(), "op-6", MonitorOptions{
		PollInterval: time.Millisecond,
		NotifyStates: domain.StateSet{domain.StateSucceeded},
		Recipients:   []string{"team@example.com"},
	})

	var unknownErr *domain.UnknownStateError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("Expected UnknownStateError, got %v", err)
	}
}

func TestMonitorSuppressedTransportFailureContinues(t *testing.T) {
	source := &scriptedSource{states: []string{"SUCCEEDED"}}
	notifier := &fakeNotifier{failure: &domain.TransportError{Op: "connect", Text: "connection refused"}}
	monitor := newTestMonitor(source, notifier)

	monitorLog, err := monitor.Run(context.Background(), "op-7", MonitorOptions{
		PollInterval: time.Millisecond,
		Recipients:   []string{"team@example.com"},
	})
	if err != nil {
		t.Fatalf("Expected suppressed failure, got error: %v", err)
	}

	if len(monitorLog) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(monitorLog))
	}

	if !monitorLog[0].Delivery.Failed() {
		t.Error("Expected the entry to record a transport failure")
	}
}

func TestMonitorRaisedTransportFailureAborts(t *testing.T) {
	source := &scriptedSource{states: []string{"SUCCEEDED"}}
	notifier := &fakeNotifier{failure: &domain.TransportError{Op: "auth", Text: "credentials rejected"}}
	monitor := newTestMonitor(source, notifier)

	monitorLog, err := monitor.Run(context.Background(), "op-8", MonitorOptions{
		PollInterval:         time.Millisecond,
		Recipients:           []string{"team@example.com"},
		RaiseTransportErrors: true,
	})

	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError, got %v", err)
	}

	if len(monitorLog) != 0 {
		t.Errorf("Expected empty log on aborted session, got %d entries", len(monitorLog))
	}
}

func TestMonitorPartialDeliveryRecorded(t *testing.T) {
	source := &scriptedSource{states: []string{"FAILED"}}
	notifier := &fakeNotifier{
		refuse: map[string]domain.Refusal{
			"b@example.com": {Code: 550, Text: "5.1.1 mailbox unavailable"},
		},
	}
	monitor := newTestMonitor(source, notifier)

	monitorLog, err := monitor.Run(context.Background(), "op-10", MonitorOptions{
		PollInterval: time.Millisecond,
		Recipients:   []string{"a@example.com", "b@example.com", "c@example.com"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(monitorLog) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(monitorLog))
	}

	refusals := monitorLog[0].Delivery.Refusals
	if len(refusals) != 1 {
		t.Fatalf("Expected exactly 1 refusal, got %d", len(refusals))
	}

	refusal, ok := refusals["b@example.com"]
	if !ok {
		t.Fatal("Expected refusal keyed by the rejected recipient")
	}

	if refusal.Code != 550 {
		t.Errorf("Expected refusal code 550, got %d", refusal.Code)
	}
}

func TestMonitorContextCancellation(t *testing.T) {
	source := &scriptedSource{states: []string{"RUNNING"}}
	notifier := &fakeNotifier{}
	monitor := newTestMonitor(source, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := monitor.Run(ctx, "op-11", MonitorOptions{
		PollInterval: time.Second,
		NotifyStates: domain.StateSet{domain.StateSucceeded},
		Recipients:   []string{"team@example.com"},
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestDispatcherSkipsStatesOutsideSet(t *testing.T) {
	notifier := &fakeNotifier{}
	dispatcher := NewDispatcher(notifier, "pipeline@example.com")

	op := domain.Operation{ID: "op-1", ResourceID: "op-1", State: domain.StateRunning}
	entry, err := dispatcher.MaybeNotify(context.Background(), op, domain.StateSet{domain.StateSucceeded}, []string{"a@example.com"})
	if err != nil {
		t.Fatalf("MaybeNotify failed: %v", err)
	}

	if entry != nil {
		t.Error("Expected no dispatch for a state outside the notify set")
	}
}

func TestDispatcherDoesNotDeduplicate(t *testing.T) {
	// Two calls with the same snapshot are two independent sends.
	notifier := &fakeNotifier{}
	dispatcher := NewDispatcher(notifier, "pipeline@example.com")

	op := domain.Operation{ID: "op-1", ResourceID: "op-1", State: domain.StateSucceeded}
	for i := 0; i < 2; i++ {
		entry, err := dispatcher.MaybeNotify(context.Background(), op, nil, []string{"a@example.com"})
		if err != nil {
			t.Fatalf("MaybeNotify failed: %v", err)
		}
		if entry == nil {
			t.Fatal("Expected a dispatch")
		}
	}

	if len(notifier.sent) != 2 {
		t.Errorf("Expected 2 independent sends, got %d", len(notifier.sent))
	}
}
