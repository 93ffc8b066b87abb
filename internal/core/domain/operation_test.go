package domain

import (
	"errors"
	"testing"
)

func TestParseOperationState(t *testing.T) {
	for _, raw := range []string{"PENDING", "RUNNING", "SUCCEEDED", "FAILED", "CANCELED"} {
		state, err := ParseOperationState(raw)
		if err != nil {
			t.Errorf("ParseOperationState(%q) failed: %v", raw, err)
		}
		if string(state) != raw {
			t.Errorf("Expected state %q, got %q", raw, state)
		}
	}
}

func TestParseOperationStateUnknown(t *testing.T) {
	_, err := ParseOperationState("EXPLODED")
	if err == nil {
		t.Fatal("Expected error for unknown state")
	}

	var unknownErr *UnknownStateError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("Expected UnknownStateError, got %T", err)
	}

	if unknownErr.Raw != "EXPLODED" {
		t.Errorf("Expected raw state 'EXPLODED', got %q", unknownErr.Raw)
	}
}

func TestOperationStateTerminal(t *testing.T) {
	terminal := []OperationState{StateSucceeded, StateFailed, StateCanceled}
	for _, state := range terminal {
		if !state.Terminal() {
			t.Errorf("Expected %s to be terminal", state)
		}
	}

	nonTerminal := []OperationState{StatePending, StateRunning}
	for _, state := range nonTerminal {
		if state.Terminal() {
			t.Errorf("Expected %s to not be terminal", state)
		}
	}
}

func TestStateSetContains(t *testing.T) {
	set := StateSet{StateSucceeded, StateFailed}

	if !set.Contains(StateSucceeded) {
		t.Error("Expected set to contain SUCCEEDED")
	}

	if set.Contains(StateRunning) {
		t.Error("Expected set to not contain RUNNING")
	}
}

func TestNilStateSetContainsEverything(t *testing.T) {
	var set StateSet

	for _, state := range []OperationState{StatePending, StateRunning, StateSucceeded, StateFailed, StateCanceled} {
		if !set.Contains(state) {
			t.Errorf("Expected nil set to contain %s", state)
		}
	}
}

func TestParseStateSet(t *testing.T) {
	set, err := ParseStateSet([]string{"SUCCEEDED", "FAILED"})
	if err != nil {
		t.Fatalf("ParseStateSet failed: %v", err)
	}

	if len(set) != 2 {
		t.Fatalf("Expected 2 states, got %d", len(set))
	}

	if !set.Contains(StateSucceeded) || !set.Contains(StateFailed) {
		t.Error("Expected set to contain SUCCEEDED and FAILED")
	}
}

func TestParseStateSetEmptyMeansAll(t *testing.T) {
	set, err := ParseStateSet(nil)
	if err != nil {
		t.Fatalf("ParseStateSet failed: %v", err)
	}

	if set != nil {
		t.Errorf("Expected nil set for empty input, got %v", set)
	}
}

func TestParseStateSetUnknownState(t *testing.T) {
	_, err := ParseStateSet([]string{"SUCCEEDED", "bogus"})
	if err == nil {
		t.Fatal("Expected error for unknown state in set")
	}
}

func TestNewStatusMessage(t *testing.T) {
	op := Operation{
		ID:         "op-1",
		ResourceID: "42",
		State:      StateSucceeded,
		Details:    "all records categorized",
	}

	msg := NewStatusMessage(op, "pipeline@example.com", []string{"a@example.com", "b@example.com"})

	if msg.Subject != "Job 42: SUCCEEDED" {
		t.Errorf("Expected subject 'Job 42: SUCCEEDED', got %q", msg.Subject)
	}

	if msg.Body != "all records categorized" {
		t.Errorf("Expected body from operation details, got %q", msg.Body)
	}

	if msg.Sender != "pipeline@example.com" {
		t.Errorf("Expected sender 'pipeline@example.com', got %q", msg.Sender)
	}

	if len(msg.Recipients) != 2 {
		t.Errorf("Expected 2 recipients, got %d", len(msg.Recipients))
	}
}

func TestDeliveryResultOK(t *testing.T) {
	result := DeliveryResult{}
	if !result.OK() {
		t.Error("Expected empty result to be OK")
	}

	result = DeliveryResult{Refusals: map[string]Refusal{
		"c@example.com": {Code: 550, Text: "mailbox unavailable"},
	}}
	if result.OK() {
		t.Error("Expected result with refusals to not be OK")
	}

	result = DeliveryResult{Failure: &TransportError{Op: "connect", Text: "connection refused"}}
	if result.OK() {
		t.Error("Expected result with failure to not be OK")
	}
	if !result.Failed() {
		t.Error("Expected result with failure to report Failed")
	}
}
