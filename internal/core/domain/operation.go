package domain

type OperationState string

const (
	StatePending   OperationState = "PENDING"
	StateRunning   OperationState = "RUNNING"
	StateSucceeded OperationState = "SUCCEEDED"
	StateFailed    OperationState = "FAILED"
	StateCanceled  OperationState = "CANCELED"
)

// ParseOperationState maps a raw state string from the job service to a typed
// OperationState. Unrecognized values are a version-skew problem and come back
// as an UnknownStateError instead of being passed through.
func ParseOperationState(raw string) (OperationState, error) {
	switch OperationState(raw) {
	case StatePending, StateRunning, StateSucceeded, StateFailed, StateCanceled:
		return OperationState(raw), nil
	default:
		return "", &UnknownStateError{Raw: raw}
	}
}

// Terminal reports whether no further state transition can occur
func (s OperationState) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCanceled:
		return true
	default:
		return false
	}
}

// Operation is a read-only snapshot of a remote job, refreshed on each poll
type Operation struct {
	ID         string         `json:"id"`
	ResourceID string         `json:"resource_id"`
	State      OperationState `json:"state"`
	Details    string         `json:"details"`
}

// StateSet is the caller-supplied set of notify-worthy states.
// A nil StateSet means "notify on every observed state".
type StateSet []OperationState

func (s StateSet) Contains(state OperationState) bool {
	if s == nil {
		return true
	}
	for _, candidate := range s {
		if candidate == state {
			return true
		}
	}
	return false
}

// ParseStateSet converts raw state strings into a StateSet.
// An empty slice yields a nil set (notify on all states).
func ParseStateSet(raw []string) (StateSet, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	states := make(StateSet, 0, len(raw))
	for _, r := range raw {
		state, err := ParseOperationState(r)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}
