package session

// State is the lifecycle state of a Session.
type State int

const (
	// StatePending means the session was created and never executed.
	StatePending State = iota
	// StateStarted means a run is in progress.
	StateStarted
	// StateDone means the last run finished, successfully or not.
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateStarted:
		return "STARTED"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// ParseState is the inverse of State.String.
func ParseState(name string) (State, bool) {
	switch name {
	case "PENDING":
		return StatePending, true
	case "STARTED":
		return StateStarted, true
	case "DONE":
		return StateDone, true
	}
	return 0, false
}

// StateChange is delivered to observers on every state transition.
type StateChange struct {
	SessionID string
	Old       State
	New       State
	Err       error // error of the finished run, only on STARTED -> DONE
}
