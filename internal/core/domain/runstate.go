package domain

// RunState is the lifecycle status of a stream as reported to the status API.
type RunState string

// Run-states. The zero value is RunStateUnset.
const (
	// RunStateUnset means no run-state has been assigned yet.
	RunStateUnset RunState = ""

	// RunStateRunning means the stream is actively replicating.
	RunStateRunning RunState = "RUNNING"

	// RunStateRateLimited means the source is waiting on an upstream quota.
	RunStateRateLimited RunState = "RATE_LIMITED"

	// RunStateIncomplete means the stream ended without completing.
	RunStateIncomplete RunState = "INCOMPLETE"

	// RunStateComplete means the destination committed all of the stream's data.
	RunStateComplete RunState = "COMPLETE"
)

// IsValid returns true if the run-state is recognised.
func (s RunState) IsValid() bool {
	switch s {
	case RunStateUnset, RunStateRunning, RunStateRateLimited, RunStateIncomplete, RunStateComplete:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for INCOMPLETE and COMPLETE.
func (s RunState) IsTerminal() bool {
	return s == RunStateIncomplete || s == RunStateComplete
}

// String returns the string representation.
func (s RunState) String() string {
	if s == RunStateUnset {
		return "UNSET"
	}
	return string(s)
}

// ResolveRunState applies the run-state transition rule and returns the state
// a stream ends up in when proposed is offered while it is in current.
// A rejected proposal returns current unchanged.
func ResolveRunState(current, proposed RunState) RunState {
	switch current {
	case RunStateUnset:
		return proposed
	case RunStateRunning:
		switch proposed {
		case RunStateComplete, RunStateIncomplete, RunStateRateLimited:
			return proposed
		}
	case RunStateRateLimited:
		switch proposed {
		case RunStateRunning, RunStateComplete, RunStateIncomplete:
			return proposed
		}
	}
	return current
}
