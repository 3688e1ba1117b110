package engine

import "fmt"

// RunOutcome is the terminal state of one run.
type RunOutcome uint8

const (
	// OutcomeCompleted means the program ran to its end.
	OutcomeCompleted RunOutcome = iota
	// OutcomePaused means an armed breakpoint or an exhausted step budget
	// aborted the run early.
	OutcomePaused
	// OutcomeFailed means the program raised, timed out, or hit the step
	// limit.
	OutcomeFailed
)

// String returns the string representation of RunOutcome.
func (o RunOutcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomePaused:
		return "paused"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o RunOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *RunOutcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "completed":
		*o = OutcomeCompleted
	case "paused":
		*o = OutcomePaused
	case "failed":
		*o = OutcomeFailed
	default:
		return fmt.Errorf("invalid run outcome: %q (expected: completed|paused|failed)", text)
	}
	return nil
}
