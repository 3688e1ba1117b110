package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1 // span start
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd // span end
	// KindPoint represents an instant event.
	KindPoint // instant event
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent higher-level/coarser events.
type Scope uint8

const (
	// ScopeSession represents top-level engine operations (execute, step, scan).
	ScopeSession Scope = iota + 1 // top-level operations (highest level)
	// ScopePhase represents run pipeline phases (rewrite, compile, evaluate, analyze).
	ScopePhase // run pipeline phases
	// ScopeHook represents per-event hook activity during evaluation (most detailed).
	ScopeHook // individual hook events
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeSession:
		return "session"
	case ScopePhase:
		return "phase"
	case ScopeHook:
		return "hook"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	SpanID   uint64            // unique span identifier
	ParentID uint64            // parent span (0 if root)
	GID      uint64            // goroutine ID (for concurrent scans)
	Name     string            // e.g., "execute", "phase:evaluate", "hook:step"
	Detail   string            // optional detail message
	Extra    map[string]string // extensible key-value pairs
}
