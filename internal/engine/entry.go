package engine

import "fmt"

// EntryKind tags the variant of a trace entry.
type EntryKind uint8

const (
	// EntryLineVisit records control reaching a source line.
	EntryLineVisit EntryKind = iota
	// EntryVarCapture records a variable assignment observed on a line.
	EntryVarCapture
	// EntryConsole records output produced through the console substitute.
	EntryConsole
	// EntryError records an abnormal event: a program error, a breakpoint or
	// step pause, or a timeout.
	EntryError
	// EntryWarning records a host-injected warning, e.g. a static analysis
	// finding attached to the trace.
	EntryWarning
)

// String returns the string representation of EntryKind.
func (k EntryKind) String() string {
	switch k {
	case EntryLineVisit:
		return "line-visit"
	case EntryVarCapture:
		return "variable-capture"
	case EntryConsole:
		return "console-output"
	case EntryError:
		return "error"
	case EntryWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so JSON traces carry kind
// names instead of raw numbers.
func (k EntryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EntryKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "line-visit":
		*k = EntryLineVisit
	case "variable-capture":
		*k = EntryVarCapture
	case "console-output":
		*k = EntryConsole
	case "error":
		*k = EntryError
	case "warning":
		*k = EntryWarning
	default:
		return fmt.Errorf("invalid entry kind: %q", text)
	}
	return nil
}

// Entry is one record of the execution history. Entries are immutable once
// appended; Step equals the entry's index in the history.
type Entry struct {
	Step    int       `json:"step" msgpack:"step"`
	Line    int       `json:"line" msgpack:"line"`
	Kind    EntryKind `json:"kind" msgpack:"kind"`
	Name    string    `json:"name,omitempty" msgpack:"name,omitempty"`
	Value   any       `json:"value,omitempty" msgpack:"value,omitempty"`
	Text    string    `json:"text,omitempty" msgpack:"text,omitempty"`
	Message string    `json:"message,omitempty" msgpack:"message,omitempty"`
}

// VariableState is one observed assignment, in recorded order.
type VariableState struct {
	Step  int    `json:"step"`
	Line  int    `json:"line"`
	Name  string `json:"name"`
	Value any    `json:"value"`
}
