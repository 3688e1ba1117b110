package engine

import (
	"maps"
	"slices"
)

// Frame is one call-stack record. Line instrumentation never pushes frames;
// the field exists for call/return trace entries to fill in.
type Frame struct {
	Fn   string `json:"fn" msgpack:"fn"`
	Line int    `json:"line" msgpack:"line"`
}

// State is the full mutable record of one run: history, current line,
// captured variables, and the pause flag. Exactly one State is live per
// Engine; it is replaced wholesale on SetCode and Reset and mutated only by
// the hook callbacks during a run.
type State struct {
	CurrentLine int
	Variables   map[string]any
	CallStack   []Frame
	History     []Entry
	Paused      bool

	step int // == len(History); stamped into each entry at append time
}

func newState() *State {
	return &State{Variables: make(map[string]any)}
}

// append stamps the next step number onto e and appends it. Entries are
// never reordered or mutated afterwards.
func (st *State) append(e Entry) {
	e.Step = st.step
	st.step++
	st.History = append(st.History, e)
}

func (st *State) visit(line int) {
	st.append(Entry{Kind: EntryLineVisit, Line: line})
	st.CurrentLine = line
}

func (st *State) capture(line int, name string, value any) {
	st.append(Entry{Kind: EntryVarCapture, Line: line, Name: name, Value: value})
	st.Variables[name] = value
}

func (st *State) console(line int, text string) {
	st.append(Entry{Kind: EntryConsole, Line: line, Text: text})
}

func (st *State) fail(line int, message string) {
	st.append(Entry{Kind: EntryError, Line: line, Message: message})
}

func (st *State) warn(line int, message string) {
	st.append(Entry{Kind: EntryWarning, Line: line, Message: message})
}

// Step returns the number of recorded entries.
func (st *State) Step() int {
	return st.step
}

// Snapshot is a deep copy of a State plus the armed breakpoints, safe to
// hold across later runs and resets.
type Snapshot struct {
	CurrentLine int            `json:"currentLine" msgpack:"currentLine"`
	Variables   map[string]any `json:"variables" msgpack:"variables"`
	CallStack   []Frame        `json:"callStack" msgpack:"callStack"`
	History     []Entry        `json:"history" msgpack:"history"`
	Breakpoints []int          `json:"breakpoints" msgpack:"breakpoints"`
	Paused      bool           `json:"paused" msgpack:"paused"`
	Step        int            `json:"step" msgpack:"step"`
}

// snapshot copies the state. Entry values captured from the guest are shared,
// not cloned; entries are immutable by convention so this is safe.
func (st *State) snapshot(breakpoints *Breakpoints) Snapshot {
	return Snapshot{
		CurrentLine: st.CurrentLine,
		Variables:   maps.Clone(st.Variables),
		CallStack:   slices.Clone(st.CallStack),
		History:     slices.Clone(st.History),
		Breakpoints: breakpoints.Lines(),
		Paused:      st.Paused,
		Step:        st.step,
	}
}
