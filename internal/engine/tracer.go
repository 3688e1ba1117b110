package engine

import (
	"fmt"
	"io"
)

const traceValueLimit = 120

// Tracer mirrors each history entry to a writer as it is recorded. Useful
// for watching long runs live; the canonical record stays in State.History.
type Tracer struct {
	w io.Writer
}

// NewTracer returns a tracer writing to w. A nil writer yields a tracer
// whose methods are no-ops.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

func (t *Tracer) enabled() bool {
	return t != nil && t.w != nil
}

func (t *Tracer) TraceVisit(step, line int) {
	if !t.enabled() {
		return
	}
	fmt.Fprintf(t.w, "[step=%d] visit line %d\n", step, line) //nolint:errcheck
}

func (t *Tracer) TraceCapture(step, line int, name string, value any) {
	if !t.enabled() {
		return
	}
	v := truncateRunes(fmt.Sprint(value), traceValueLimit)
	fmt.Fprintf(t.w, "[step=%d] line %d: %s = %s\n", step, line, name, v) //nolint:errcheck
}

func (t *Tracer) TraceConsole(step, line int, text string) {
	if !t.enabled() {
		return
	}
	fmt.Fprintf(t.w, "[step=%d] line %d: console: %s\n", step, line, truncateRunes(text, traceValueLimit)) //nolint:errcheck
}

func (t *Tracer) TraceAbort(step, line int, message string) {
	if !t.enabled() {
		return
	}
	fmt.Fprintf(t.w, "[step=%d] line %d: abort: %s\n", step, line, message) //nolint:errcheck
}

// truncateRunes shortens s to at most limit runes, appending an ellipsis
// marker when truncation happened.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
