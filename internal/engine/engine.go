// Package engine implements the instrumented stepped-execution core: it
// rewrites a loaded snippet with tracking hooks, evaluates the result in a
// sandboxed runtime, and records everything the hooks observe into an
// append-only execution history that the inspection operations read back.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"retrace/internal/flow"
	"retrace/internal/instrument"
	"retrace/internal/observ"
	"retrace/internal/perf"
	"retrace/internal/sandbox"
	"retrace/internal/source"
	"retrace/internal/trace"
)

// DefaultHotspotThreshold is the visit count a line must exceed before the
// performance analyzer reports it as a hotspot.
const DefaultHotspotThreshold = 10

// SnippetName is the file name inline sources are compiled under; it shows
// up in guest stack traces.
const SnippetName = "snippet.js"

// LanguageJavaScript is the canonical tag of the one language supported for
// live evaluation. "js" is accepted as an alias, case-insensitively.
const LanguageJavaScript = "javascript"

// Engine owns one snippet, one mutable run state, and the breakpoint set.
// It is not safe for concurrent use; adapters that share an Engine across
// goroutines must serialize access themselves.
type Engine struct {
	src      *source.Snippet
	language string

	state       *State
	breakpoints *Breakpoints
	lastResult  *Result

	stepBudget int  // line visits allowed in the next stepped run
	stepDone   bool // the stepped program already completed or failed

	hotspotThreshold int
	evalTimeout      time.Duration
	maxSteps         int
	tracer           *Tracer
	diag             trace.Tracer
	timings          observ.Report
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithHotspotThreshold overrides the hotspot visit threshold.
func WithHotspotThreshold(n int) Option {
	return func(e *Engine) { e.hotspotThreshold = n }
}

// WithEvalTimeout bounds the wall-clock time of a single evaluation.
// Zero disables the deadline.
func WithEvalTimeout(d time.Duration) Option {
	return func(e *Engine) { e.evalTimeout = d }
}

// WithMaxSteps aborts a run once the history grows past n entries.
// Zero disables the limit.
func WithMaxSteps(n int) Option {
	return func(e *Engine) { e.maxSteps = n }
}

// WithTracer mirrors hook events to a live tracer as they are recorded.
func WithTracer(t *Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithDiagTracer routes engine diagnostics to the given tracer.
func WithDiagTracer(dt trace.Tracer) Option {
	return func(e *Engine) {
		if dt != nil {
			e.diag = dt
		}
	}
}

// New returns an engine with no source loaded.
func New(opts ...Option) *Engine {
	e := &Engine{
		state:            newState(),
		breakpoints:      NewBreakpoints(),
		hotspotThreshold: DefaultHotspotThreshold,
		diag:             trace.Nop,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of one Execute or StepNext call. Guest failures and
// pauses are data here, not Go errors: ErrMessage/ErrStack carry the guest
// error (or the pause sentinel text) and State holds the partial trace.
type Result struct {
	Outcome    RunOutcome `json:"outcome" msgpack:"outcome"`
	Value      any        `json:"value,omitempty" msgpack:"value,omitempty"`
	ErrMessage string     `json:"error,omitempty" msgpack:"error,omitempty"`
	ErrStack   string     `json:"stack,omitempty" msgpack:"stack,omitempty"`
	State      Snapshot   `json:"state" msgpack:"state"`
}

// Success reports whether the run completed normally.
func (r *Result) Success() bool {
	return r != nil && r.Outcome == OutcomeCompleted
}

// SetCode stores a new snippet and language tag and discards the previous
// run state. Breakpoints survive: they are armed lines, not run state.
func (e *Engine) SetCode(text, languageTag string) {
	e.SetSnippet(source.New(SnippetName, text), languageTag)
}

// SetSnippet is SetCode for an already loaded snippet (e.g. from a file).
func (e *Engine) SetSnippet(snip *source.Snippet, languageTag string) {
	e.src = snip
	e.language = languageTag
	e.Reset()
}

// Reset discards the run state (step 0, empty history, line 0) while
// keeping the loaded source and the breakpoint set.
func (e *Engine) Reset() {
	e.state = newState()
	e.lastResult = nil
	e.stepBudget = 0
	e.stepDone = false
}

// AddBreakpoint arms line; idempotent. Lines beyond the source are legal
// and simply never trigger.
func (e *Engine) AddBreakpoint(line int) { e.breakpoints.Add(line) }

// RemoveBreakpoint disarms line; idempotent.
func (e *Engine) RemoveBreakpoint(line int) { e.breakpoints.Remove(line) }

// ClearBreakpoints disarms every line.
func (e *Engine) ClearBreakpoints() { e.breakpoints.Clear() }

// Breakpoints returns the armed lines in ascending order.
func (e *Engine) Breakpoints() []int { return e.breakpoints.Lines() }

func languageSupported(tag string) bool {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case LanguageJavaScript, "js":
		return true
	default:
		return false
	}
}

func (e *Engine) runnable() error {
	if e.src == nil {
		return ErrNoSource
	}
	if !languageSupported(e.language) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, e.language)
	}
	return nil
}

// Execute runs the loaded snippet from the top. The returned error is
// non-nil only when no run was attempted at all (no source loaded,
// unsupported language); abnormal guest exits come back inside the Result
// together with the partial trace.
func (e *Engine) Execute() (*Result, error) {
	if err := e.runnable(); err != nil {
		return nil, err
	}
	res := e.run(0)
	e.lastResult = res
	return res, nil
}

// StepNext advances deterministic single-stepping by one line visit: it
// re-executes the snippet from the top under a visit budget that grows by
// one per call and pauses at the budget boundary with "STEP at line N".
// Once the program runs past its last line (or fails), further calls
// return that final result unchanged until RestartStepping.
func (e *Engine) StepNext() (*Result, error) {
	if err := e.runnable(); err != nil {
		return nil, err
	}
	if e.stepDone && e.lastResult != nil {
		return e.lastResult, nil
	}
	e.stepBudget++
	res := e.run(e.stepBudget)
	e.lastResult = res
	if res.Outcome != OutcomePaused {
		e.stepDone = true
	}
	return res, nil
}

// RestartStepping rewinds the stepping cursor so the next StepNext begins
// again at the first executed line.
func (e *Engine) RestartStepping() {
	e.stepBudget = 0
	e.stepDone = false
}

// run executes one instrumented evaluation against a fresh State. A budget
// greater than zero switches the run into stepping mode: the run pauses
// once that many line visits have been recorded, and breakpoints do not
// trigger (the budget is the pause mechanism there, and a breakpoint below
// the budget frontier would re-fire on every subsequent step).
func (e *Engine) run(budget int) *Result {
	op := "execute"
	if budget > 0 {
		op = "step"
	}
	span := trace.Begin(e.diag, trace.ScopeSession, op, 0)

	timer := observ.NewTimer()
	st := newState()
	e.state = st

	idx := timer.Begin("instrument")
	ph := trace.Begin(e.diag, trace.ScopePhase, "phase:instrument", span.ID())
	rw := instrument.Rewrite(e.src)
	detail := fmt.Sprintf("%d lines tracked", len(rw.Tracked))
	ph.End(detail)
	timer.End(idx, detail)

	// Closure state shared by the hooks. Once interrupted flips, every
	// hook goes dead, so nothing lands in the history after a pause no
	// matter how late the runtime delivers the interrupt.
	var (
		interrupted bool
		pauseMsg    string
		visits      int
	)

	hooks := sandbox.Hooks{
		Step: func(line int) error {
			if interrupted {
				return nil
			}
			st.visit(line)
			visits++
			e.tracer.TraceVisit(st.Step()-1, line)
			e.hookPoint(span.ID(), "hook:step", fmt.Sprintf("line %d", line))
			switch {
			case budget > 0:
				if visits >= budget {
					interrupted = true
					st.Paused = true
					pauseMsg = fmt.Sprintf("STEP at line %d", line)
					return errors.New(pauseMsg)
				}
			case e.breakpoints.Has(line):
				interrupted = true
				st.Paused = true
				pauseMsg = fmt.Sprintf("BREAKPOINT at line %d", line)
				return errors.New(pauseMsg)
			}
			if e.maxSteps > 0 && st.Step() >= e.maxSteps {
				interrupted = true
				return fmt.Errorf("step limit %d exceeded at line %d", e.maxSteps, line)
			}
			return nil
		},
		Capture: func(line int, name string, value any) {
			if interrupted {
				return
			}
			st.capture(line, name, value)
			e.tracer.TraceCapture(st.Step()-1, line, name, value)
			e.hookPoint(span.ID(), "hook:capture", name)
		},
		Console: func(method, text string) {
			if interrupted {
				return
			}
			st.console(st.CurrentLine, text)
			e.tracer.TraceConsole(st.Step()-1, st.CurrentLine, text)
			e.hookPoint(span.ID(), "hook:console", method)
		},
	}

	idx = timer.Begin("evaluate")
	ph = trace.Begin(e.diag, trace.ScopePhase, "phase:evaluate", span.ID())
	out := sandbox.Evaluate(e.src.Name, rw.Text, hooks, sandbox.Options{Timeout: e.evalTimeout})
	ph.End(fmt.Sprintf("%d history entries", st.Step()))
	timer.End(idx, fmt.Sprintf("%d history entries", st.Step()))

	// pauseMsg wins over whatever text the runtime attached to the abort:
	// the interrupt and the thrown hook error race, and either may surface
	// first, but the caller-visible message must be the pause sentinel.
	res := &Result{}
	switch {
	case pauseMsg != "":
		res.Outcome = OutcomePaused
		res.ErrMessage = pauseMsg
		if out.Err != nil {
			res.ErrStack = out.Err.Stack
		}
		st.fail(st.CurrentLine, pauseMsg)
		e.tracer.TraceAbort(st.Step()-1, st.CurrentLine, pauseMsg)
	case out.Err != nil:
		res.Outcome = OutcomeFailed
		res.ErrMessage = out.Err.Message
		res.ErrStack = out.Err.Stack
		st.fail(st.CurrentLine, out.Err.Message)
		e.tracer.TraceAbort(st.Step()-1, st.CurrentLine, out.Err.Message)
	default:
		res.Outcome = OutcomeCompleted
		res.Value = out.Value
	}
	res.State = st.snapshot(e.breakpoints)
	e.timings = timer.Report()
	span.WithExtra("entries", fmt.Sprint(st.Step())).End(res.Outcome.String())
	return res
}

// hookPoint emits one per-hook diagnostic event when hook-level tracing is
// on. Hot path: bail out before building the event.
func (e *Engine) hookPoint(parent uint64, name, detail string) {
	if !e.diag.Enabled() || !e.diag.Level().ShouldEmit(trace.ScopeHook) {
		return
	}
	trace.Point(e.diag, trace.ScopeHook, name, detail, parent)
}

// Flow builds the flow graph for the current source, overlaying executed
// flags from the latest run's line visits.
func (e *Engine) Flow() (*flow.Graph, error) {
	if e.src == nil {
		return nil, ErrNoSource
	}
	return flow.Build(e.src, e.executedLines()), nil
}

func (e *Engine) executedLines() map[int]bool {
	executed := make(map[int]bool)
	for _, en := range e.state.History {
		if en.Kind == EntryLineVisit {
			executed[en.Line] = true
		}
	}
	return executed
}

// VariableStates returns every variable capture in recorded order.
// Idempotent between runs.
func (e *Engine) VariableStates() []VariableState {
	out := make([]VariableState, 0)
	for _, en := range e.state.History {
		if en.Kind == EntryVarCapture {
			out = append(out, VariableState{Step: en.Step, Line: en.Line, Name: en.Name, Value: en.Value})
		}
	}
	return out
}

// ErrorTimeline returns error and warning entries in recorded order.
func (e *Engine) ErrorTimeline() []Entry {
	out := make([]Entry, 0)
	for _, en := range e.state.History {
		if en.Kind == EntryError || en.Kind == EntryWarning {
			out = append(out, en)
		}
	}
	return out
}

// InjectWarning appends a host-layer warning entry to the history. The rule
// scanner uses this to put static findings on the same timeline as runtime
// errors.
func (e *Engine) InjectWarning(line int, message string) {
	e.state.warn(line, message)
}

// AnalyzePerformance summarizes the latest run: total steps, average steps
// per line, and hotspot lines above the threshold.
func (e *Engine) AnalyzePerformance() perf.Report {
	if e.src == nil {
		return perf.Report{}
	}
	return perf.Analyze(e.src, e.visitCounts(), e.state.Step(), e.hotspotThreshold)
}

func (e *Engine) visitCounts() map[int]int {
	visits := make(map[int]int)
	for _, en := range e.state.History {
		if en.Kind == EntryLineVisit {
			visits[en.Line]++
		}
	}
	return visits
}

// Snapshot returns a deep copy of the current run state plus the armed
// breakpoints.
func (e *Engine) Snapshot() Snapshot {
	return e.state.snapshot(e.breakpoints)
}

// Source returns the loaded snippet, nil before the first SetCode.
func (e *Engine) Source() *source.Snippet { return e.src }

// Language returns the stored language tag as given to SetCode.
func (e *Engine) Language() string { return e.language }

// LastResult returns the result of the most recent run, nil if none.
func (e *Engine) LastResult() *Result { return e.lastResult }

// Timings returns phase timings of the most recent run.
func (e *Engine) Timings() observ.Report { return e.timings }
