// Package sandbox evaluates instrumented JavaScript in an isolated runtime.
//
// Each evaluation gets a fresh goja.Runtime whose only host bindings are the
// tracking hooks and a console substitute; the guest has no filesystem,
// network, or process surface. Programs are compiled in strict mode, the most
// restrictive execution mode the engine offers, without prepending any text
// that would shift line numbers.
package sandbox

import (
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"retrace/internal/instrument"
)

// Hooks receives the events observed while the guest runs. Any hook may be
// nil. A non-nil error from Step aborts the run: the sandbox interrupts the
// runtime and rethrows inside the guest, so guest try/catch cannot keep the
// program running past the aborting line.
type Hooks struct {
	Step    func(line int) error
	Capture func(line int, name string, value any)
	Console func(method, text string)
}

// Options tunes one evaluation.
type Options struct {
	Timeout time.Duration // zero means no deadline
}

// GuestError describes an abnormal guest exit: a thrown value, an interrupt,
// or a compile failure.
type GuestError struct {
	Message string
	Stack   string
}

// Outcome is the final state of one evaluation. Err is nil on normal
// completion, in which case Value holds the program's exported completion
// value.
type Outcome struct {
	Value any
	Err   *GuestError
}

// consoleMethods all capture to the same hook; the method name rides along
// so callers can distinguish log from error output.
var consoleMethods = []string{"log", "info", "warn", "error"}

// Evaluate compiles src in strict mode and runs it to completion, an
// uncaught throw, or an interrupt. The partial work done by the hooks before
// an abnormal exit is the caller's record of the run; Evaluate itself keeps
// no state between calls.
func Evaluate(name, src string, hooks Hooks, opts Options) Outcome {
	prog, err := goja.Compile(name, src, true)
	if err != nil {
		return Outcome{Err: &GuestError{Message: err.Error()}}
	}

	rt := goja.New()
	if err := bindHooks(rt, hooks); err != nil {
		return Outcome{Err: &GuestError{Message: err.Error()}}
	}

	if opts.Timeout > 0 {
		timer := time.AfterFunc(opts.Timeout, func() {
			rt.Interrupt(fmt.Sprintf("timeout after %s", opts.Timeout))
		})
		defer timer.Stop()
	}

	v, err := rt.RunProgram(prog)
	if err != nil {
		return Outcome{Err: guestError(err)}
	}

	var out Outcome
	if v != nil {
		out.Value = v.Export()
	}
	return out
}

// bindHooks installs the tracking hooks and the console substitute into the
// runtime. These are the guest's only free variables beyond the language
// builtins.
func bindHooks(rt *goja.Runtime, hooks Hooks) error {
	stepFn := func(call goja.FunctionCall) goja.Value {
		if hooks.Step != nil {
			line := int(call.Argument(0).ToInteger())
			if err := hooks.Step(line); err != nil {
				// Arm the un-catchable interrupt first, then throw to stop
				// the current line immediately.
				rt.Interrupt(err.Error())
				panic(rt.NewGoError(err))
			}
		}
		return goja.Undefined()
	}
	if err := rt.Set(instrument.StepFunc, stepFn); err != nil {
		return fmt.Errorf("failed to set %s: %w", instrument.StepFunc, err)
	}

	captureFn := func(call goja.FunctionCall) goja.Value {
		if hooks.Capture != nil {
			line := int(call.Argument(0).ToInteger())
			name := call.Argument(1).String()
			hooks.Capture(line, name, call.Argument(2).Export())
		}
		return goja.Undefined()
	}
	if err := rt.Set(instrument.CaptureFunc, captureFn); err != nil {
		return fmt.Errorf("failed to set %s: %w", instrument.CaptureFunc, err)
	}

	console := rt.NewObject()
	for _, method := range consoleMethods {
		fn := func(call goja.FunctionCall) goja.Value {
			if hooks.Console != nil {
				args := make([]string, len(call.Arguments))
				for i, arg := range call.Arguments {
					args[i] = arg.String()
				}
				hooks.Console(method, strings.Join(args, " "))
			}
			return goja.Undefined()
		}
		if err := console.Set(method, fn); err != nil {
			return fmt.Errorf("failed to set console.%s: %w", method, err)
		}
	}
	if err := rt.Set("console", console); err != nil {
		return fmt.Errorf("failed to set console: %w", err)
	}
	return nil
}

// guestError maps a goja error to the message/stack pair callers surface.
// Thrown Error objects contribute their message property, so the result
// matches what the guest itself would see in a catch block.
func guestError(err error) *GuestError {
	if interrupted, ok := err.(*goja.InterruptedError); ok {
		return &GuestError{
			Message: fmt.Sprint(interrupted.Value()),
			Stack:   interrupted.String(),
		}
	}
	if exc, ok := err.(*goja.Exception); ok {
		return &GuestError{
			Message: exceptionMessage(exc),
			Stack:   exc.String(),
		}
	}
	return &GuestError{Message: err.Error()}
}

func exceptionMessage(exc *goja.Exception) string {
	v := exc.Value()
	if v == nil {
		return exc.Error()
	}
	if obj, ok := v.(*goja.Object); ok {
		if m := obj.Get("message"); m != nil && !goja.IsUndefined(m) {
			return m.String()
		}
	}
	return v.String()
}
