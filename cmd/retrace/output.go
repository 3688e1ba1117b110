package main

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/fatih/color"

	"retrace/internal/engine"
)

var (
	completedColor = color.New(color.FgGreen, color.Bold)
	failedColor    = color.New(color.FgRed, color.Bold)
	pausedColor    = color.New(color.FgYellow, color.Bold)

	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	consoleColor = color.New(color.FgCyan)
	infoColor    = color.New(color.FgBlue)
)

func outcomeLabel(o engine.RunOutcome) string {
	switch o {
	case engine.OutcomeCompleted:
		return completedColor.Sprint(o.String())
	case engine.OutcomeFailed:
		return failedColor.Sprint(o.String())
	case engine.OutcomePaused:
		return pausedColor.Sprint(o.String())
	default:
		return o.String()
	}
}

func printEntry(out io.Writer, e engine.Entry) {
	switch e.Kind {
	case engine.EntryLineVisit:
		fmt.Fprintf(out, "  [step=%d] visit line %d\n", e.Step, e.Line)
	case engine.EntryVarCapture:
		fmt.Fprintf(out, "  [step=%d] line %d: %s = %v\n", e.Step, e.Line, e.Name, e.Value)
	case engine.EntryConsole:
		consoleColor.Fprintf(out, "  [step=%d] line %d: console: %s\n", e.Step, e.Line, e.Text)
	case engine.EntryError:
		errorColor.Fprintf(out, "  [step=%d] line %d: error: %s\n", e.Step, e.Line, e.Message)
	case engine.EntryWarning:
		warningColor.Fprintf(out, "  [step=%d] line %d: warning: %s\n", e.Step, e.Line, e.Message)
	}
}

// printRunResult renders a result the way run and step show it: outcome
// first, then the trace and the final variables unless quiet.
func printRunResult(out io.Writer, res *engine.Result, quiet bool) {
	fmt.Fprintf(out, "outcome: %s\n", outcomeLabel(res.Outcome))
	if res.Value != nil {
		fmt.Fprintf(out, "value: %v\n", res.Value)
	}
	if res.ErrMessage != "" {
		fmt.Fprintf(out, "error: %s\n", res.ErrMessage)
	}
	if quiet {
		return
	}
	if res.ErrStack != "" {
		fmt.Fprintln(out, "stack:")
		fmt.Fprintln(out, res.ErrStack)
	}
	if len(res.State.History) > 0 {
		fmt.Fprintln(out, "trace:")
		for _, e := range res.State.History {
			printEntry(out, e)
		}
	}
	if len(res.State.Variables) > 0 {
		fmt.Fprintln(out, "variables:")
		for _, name := range slices.Sorted(maps.Keys(res.State.Variables)) {
			fmt.Fprintf(out, "  %s = %v\n", name, res.State.Variables[name])
		}
	}
}
