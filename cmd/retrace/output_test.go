package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"retrace/internal/engine"
	"retrace/internal/observ"
	"retrace/internal/rules"
)

func init() {
	// Tests compare plain text.
	color.NoColor = true
}

func sampleResult() *engine.Result {
	return &engine.Result{
		Outcome: engine.OutcomeCompleted,
		Value:   int64(3),
		State: engine.Snapshot{
			History: []engine.Entry{
				{Step: 0, Line: 1, Kind: engine.EntryLineVisit},
				{Step: 1, Line: 1, Kind: engine.EntryVarCapture, Name: "x", Value: int64(1)},
				{Step: 2, Line: 3, Kind: engine.EntryConsole, Text: "3"},
			},
			Variables: map[string]any{"x": int64(1)},
		},
	}
}

func TestPrintRunResultFull(t *testing.T) {
	var buf bytes.Buffer
	printRunResult(&buf, sampleResult(), false)
	out := buf.String()
	for _, want := range []string{
		"outcome: completed",
		"value: 3",
		"trace:",
		"[step=0] visit line 1",
		"[step=1] line 1: x = 1",
		"[step=2] line 3: console: 3",
		"variables:",
		"  x = 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintRunResultQuiet(t *testing.T) {
	var buf bytes.Buffer
	printRunResult(&buf, sampleResult(), true)
	out := buf.String()
	if !strings.Contains(out, "outcome: completed") {
		t.Fatalf("quiet output missing outcome:\n%s", out)
	}
	if strings.Contains(out, "trace:") || strings.Contains(out, "variables:") {
		t.Fatalf("quiet output should drop trace and variables:\n%s", out)
	}
}

func TestSeverityLabelPlain(t *testing.T) {
	tests := []struct {
		sev  rules.Severity
		want string
	}{
		{rules.SevError, "ERROR"},
		{rules.SevWarning, "WARNING"},
		{rules.SevInfo, "INFO"},
	}
	for _, tt := range tests {
		if got := severityLabel(tt.sev); got != tt.want {
			t.Errorf("severityLabel(%v) = %q, want %q", tt.sev, got, tt.want)
		}
	}
}

func TestPrintPhaseTimings(t *testing.T) {
	rep := observ.Report{
		TotalMS: 1.5,
		Phases: []observ.PhaseReport{
			{Name: "instrument", DurationMS: 0.5},
			{Name: "evaluate", DurationMS: 1.0, Note: "3 steps"},
		},
	}
	var buf bytes.Buffer
	printPhaseTimings(&buf, rep)
	out := buf.String()
	for _, want := range []string{
		"instrument 0.5 ms",
		"evaluate 1.0 ms (3 steps)",
		"total 1.5 ms",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
