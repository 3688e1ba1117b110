package engine_test

import (
	"testing"

	"retrace/internal/engine"
)

func TestRunOutcomeText(t *testing.T) {
	cases := []struct {
		outcome engine.RunOutcome
		want    string
	}{
		{engine.OutcomeCompleted, "completed"},
		{engine.OutcomePaused, "paused"},
		{engine.OutcomeFailed, "failed"},
	}
	for _, tc := range cases {
		if got := tc.outcome.String(); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}

		text, err := tc.outcome.MarshalText()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var back engine.RunOutcome
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if back != tc.outcome {
			t.Errorf("expected %s to round-trip, got %s", tc.outcome, back)
		}
	}

	var bad engine.RunOutcome
	if err := bad.UnmarshalText([]byte("suspended")); err == nil {
		t.Fatal("expected error for unknown outcome")
	}
}

func TestEntryKindText(t *testing.T) {
	cases := []struct {
		kind engine.EntryKind
		want string
	}{
		{engine.EntryLineVisit, "line-visit"},
		{engine.EntryVarCapture, "variable-capture"},
		{engine.EntryConsole, "console-output"},
		{engine.EntryError, "error"},
		{engine.EntryWarning, "warning"},
	}
	for _, tc := range cases {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}

		var back engine.EntryKind
		if err := back.UnmarshalText([]byte(tc.want)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if back != tc.kind {
			t.Errorf("expected %q to parse back to %v, got %v", tc.want, tc.kind, back)
		}
	}
}
