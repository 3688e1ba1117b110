package perf_test

import (
	"testing"

	"retrace/internal/perf"
	"retrace/internal/source"
)

func TestAnalyzeHotspotOrdering(t *testing.T) {
	snip := source.New("test.js", "a;\n  b;\nc;\nd;\ne;")
	visits := map[int]int{2: 30, 5: 30, 3: 50, 1: 2}

	rep := perf.Analyze(snip, visits, 112, perf.DefaultThreshold)

	if len(rep.Hotspots) != 3 {
		t.Fatalf("expected three hotspots, got %v", rep.Hotspots)
	}
	wantLines := []int{3, 2, 5}
	wantCounts := []int{50, 30, 30}
	for i, h := range rep.Hotspots {
		if h.Line != wantLines[i] || h.Count != wantCounts[i] {
			t.Errorf("hotspot %d: expected line %d count %d, got line %d count %d",
				i, wantLines[i], wantCounts[i], h.Line, h.Count)
		}
	}
	if rep.Hotspots[1].Code != "b;" {
		t.Errorf("expected trimmed code %q, got %q", "b;", rep.Hotspots[1].Code)
	}
}

func TestAnalyzeThresholdStrictlyGreater(t *testing.T) {
	snip := source.New("test.js", "a;\nb;")

	rep := perf.Analyze(snip, map[int]int{1: 10}, 10, 10)
	if len(rep.Hotspots) != 0 {
		t.Fatalf("expected no hotspot at exactly the threshold, got %v", rep.Hotspots)
	}

	rep = perf.Analyze(snip, map[int]int{1: 11}, 11, 10)
	if len(rep.Hotspots) != 1 {
		t.Fatalf("expected one hotspot above the threshold, got %v", rep.Hotspots)
	}
}

func TestAnalyzeAverage(t *testing.T) {
	snip := source.New("test.js", "a;\nb;\nc;\nd;")

	rep := perf.Analyze(snip, map[int]int{1: 2}, 8, 10)
	if rep.TotalSteps != 8 {
		t.Errorf("expected total steps 8, got %d", rep.TotalSteps)
	}
	if rep.AvgStepsPerLine != 2 {
		t.Errorf("expected 2 steps per line, got %v", rep.AvgStepsPerLine)
	}
}

func TestAnalyzeEmptySnippet(t *testing.T) {
	rep := perf.Analyze(source.New("test.js", ""), nil, 0, 10)
	if rep.TotalSteps != 0 || rep.AvgStepsPerLine != 0 || len(rep.Hotspots) != 0 {
		t.Fatalf("expected zero report, got %+v", rep)
	}

	rep = perf.Analyze(nil, map[int]int{1: 100}, 100, 10)
	if len(rep.Hotspots) != 0 {
		t.Fatalf("expected zero report for nil snippet, got %+v", rep)
	}
}

func TestAnalyzeOutOfRangeLine(t *testing.T) {
	snip := source.New("test.js", "a;")

	rep := perf.Analyze(snip, map[int]int{40: 99}, 99, 10)
	if len(rep.Hotspots) != 1 {
		t.Fatalf("expected the hotspot to survive, got %v", rep.Hotspots)
	}
	if rep.Hotspots[0].Code != "" {
		t.Errorf("expected empty code for an out-of-range line, got %q", rep.Hotspots[0].Code)
	}
}
