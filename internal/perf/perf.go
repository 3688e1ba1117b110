// Package perf summarizes a run's line-visit distribution: total recorded
// steps, average steps per physical line, and hotspot lines.
package perf

import (
	"slices"
	"strings"

	"fortio.org/safecast"

	"retrace/internal/source"
)

// DefaultThreshold is the visit count a line must exceed to be a hotspot.
const DefaultThreshold = 10

// Hotspot is a line whose visit count exceeded the analyzer threshold.
type Hotspot struct {
	Line  int    `json:"line"`
	Count int    `json:"count"`
	Code  string `json:"code"`
}

// Report is the performance summary of one run.
type Report struct {
	TotalSteps      int       `json:"totalSteps"`
	AvgStepsPerLine float64   `json:"avgStepsPerLine"`
	Hotspots        []Hotspot `json:"hotspots"`
}

// Analyze summarizes visit counts against the snippet. A line visited
// strictly more than threshold times becomes a hotspot; exactly threshold
// visits does not. Hotspots are ordered by count descending, ties by line
// ascending. AvgStepsPerLine divides totalSteps by the physical line
// count and stays zero for an empty snippet.
func Analyze(snip *source.Snippet, visits map[int]int, totalSteps, threshold int) Report {
	rep := Report{TotalSteps: totalSteps, Hotspots: make([]Hotspot, 0)}
	if snip == nil || snip.IsEmpty() {
		return rep
	}

	lineCount := snip.LineCount()
	if lineCount > 0 {
		rep.AvgStepsPerLine = float64(totalSteps) / float64(lineCount)
	}

	for line, count := range visits {
		if count <= threshold {
			continue
		}
		lineNum, err := safecast.Conv[uint32](line)
		if err != nil {
			continue
		}
		rep.Hotspots = append(rep.Hotspots, Hotspot{
			Line:  line,
			Count: count,
			Code:  strings.TrimSpace(snip.Line(lineNum)),
		})
	}

	slices.SortFunc(rep.Hotspots, func(a, b Hotspot) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return a.Line - b.Line
	})
	return rep
}
