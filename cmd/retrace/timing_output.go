package main

import (
	"fmt"
	"io"

	"retrace/internal/observ"
)

func printPhaseTimings(out io.Writer, rep observ.Report) {
	if out == nil || len(rep.Phases) == 0 {
		return
	}
	for _, ph := range rep.Phases {
		if ph.Note != "" {
			fmt.Fprintf(out, "%s %.1f ms (%s)\n", ph.Name, ph.DurationMS, ph.Note)
		} else {
			fmt.Fprintf(out, "%s %.1f ms\n", ph.Name, ph.DurationMS)
		}
	}
	fmt.Fprintf(out, "total %.1f ms\n", rep.TotalMS)
}
