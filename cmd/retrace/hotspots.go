package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"retrace/internal/perf"
)

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots [flags] <file.js|session.retrace>",
	Short: "Show the most-visited lines",
	Long:  `Analyze per-line visit counts for a snippet or a saved session and list the lines visited more often than the threshold`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHotspots,
}

func init() {
	addEngineFlags(hotspotsCmd)
}

func runHotspots(cmd *cobra.Command, args []string) error {
	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, manifest)
	if err != nil {
		return err
	}
	defer cleanup()

	threshold, err := resolveHotspotThreshold(cmd, manifest)
	if err != nil {
		return err
	}

	sess, err := loadSession(cmd, manifest, args[0])
	if err != nil {
		return err
	}
	rep := perf.Analyze(sess.Snippet(), sess.VisitCounts(), sess.TotalSteps(), threshold)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "total steps: %d\n", rep.TotalSteps)
	fmt.Fprintf(out, "avg steps per line: %.2f\n", rep.AvgStepsPerLine)
	if len(rep.Hotspots) == 0 {
		fmt.Fprintf(out, "no lines above %d visits\n", threshold)
		return nil
	}
	fmt.Fprintln(out, "hotspots:")
	for _, h := range rep.Hotspots {
		fmt.Fprintf(out, "  line %3d  %5d visits  %s\n", h.Line, h.Count, h.Code)
	}
	return nil
}
