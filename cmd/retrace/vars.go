package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"retrace/internal/engine"
)

var varsCmd = &cobra.Command{
	Use:   "vars [flags] <file.js|session.retrace>",
	Short: "Show the variable assignment timeline",
	Long:  `List every captured variable assignment of a snippet run or a saved session, in recorded order`,
	Args:  cobra.ExactArgs(1),
	RunE:  runVars,
}

func init() {
	addEngineFlags(varsCmd)
}

func runVars(cmd *cobra.Command, args []string) error {
	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, manifest)
	if err != nil {
		return err
	}
	defer cleanup()

	sess, err := loadSession(cmd, manifest, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	count := 0
	for _, e := range sess.Entries {
		if e.Kind != engine.EntryVarCapture {
			continue
		}
		fmt.Fprintf(out, "[step=%d] line %d: %s = %v\n", e.Step, e.Line, e.Name, e.Value)
		count++
	}
	if count == 0 {
		fmt.Fprintln(out, "no variable assignments recorded")
	}
	return nil
}
