package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"retrace/internal/engine"
)

var errorsCmd = &cobra.Command{
	Use:   "errors [flags] <file.js|session.retrace>",
	Short: "Show the error and warning timeline",
	Long:  `List every error and warning entry of a snippet run or a saved session, in recorded order`,
	Args:  cobra.ExactArgs(1),
	RunE:  runErrors,
}

func init() {
	addEngineFlags(errorsCmd)
}

func runErrors(cmd *cobra.Command, args []string) error {
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
		if e.Kind != engine.EntryError && e.Kind != engine.EntryWarning {
			continue
		}
		printEntry(out, e)
		count++
	}
	if count == 0 {
		fmt.Fprintln(out, "no errors or warnings recorded")
	}
	return nil
}
