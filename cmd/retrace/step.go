package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"retrace/internal/engine"
	"retrace/internal/source"
)

var stepCmd = &cobra.Command{
	Use:   "step [flags] <file.js>",
	Short: "Step through a snippet one line at a time",
	Long:  `Interactive line stepper: n advances one line, c runs to completion, vars shows the captured variables, help lists the rest`,
	Args:  cobra.ExactArgs(1),
	RunE:  runStepSession,
}

func init() {
	addEngineFlags(stepCmd)
}

func runStepSession(cmd *cobra.Command, args []string) error {
	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, manifest)
	if err != nil {
		return err
	}
	defer cleanup()

	eng, err := buildEngine(cmd, manifest)
	if err != nil {
		return err
	}
	snip, err := source.Load(args[0])
	if err != nil {
		return err
	}
	eng.SetSnippet(snip, engine.LanguageJavaScript)

	stepper := engine.NewStepper(eng, cmd.InOrStdin(), cmd.OutOrStdout(), isTerminal(os.Stdin))
	res, err := stepper.Run()
	if err != nil {
		return err
	}
	if res.Outcome == engine.OutcomeFailed {
		// Suppress cobra output: the stepper already reported the failure.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}
