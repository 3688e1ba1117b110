package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"retrace/internal/engine"
	"retrace/internal/rules"
	"retrace/internal/session"
	"retrace/internal/source"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file.js>",
	Short: "Execute a JavaScript snippet and record its trace",
	Long:  `Execute a JavaScript file under instrumentation and print the recorded trace, final variables and outcome`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExecution,
}

func init() {
	addEngineFlags(runCmd)
	runCmd.Flags().String("break", "", "comma-separated breakpoint lines (e.g. 2,5)")
	runCmd.Flags().String("save", "", "write the recorded session to this file")
	runCmd.Flags().Bool("trace", false, "mirror trace events to stderr while running")
	runCmd.Flags().Bool("scan", false, "run the static rules and attach findings as warnings")
	runCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runExecution(cmd *cobra.Command, args []string) error {
	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, manifest)
	if err != nil {
		return err
	}
	defer cleanup()

	breakSpec, err := cmd.Flags().GetString("break")
	if err != nil {
		return fmt.Errorf("failed to get break flag: %w", err)
	}
	savePath, err := cmd.Flags().GetString("save")
	if err != nil {
		return fmt.Errorf("failed to get save flag: %w", err)
	}
	liveTrace, err := cmd.Flags().GetBool("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	scanFirst, err := cmd.Flags().GetBool("scan")
	if err != nil {
		return fmt.Errorf("failed to get scan flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	var extra []engine.Option
	if liveTrace {
		extra = append(extra, engine.WithTracer(engine.NewTracer(cmd.ErrOrStderr())))
	}
	eng, err := buildEngine(cmd, manifest, extra...)
	if err != nil {
		return err
	}

	snip, err := source.Load(args[0])
	if err != nil {
		return err
	}
	eng.SetSnippet(snip, engine.LanguageJavaScript)

	if breakSpec != "" {
		lines, err := engine.ParseLineList(breakSpec)
		if err != nil {
			return err
		}
		for _, line := range lines {
			eng.AddBreakpoint(line)
		}
	}

	res, err := eng.Execute()
	if err != nil {
		return err
	}

	if scanFirst {
		if issues := rules.NewScanner().InjectInto(eng); len(issues) > 0 {
			// Pull the injected warnings into the snapshot we print and save.
			res.State = eng.Snapshot()
		}
	}

	switch format {
	case "pretty":
		printRunResult(cmd.OutOrStdout(), res, quiet)
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if showTimings {
		printPhaseTimings(cmd.ErrOrStderr(), eng.Timings())
	}

	if savePath != "" {
		if err := session.Save(savePath, session.Capture(eng, res)); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "session saved to %s\n", savePath)
		}
	}

	if res.Outcome == engine.OutcomeFailed {
		// Suppress cobra output: the failure is already in the printed result.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}
