package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"retrace/internal/rules"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] <path>...",
	Short: "Scan scripts for suspect patterns",
	Long:  `Run the built-in static rules over JavaScript files or directories and print the findings`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
}

func runScan(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return err
		}
		if info.IsDir() {
			files, err := rules.ListScriptFiles(arg)
			if err != nil {
				return err
			}
			paths = append(paths, files...)
		} else {
			paths = append(paths, arg)
		}
	}
	if len(paths) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "no script files found")
		}
		return nil
	}

	sc := rules.NewScanner()
	reports, err := sc.ScanFiles(cmd.Context(), paths, jobs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	total := 0
	failed := false
	for _, rep := range reports {
		if rep.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", rep.Path, rep.Err)
			failed = true
			continue
		}
		for _, is := range rep.Issues {
			fmt.Fprintf(out, "%s:%d: %s %s: %s\n", rep.Path, is.Line, severityLabel(is.Severity), is.RuleID, is.Message)
			if is.Suggestion != "" && !quiet {
				fmt.Fprintf(out, "    suggestion: %s\n", is.Suggestion)
			}
			total++
			if is.Severity == rules.SevError {
				failed = true
			}
		}
	}
	if !quiet {
		fmt.Fprintf(out, "%d findings in %d files\n", total, len(reports))
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

func severityLabel(sev rules.Severity) string {
	switch sev {
	case rules.SevError:
		return errorColor.Sprint(sev.String())
	case rules.SevWarning:
		return warningColor.Sprint(sev.String())
	default:
		return infoColor.Sprint(sev.String())
	}
}
