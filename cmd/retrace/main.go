package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"retrace/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "retrace",
	Short: "Stepped JavaScript execution with a recorded trace",
	Long:  `Retrace instruments JavaScript snippets line by line, runs them in a sandbox, and records every visit, assignment and console call for inspection`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(flowCmd)
	rootCmd.AddCommand(hotspotsCmd)
	rootCmd.AddCommand(varsCmd)
	rootCmd.AddCommand(errorsCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("diag-trace", "off", "diagnostics trace level (off|phase|hook|debug)")
	rootCmd.PersistentFlags().String("diag-trace-output", "", "diagnostics trace destination (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("diag-trace-mode", "stream", "diagnostics trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("diag-trace-ring-size", 4096, "events kept in the ring buffer")

	rootCmd.PersistentPreRunE = applyColorMode

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyColorMode sets the global color switch before any command runs.
func applyColorMode(cmd *cobra.Command, _ []string) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
