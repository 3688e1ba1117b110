package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"retrace/internal/session"
	"retrace/internal/ui"
)

var replayCmd = &cobra.Command{
	Use:   "replay <session.retrace>",
	Short: "Step through a saved session in the terminal",
	Long:  `Open a saved session in an interactive viewer: n/space steps forward, p steps back, g/G jump to the ends, q quits`,
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	if filepath.Ext(args[0]) != ".retrace" {
		return fmt.Errorf("replay expects a saved session (*.retrace), got %q", args[0])
	}
	sess, err := session.Load(args[0])
	if err != nil {
		return err
	}

	model := ui.NewReplayModel(sess)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
