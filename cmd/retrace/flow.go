package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"retrace/internal/flow"
)

var flowCmd = &cobra.Command{
	Use:   "flow [flags] <file.js|session.retrace>",
	Short: "Show the execution flow graph",
	Long:  `Build the line-level flow graph for a snippet or a saved session: an aligned listing by default, DOT text with --dot, or an SVG file with --svg`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFlowGraph,
}

func init() {
	addEngineFlags(flowCmd)
	flowCmd.Flags().Bool("dot", false, "print the graph as DOT")
	flowCmd.Flags().String("svg", "", "render the graph to this SVG file")
}

func runFlowGraph(cmd *cobra.Command, args []string) error {
	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, manifest)
	if err != nil {
		return err
	}
	defer cleanup()

	asDOT, err := cmd.Flags().GetBool("dot")
	if err != nil {
		return fmt.Errorf("failed to get dot flag: %w", err)
	}
	svgPath, err := cmd.Flags().GetString("svg")
	if err != nil {
		return fmt.Errorf("failed to get svg flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	sess, err := loadSession(cmd, manifest, args[0])
	if err != nil {
		return err
	}
	graph := flow.Build(sess.Snippet(), sess.ExecutedLines())

	switch {
	case svgPath != "":
		if err := graph.RenderSVG(svgPath); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "flow graph rendered to %s\n", svgPath)
		}
	case asDOT:
		return graph.WriteDOT(cmd.OutOrStdout())
	default:
		printFlowListing(cmd.OutOrStdout(), graph)
	}
	return nil
}

// printFlowListing prints one node per line, executed lines marked with *.
func printFlowListing(out io.Writer, g *flow.Graph) {
	for _, n := range g.Nodes {
		marker := " "
		if n.Executed {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %3d  %-10s  %s\n", marker, n.Line, n.Category, n.Code)
	}
	fmt.Fprintf(out, "%d nodes, %d edges, %d executed\n", len(g.Nodes), len(g.Edges), g.ExecutedCount())
}
