package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"retrace/internal/engine"
	"retrace/internal/project"
	"retrace/internal/session"
	"retrace/internal/source"
	"retrace/internal/trace"
)

// addEngineFlags registers the engine tuning flags shared by commands that
// execute snippets. Zero means "use the engine default".
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("hotspot-threshold", engine.DefaultHotspotThreshold, "minimum visits before a line counts as hot")
	cmd.Flags().Duration("eval-timeout", 0, "wall-clock limit for one evaluation (0 = none)")
	cmd.Flags().Int("max-steps", 0, "abort after this many trace steps (0 = none)")
}

// resolveHotspotThreshold merges the flag with the manifest value. The flag
// wins when the user set it.
func resolveHotspotThreshold(cmd *cobra.Command, manifest *project.Manifest) (int, error) {
	threshold, err := cmd.Flags().GetInt("hotspot-threshold")
	if err != nil {
		return 0, fmt.Errorf("failed to get hotspot-threshold flag: %w", err)
	}
	if manifest != nil && !cmd.Flags().Changed("hotspot-threshold") && manifest.Config.Engine.HotspotThreshold > 0 {
		threshold = manifest.Config.Engine.HotspotThreshold
	}
	return threshold, nil
}

// buildEngine assembles an engine from flags, with manifest values filling
// in for flags the user did not set.
func buildEngine(cmd *cobra.Command, manifest *project.Manifest, extra ...engine.Option) (*engine.Engine, error) {
	flags := cmd.Flags()

	threshold, err := resolveHotspotThreshold(cmd, manifest)
	if err != nil {
		return nil, err
	}
	timeout, err := flags.GetDuration("eval-timeout")
	if err != nil {
		return nil, fmt.Errorf("failed to get eval-timeout flag: %w", err)
	}
	maxSteps, err := flags.GetInt("max-steps")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-steps flag: %w", err)
	}

	if manifest != nil {
		ec := manifest.Config.Engine
		if !flags.Changed("eval-timeout") && ec.EvalTimeoutMS > 0 {
			timeout = ec.EvalTimeout()
		}
		if !flags.Changed("max-steps") && ec.MaxSteps > 0 {
			maxSteps = ec.MaxSteps
		}
	}

	opts := []engine.Option{
		engine.WithHotspotThreshold(threshold),
		engine.WithEvalTimeout(timeout),
		engine.WithMaxSteps(maxSteps),
		engine.WithDiagTracer(trace.FromContext(cmd.Context())),
	}
	opts = append(opts, extra...)
	return engine.New(opts...), nil
}

// loadManifest resolves the nearest retrace.toml. A missing manifest is
// fine; a broken one is an error.
func loadManifest() (*project.Manifest, error) {
	manifest, ok, err := project.Load(".")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return manifest, nil
}

// loadSession resolves an inspection target. A *.retrace file is a saved
// session; anything else is a script that gets executed on the spot.
func loadSession(cmd *cobra.Command, manifest *project.Manifest, path string) (*session.Session, error) {
	if filepath.Ext(path) == ".retrace" {
		return session.Load(path)
	}

	eng, err := buildEngine(cmd, manifest)
	if err != nil {
		return nil, err
	}
	snip, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	eng.SetSnippet(snip, engine.LanguageJavaScript)
	res, err := eng.Execute()
	if err != nil {
		return nil, err
	}
	return session.Capture(eng, res), nil
}
