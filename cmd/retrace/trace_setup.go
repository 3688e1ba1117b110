package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"retrace/internal/project"
	"retrace/internal/trace"
)

// tailEvents is how much of the ring a tee dump shows on stderr at exit.
const tailEvents = 20

// setupTracing inspects the diag-trace flags and initializes the tracer.
// Manifest [trace] settings fill in for flags the user did not set.
// It returns a cleanup function and an error if initialization fails.
func setupTracing(cmd *cobra.Command, manifest *project.Manifest) (func(), error) {
	root := cmd.Root()

	levelStr, err := root.PersistentFlags().GetString("diag-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get diag-trace flag: %w", err)
	}
	output, err := root.PersistentFlags().GetString("diag-trace-output")
	if err != nil {
		return nil, fmt.Errorf("failed to get diag-trace-output flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("diag-trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get diag-trace-mode flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("diag-trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get diag-trace-ring-size flag: %w", err)
	}

	if manifest != nil {
		tc := manifest.Config.Trace
		if !root.PersistentFlags().Changed("diag-trace") && tc.Level != "" {
			levelStr = tc.Level
		}
		if !root.PersistentFlags().Changed("diag-trace-output") && tc.Output != "" {
			output = tc.Output
		}
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	if level == trace.LevelOff {
		ctx := trace.WithTracer(cmd.Context(), trace.Nop)
		cmd.SetContext(ctx)
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	if output == "" {
		output = "-"
	}
	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: output,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	cleanup := func() {
		dumpRing(cmd, tracer, mode, output)
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}

	return cleanup, nil
}

// dumpRing writes buffered events out at exit. Ring mode dumps everything to
// the configured destination; tee mode already streamed the full record, so
// only a short tail goes to stderr for a quick look.
func dumpRing(cmd *cobra.Command, tracer trace.Tracer, mode trace.StorageMode, output string) {
	switch mode {
	case trace.ModeRing:
		ring, ok := tracer.(*trace.RingTracer)
		if !ok {
			return
		}
		format := trace.FormatText
		w := io.Writer(cmd.ErrOrStderr())
		if output != "" && output != "-" {
			f, err := os.Create(output)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
				return
			}
			defer f.Close() //nolint:errcheck
			w = f
			if strings.HasSuffix(output, ".ndjson") || strings.HasSuffix(output, ".jsonl") {
				format = trace.FormatNDJSON
			}
		}
		if err := ring.Dump(w, format); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
		}

	case trace.ModeBoth:
		tee, ok := tracer.(*trace.TeeTracer)
		if !ok {
			return
		}
		events := tee.Ring().Tail(tailEvents)
		if len(events) == 0 {
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: last %d events:\n", len(events))
		for i := range events {
			_, _ = cmd.ErrOrStderr().Write(trace.FormatEvent(&events[i], trace.FormatText)) //nolint:errcheck
		}
	}
}
