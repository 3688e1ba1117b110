package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"

	"retrace/internal/server"
	"retrace/internal/trace"
)

var serveCmd = &cobra.Command{
	Use:   "serve [flags]",
	Short: "Serve snippet execution over HTTP",
	Long:  `Start an HTTP server exposing execution and inspection endpoints, Prometheus metrics, and optional static file hosting`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	addEngineFlags(serveCmd)
	serveCmd.Flags().String("addr", server.DefaultAddr, "listen address")
	serveCmd.Flags().String("static", "", "serve static files from this directory")
	serveCmd.Flags().String("log-file", "", "also write logs to this file")
}

func runServe(cmd *cobra.Command, _ []string) error {
	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, manifest)
	if err != nil {
		return err
	}
	defer cleanup()

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("failed to get addr flag: %w", err)
	}
	static, err := cmd.Flags().GetString("static")
	if err != nil {
		return fmt.Errorf("failed to get static flag: %w", err)
	}
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return fmt.Errorf("failed to get log-file flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	if manifest != nil {
		sc := manifest.Config.Serve
		if !cmd.Flags().Changed("addr") && sc.Addr != "" {
			addr = sc.Addr
		}
		if !cmd.Flags().Changed("static") && sc.StaticDir != "" {
			static = manifest.StaticPath()
		}
	}

	logger, closeLogs, err := buildServeLogger(cmd.ErrOrStderr(), logFile, quiet)
	if err != nil {
		return err
	}
	defer closeLogs()

	eng, err := buildEngine(cmd, manifest)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Engine:    eng,
		Logger:    logger,
		Diag:      trace.FromContext(cmd.Context()),
		StaticDir: static,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, addr)
}

// buildServeLogger fans log records out to stderr and, when requested, a
// log file.
func buildServeLogger(stderr io.Writer, logFile string, quiet bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelWarn
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}
	closeLogs := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
		closeLogs = func() {
			f.Close() //nolint:errcheck
		}
	}

	return slog.New(slogmulti.Fanout(handlers...)), closeLogs, nil
}
