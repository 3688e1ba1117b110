// Package trace provides the diagnostics subsystem for the retrace engine.
//
// This is not the execution trace the engine records for users (that lives in
// internal/engine); it is the developer-facing instrumentation of the engine
// itself: run pipeline phases, hook activity, and timing, to help diagnose
// slow or hanging evaluations.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	retrace run --diag-trace=phase --diag-trace-output=- script.js
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - NopTracer: Zero-overhead no-op tracer when disabled
//   - StreamTracer: Immediate write to output (file/stderr)
//   - RingTracer: Circular buffer for post-mortem dumps
//   - TeeTracer: Stream and ring at the same time
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: No tracing
//   - LevelPhase: Run pipeline boundaries (rewrite, compile, evaluate, analyze)
//   - LevelHook: Per-hook events (line visits, captures, console writes)
//   - LevelDebug: Everything
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeSession: Top-level operations (execute, step, scan)
//   - ScopePhase: Run pipeline phases
//   - ScopeHook: Individual hook events
//
// # Context Propagation
//
// Tracers are propagated through request handling via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeSession, "execute", parentID)
//	defer span.End("")
package trace
