// Package trace provides a tracing subsystem for the region checker.
//
// The trace package enables tracking of analysis passes, per-function
// processing, and individual partition operations to help diagnose
// performance issues and stuck fixpoint loops.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	regionck check --trace=- --trace-level=phase mymodule.lirb
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - NopTracer: Zero-overhead no-op tracer when disabled
//   - StreamTracer: Immediate write to output (file/stderr)
//   - RingTracer: Circular buffer for crash dumps
//   - MultiTracer: Combines multiple tracers
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: No tracing
//   - LevelError: Only crash dumps
//   - LevelPhase: Driver and pass boundaries
//   - LevelDetail: Function-level events
//   - LevelDebug: Everything including partition ops
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeDriver: Top-level CLI operations
//   - ScopePass: Analysis passes (validate, translate, solve, diagnose)
//   - ScopeFunction: Per-function processing
//   - ScopeOp: Instruction/partition-op level
//
// # Context Propagation
//
// Tracers are propagated through the analysis pipeline via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "solve", parentID)
//	defer span.End("")
package trace
