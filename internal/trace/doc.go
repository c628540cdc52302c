// Package trace records what a jtidy run did and how long it took.
//
// Enable tracing via command-line flags:
//
//	jtidy brace --trace=- --trace-level=detail src/
//
// # Tracers
//
//   - Nop: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to a file or stderr
//   - RingTracer: keeps the last events in memory, dumped when a run fails
//   - MultiTracer: combines several tracers
//
// # Levels and scopes
//
// LevelPhase emits ScopeDriver and ScopePass spans, LevelDetail adds one
// span per file (ScopeFile), LevelDebug adds per-line points (ScopeLine).
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "brace", parentID)
//	defer span.End("")
package trace
