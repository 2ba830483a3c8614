// Package trace records spans and instant events for target resolution and
// runtime composition.
//
// Enable tracing from the command line:
//
//	kernc runtime --trace=- --trace-level=detail -o rt.ll
//
// Tracers:
//
//   - Nop: zero overhead when disabled
//   - StreamTracer: writes each event as it happens
//   - RingTracer: keeps the last N events for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// Levels gate scopes: LevelPhase emits driver and pass spans (resolve,
// select, link), LevelDetail adds one span per linked module, LevelDebug adds
// per-symbol merge decisions.
//
// The tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "compose", 0)
//	defer span.End("")
package trace
