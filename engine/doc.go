// Package engine abstracts chess engine worker processes. It defines the two
// analysis capability interfaces (SteppedAnalyzer for discrete per-depth
// calls, ContinuousAnalyzer for asynchronous incremental updates), the raw
// InfoRecord snapshot type shared by both, and a UCI protocol implementation
// driving one external engine process over stdin/stdout.
//
// A Worker's capabilities are resolved once at construction; sessions select
// a streaming strategy by asking the worker what it exposes instead of
// probing per call. Ownership of a worker is exclusive: the pool holds it
// while idle and exactly one session drives it while checked out.
package engine
