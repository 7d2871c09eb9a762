// Package pool provides the two capacity primitives of the analysis
// subsystem: Limiter, which bounds the number of concurrently admitted
// sessions with a timed acquire, and WorkerPool, which manages a capped set
// of reusable engine worker handles with lazy spawning, discard-on-failure
// and shutdown draining. Both are explicitly constructed service objects
// owned by the hosting process; there is no ambient global state.
package pool
