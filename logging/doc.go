// Package logging provides a minimal logging interface and adapters for
// EngineMesh.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the pool, the engine workers and the streaming sessions
// use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - MeshLogger with analysis-domain convenience helpers
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	mesh := enginemesh.New(func(o *enginemesh.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
