// Package core provides the foundational domain types used by EngineMesh. It
// defines the core abstractions for:
//
//   - AnalysisRequest (validated parameters for one streamed analysis)
//   - Events (the typed depth_update / analysis_complete / analysis_error
//     protocol consumed by transports)
//   - Lines (ranked principal variations with centipawn or mate evaluations)
//   - StreamError (the stable error taxonomy with retryability)
//   - CancelSignal (cooperative caller-side cancellation)
//
// The package intentionally keeps implementation concerns (engine processes,
// pooling, streaming strategies, transports) out of scope, exposing small
// value types so higher layers can be composed and tested independently.
package core
