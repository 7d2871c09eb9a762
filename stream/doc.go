// Package stream implements the analysis streaming subsystem: the line
// ranker converting raw engine snapshots into ordered principal variations,
// the two depth-progression strategies (stepped per-depth calls and
// continuous incremental updates), load shedding under high concurrency, and
// the Session state machine orchestrating one request end-to-end with
// guaranteed resource release.
//
// Both strategies produce observably equivalent event streams: zero or more
// depth updates with non-decreasing depth followed by exactly one terminal
// event.
package stream
