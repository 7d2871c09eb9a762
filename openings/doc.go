// Package openings implements a TSV-backed opening book. Lines are indexed
// into a trie keyed by UCI move so a lookup walks the played moves once and
// returns the deepest named opening plus the popular continuations from that
// point. Books are immutable after loading and safe for concurrent use.
package openings
