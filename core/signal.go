package core

import "sync/atomic"

// CancelSignal is a cooperative cancellation flag. The caller constructs and
// sets it; the analysis session only reads it, polling at loop boundaries.
// A nil *CancelSignal is valid and never reports cancellation.
type CancelSignal struct {
	set atomic.Bool
}

// NewCancelSignal returns an unset signal.
func NewCancelSignal() *CancelSignal { return &CancelSignal{} }

// Cancel requests termination of the stream. Safe for concurrent use and
// idempotent.
func (s *CancelSignal) Cancel() {
	if s != nil {
		s.set.Store(true)
	}
}

// Cancelled reports whether cancellation has been requested.
func (s *CancelSignal) Cancelled() bool {
	return s != nil && s.set.Load()
}
