package pool

import "time"

// Limiter caps the number of concurrently active analysis sessions to
// protect worker-process capacity. It is a channel-backed semaphore: Acquire
// blocks up to a timeout for a slot, Release frees one. There is no fairness
// guarantee between waiters.
type Limiter struct {
	slots chan struct{}
}

// NewLimiter creates a limiter admitting at most maxConcurrent sessions.
// Values below one are clamped to one.
func NewLimiter(maxConcurrent int) *Limiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Limiter{slots: make(chan struct{}, maxConcurrent)}
}

// Acquire blocks until a slot frees up or the timeout elapses. It returns
// whether a slot was granted, the in-flight count after the attempt and the
// elapsed wait.
func (l *Limiter) Acquire(timeout time.Duration) (ok bool, inflight int, waited time.Duration) {
	start := time.Now()

	select {
	case l.slots <- struct{}{}:
		return true, len(l.slots), time.Since(start)
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return true, len(l.slots), time.Since(start)
	case <-timer.C:
		return false, len(l.slots), time.Since(start)
	}
}

// Release frees one slot, waking a waiter. Calling Release with no slot held
// is a no-op; the in-flight count never goes negative.
func (l *Limiter) Release() {
	select {
	case <-l.slots:
	default:
	}
}

// Inflight returns the number of currently admitted sessions.
func (l *Limiter) Inflight() int { return len(l.slots) }

// Capacity returns the configured maximum.
func (l *Limiter) Capacity() int { return cap(l.slots) }
