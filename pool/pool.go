package pool

import (
	"errors"
	"sync"

	"github.com/hupe1980/enginemesh/logging"
)

// ErrExhausted is returned by Acquire when every handle is checked out and
// the created count has reached the cap. Admission control normally bounds
// concurrency to the same cap, so hitting this indicates a misconfiguration.
var ErrExhausted = errors.New("worker pool exhausted")

// Worker is the minimal handle contract the pool manages. Quit terminates
// the underlying process gracefully.
type Worker interface {
	Quit() error
}

// Factory spawns a new worker process. Invoked by Acquire without the pool
// lock held so slow spawns do not serialize other callers.
type Factory func() (Worker, error)

// Options configures a WorkerPool.
type Options struct {
	// Logger receives lifecycle diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// WorkerPool manages a bounded set of reusable engine worker handles. Idle
// handles are reused LIFO; new ones are spawned lazily up to the cap. A
// handle is owned by at most one caller at a time.
type WorkerPool struct {
	mu      sync.Mutex
	max     int
	created int
	idle    []Worker
	logger  logging.Logger
}

// NewWorkerPool creates a pool with at most maxWorkers live handles. Values
// below one are clamped to one.
func NewWorkerPool(maxWorkers int, optFns ...func(o *Options)) *WorkerPool {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{max: maxWorkers, logger: opts.Logger}
}

// Acquire returns an idle handle when one exists, spawns a new worker while
// below the cap, and fails with ErrExhausted otherwise. Spawn failures roll
// back the created count so a later caller may retry.
func (p *WorkerPool) Acquire(factory Factory) (Worker, error) {
	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		w := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return w, nil
	}
	if p.created >= p.max {
		p.mu.Unlock()
		return nil, ErrExhausted
	}
	p.created++
	p.mu.Unlock()

	w, err := factory()
	if err != nil {
		p.mu.Lock()
		if p.created > 0 {
			p.created--
		}
		p.mu.Unlock()
		p.logger.Error("worker spawn failed", "error", err)
		return nil, err
	}
	p.logger.Debug("worker spawned", "created", p.Created())
	return w, nil
}

// Release returns a handle to the pool. With discard set (the worker
// reported a process-level error) the process is terminated and the created
// count decremented so a replacement may be spawned.
func (p *WorkerPool) Release(w Worker, discard bool) {
	if discard {
		_ = w.Quit()
		p.mu.Lock()
		if p.created > 0 {
			p.created--
		}
		p.mu.Unlock()
		p.logger.Debug("worker discarded", "created", p.Created())
		return
	}

	p.mu.Lock()
	p.idle = append(p.idle, w)
	p.mu.Unlock()
}

// Drain terminates all idle handles and resets the created count. Invoked
// once at process shutdown; handles currently checked out by active sessions
// are not reclaimed.
func (p *WorkerPool) Drain() {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.created -= len(idle)
	if p.created < 0 {
		p.created = 0
	}
	p.mu.Unlock()

	for _, w := range idle {
		_ = w.Quit()
	}
	p.logger.Info("worker pool drained", "closed", len(idle))
}

// Created returns the number of live worker handles (idle plus checked out).
func (p *WorkerPool) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

// Idle returns the number of handles currently parked in the pool.
func (p *WorkerPool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
