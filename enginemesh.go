// Package enginemesh provides a high-level façade over the streaming analysis
// subsystem (admission limiting, the engine worker pool, streaming strategies
// and snapshot persistence) enabling rapid construction of chess analysis
// services. Most applications interact with this package by:
//  1. Creating a Mesh via New() (optionally pointing it at an engine binary)
//  2. Starting analyses asynchronously (Analyze) or synchronously (AnalyzeSync)
//  3. Shutting the mesh down to quit pooled engine processes
//
// The façade delegates orchestration to stream.Session while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a durable snapshot
// store and a structured logger.
package enginemesh

import (
	"context"
	"time"

	"github.com/hupe1980/enginemesh/core"
	"github.com/hupe1980/enginemesh/engine"
	"github.com/hupe1980/enginemesh/logging"
	"github.com/hupe1980/enginemesh/pool"
	"github.com/hupe1980/enginemesh/snapshot"
	"github.com/hupe1980/enginemesh/stream"
)

// Options configures the Mesh instance.
type Options struct {
	// MaxConcurrentSessions limits the number of analysis streams that can
	// execute simultaneously. Requests beyond the limit wait up to
	// AcquireTimeout and then fail with engine_busy. Values below 1 are
	// treated as 1.
	MaxConcurrentSessions int

	// AcquireTimeout bounds how long a request waits for an admission slot.
	AcquireTimeout time.Duration

	// EventBufferSize sets the channel buffer size for emitted events.
	// Larger buffers reduce blocking but increase memory usage.
	EventBufferSize int

	// EnginePath points at the UCI engine binary. Empty means look up the
	// default binary name on PATH.
	EnginePath string

	// EngineOptions are UCI options applied to every spawned engine process
	// (for example Threads or Hash).
	EngineOptions map[string]string

	// ResolveBinary overrides binary resolution, mainly for tests.
	ResolveBinary func() (string, error)

	// NewWorker overrides worker creation, mainly for tests.
	NewWorker func(path string) (pool.Worker, error)

	// LoadShed configures degradation under high concurrency.
	LoadShed stream.ShedConfig

	// SnapshotStore persists completed analyses when set.
	SnapshotStore snapshot.Store

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Mesh is the high-level façade aggregating the admission limiter, the engine
// worker pool and snapshot persistence.
type Mesh struct {
	opts    Options
	limiter *pool.Limiter
	workers *pool.WorkerPool
}

// New creates a new Mesh instance with optional overrides. Any unset
// collaborator is initialized with a sensible default.
func New(optFns ...func(o *Options)) *Mesh {
	opts := Options{
		MaxConcurrentSessions: 2,
		AcquireTimeout:        4 * time.Second,
		EventBufferSize:       32,
		LoadShed:              stream.DefaultShedConfig(),
		Logger:                logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxConcurrentSessions < 1 {
		opts.MaxConcurrentSessions = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.ResolveBinary == nil {
		path := opts.EnginePath
		opts.ResolveBinary = func() (string, error) { return engine.ResolveBinary(path) }
	}
	if opts.NewWorker == nil {
		logger := opts.Logger
		engineOpts := opts.EngineOptions
		opts.NewWorker = func(path string) (pool.Worker, error) {
			return engine.NewUCIWorker(path, func(o *engine.UCIWorkerOptions) {
				o.Logger = logger
				if len(engineOpts) > 0 {
					o.EngineOptions = engineOpts
				}
			})
		}
	}

	return &Mesh{
		opts:    opts,
		limiter: pool.NewLimiter(opts.MaxConcurrentSessions),
		workers: pool.NewWorkerPool(opts.MaxConcurrentSessions, func(o *pool.Options) {
			o.Logger = opts.Logger
		}),
	}
}

// Analyze starts an asynchronous analysis stream. It returns the session ID
// and the event channel, which carries zero or more depth updates followed by
// exactly one terminal event and is then closed. The optional signal cancels
// the stream cooperatively; a nil signal disables caller-side cancellation.
func (m *Mesh) Analyze(ctx context.Context, req core.AnalysisRequest, signal *core.CancelSignal) (string, <-chan core.Event) {
	events := make(chan core.Event, m.opts.EventBufferSize)
	out := make(chan core.Event, m.opts.EventBufferSize)

	session := stream.NewSession(stream.Config{
		Request:        req,
		Signal:         signal,
		Limiter:        m.limiter,
		Workers:        m.workers,
		AcquireTimeout: m.opts.AcquireTimeout,
		ResolveBinary:  m.opts.ResolveBinary,
		NewWorker:      m.opts.NewWorker,
		Shed:           m.opts.LoadShed,
		Logger:         m.opts.Logger,
		Out:            events,
	})

	go func() {
		session.Run(ctx)
		close(events)
	}()

	go func() {
		defer close(out)
		for ev := range events {
			if complete, ok := ev.(core.Complete); ok {
				m.saveSnapshot(complete)
			}
			out <- ev
		}
	}()

	return session.ID(), out
}

// AnalyzeSync is a synchronous helper that drains the event stream,
// accumulates events and returns the session ID. A context cancellation
// returns the events collected so far together with the context error.
func (m *Mesh) AnalyzeSync(ctx context.Context, req core.AnalysisRequest, signal *core.CancelSignal) (string, []core.Event, error) {
	if signal == nil {
		signal = &core.CancelSignal{}
	}
	sessionID, events := m.Analyze(ctx, req, signal)

	var collected []core.Event
	for {
		select {
		case <-ctx.Done():
			// Unblock the session goroutine and let it finish on its own.
			signal.Cancel()
			return sessionID, collected, ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return sessionID, collected, nil
			}
			collected = append(collected, ev)
		}
	}
}

// Snapshot returns the persisted result for a finished session, when a
// snapshot store is configured.
func (m *Mesh) Snapshot(sessionID string) (*snapshot.Snapshot, error) {
	if m.opts.SnapshotStore == nil {
		return nil, snapshot.ErrNotFound
	}
	return m.opts.SnapshotStore.BySession(sessionID)
}

// Inflight reports the number of currently admitted analysis streams.
func (m *Mesh) Inflight() int { return m.limiter.Inflight() }

// Capacity reports the configured concurrent session limit.
func (m *Mesh) Capacity() int { return m.limiter.Capacity() }

// Shutdown quits every idle pooled engine process. In-flight sessions keep
// their workers until they finish.
func (m *Mesh) Shutdown() { m.workers.Drain() }

func (m *Mesh) saveSnapshot(ev core.Complete) {
	if m.opts.SnapshotStore == nil {
		return
	}
	side, err := core.SideToMove(ev.Position)
	if err != nil {
		side = ""
	}
	if err := m.opts.SnapshotStore.Save(snapshot.FromComplete(ev, side)); err != nil {
		m.opts.Logger.Warn("failed to persist analysis snapshot",
			"session_id", ev.SessionID, "error", err.Error())
	}
}
