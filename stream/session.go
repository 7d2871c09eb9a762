package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/enginemesh/core"
	"github.com/hupe1980/enginemesh/engine"
	"github.com/hupe1980/enginemesh/logging"
	"github.com/hupe1980/enginemesh/pool"
)

// Config carries the collaborators and parameters of one Session.
type Config struct {
	// Request holds the analysis parameters; validated by Run before any
	// resource is acquired.
	Request core.AnalysisRequest
	// Signal is the caller-owned cancellation flag. May be nil.
	Signal *core.CancelSignal
	// Limiter bounds concurrent sessions.
	Limiter *pool.Limiter
	// Workers owns the engine worker handles.
	Workers *pool.WorkerPool
	// AcquireTimeout bounds the admission wait.
	AcquireTimeout time.Duration
	// ResolveBinary locates the engine binary before admission.
	ResolveBinary func() (string, error)
	// NewWorker spawns a worker process for the resolved binary path.
	NewWorker func(path string) (pool.Worker, error)
	// Shed configures degradation under load.
	Shed ShedConfig
	// Logger receives session diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
	// Out receives the event stream. The session never closes it.
	Out chan<- core.Event
}

// Session orchestrates one analysis request end-to-end: validation,
// admission, worker acquisition, strategy streaming and finalization. It is
// ephemeral, scoped to one stream, and must be run exactly once. Resource
// release is unconditional on every exit path once a resource was acquired.
type Session struct {
	id  string
	cfg Config
	req core.AnalysisRequest

	sideToMove string
	lastDepth  int
	lastBest   string
	lastLines  []core.Line
	lastEmit   time.Time
	updates    int

	logger logging.Logger
}

// NewSession prepares a session with a fresh identifier.
func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Session{
		id:     core.NewSessionID(),
		cfg:    cfg,
		req:    cfg.Request,
		logger: logger,
	}
}

// ID returns the session identifier carried by every emitted event.
func (s *Session) ID() string { return s.id }

// Run drives the session to its terminal event. States advance strictly
// forward: validating, admitting, acquiring a worker, streaming, finalizing.
// Failures before admission emit exactly one error event and stop; failures
// afterwards release the limiter slot and the worker handle (discarding it
// on process-level engine errors) before the terminal event goes out.
func (s *Session) Run(ctx context.Context) {
	started := time.Now()

	side, err := s.req.Validate()
	if err != nil {
		s.emitError(err)
		return
	}
	s.sideToMove = side

	path, err := s.cfg.ResolveBinary()
	if err != nil {
		s.emitError(err)
		return
	}

	ok, inflight, waited := s.cfg.Limiter.Acquire(s.cfg.AcquireTimeout)
	if !ok {
		s.emitError(core.NewStreamError(core.ErrCodeEngineBusy, true, fmt.Sprintf(
			"analysis capacity is currently full; timed out after waiting %dms for an engine slot",
			waited.Milliseconds())))
		return
	}

	reason, runErr := s.runWithWorker(ctx, path, inflight)
	s.cfg.Limiter.Release()

	if runErr != nil {
		s.emitError(runErr)
		return
	}
	if s.cfg.Signal.Cancelled() {
		reason = core.ReasonClientCancelled
	}
	s.emitComplete(reason)
	s.logger.Debug("analysis stream finished",
		"session_id", s.id, "reason", string(reason), "final_depth", s.lastDepth,
		"depth_updates", s.updates, "duration", time.Since(started))
}

// runWithWorker owns the worker handle for the streaming phase. The deferred
// release runs before the caller emits the terminal event, so finalization
// ordering (release, then terminal event) holds on every path.
func (s *Session) runWithWorker(ctx context.Context, path string, inflight int) (core.Reason, error) {
	w, err := s.cfg.Workers.Acquire(func() (pool.Worker, error) { return s.cfg.NewWorker(path) })
	if err != nil {
		if errors.Is(err, pool.ErrExhausted) {
			return "", core.WrapStreamError(core.ErrCodeEngineBusy, true, "no engine worker available", err)
		}
		if se, ok := core.AsStreamError(err); ok {
			return "", se
		}
		return "", core.WrapStreamError(core.ErrCodeEngineError, true, "failed to start engine worker", err)
	}

	discard := false
	defer func() { s.cfg.Workers.Release(w, discard) }()

	worker, ok := w.(engine.Worker)
	if !ok {
		return "", core.NewStreamError(core.ErrCodeStreamFailed, false,
			"worker handle does not expose analysis capabilities")
	}

	budget := s.cfg.Shed.Apply(s.req, inflight, s.cfg.Limiter.Capacity())

	var reason core.Reason
	var runErr error
	switch {
	case hasContinuous(worker):
		analyzer, _ := worker.Continuous()
		reason, runErr = s.runContinuous(ctx, analyzer, budget)
	case hasStepped(worker):
		analyzer, _ := worker.Stepped()
		reason, runErr = s.runStepped(ctx, analyzer, budget)
	default:
		runErr = core.NewStreamError(core.ErrCodeStreamFailed, false,
			"engine worker exposes no analysis capability")
	}

	if runErr != nil {
		if se, ok := core.AsStreamError(runErr); ok && se.Code == core.ErrCodeEngineError {
			discard = true
		}
		return "", runErr
	}
	return reason, nil
}

func hasContinuous(w engine.Worker) bool { _, ok := w.Continuous(); return ok }
func hasStepped(w engine.Worker) bool    { _, ok := w.Stepped(); return ok }

// cancelled reports cooperative cancellation from either the caller's signal
// or the surrounding context.
func (s *Session) cancelled(ctx context.Context) bool {
	return s.cfg.Signal.Cancelled() || ctx.Err() != nil
}

// sleepThrottle enforces the minimum inter-emit interval by sleeping the
// remaining deficit.
func (s *Session) sleepThrottle() {
	if s.lastEmit.IsZero() {
		return
	}
	if deficit := s.req.Throttle - time.Since(s.lastEmit); deficit > 0 {
		time.Sleep(deficit)
	}
}

// withinThrottle reports whether an emission now would violate the minimum
// inter-emit interval.
func (s *Session) withinThrottle() bool {
	return !s.lastEmit.IsZero() && time.Since(s.lastEmit) < s.req.Throttle
}

// emitDepthUpdate sends one depth update and records the running state.
// Depth values are clamped to be non-decreasing within the session.
func (s *Session) emitDepthUpdate(depth int, budget Budget, top engine.InfoRecord, lines []core.Line) {
	if depth < s.lastDepth {
		depth = s.lastDepth
	}

	ev := core.NewDepthUpdate(s.id)
	ev.Position = s.req.FEN
	ev.SideToMove = s.sideToMove
	ev.Depth = depth
	ev.VariationCount = budget.MultiPV
	ev.Lines = lines
	if top.SelDepth > 0 {
		sd := top.SelDepth
		ev.SelDepth = &sd
	}
	if top.NPS > 0 {
		nps := top.NPS
		ev.NodesPerSecond = &nps
	}
	if top.Nodes > 0 {
		nodes := top.Nodes
		ev.Nodes = &nodes
	}
	if len(lines) > 0 {
		ev.BestMove = lines[0].Move
	}

	s.cfg.Out <- ev

	s.updates++
	s.lastDepth = depth
	s.lastBest = ev.BestMove
	s.lastLines = lines
	s.lastEmit = time.Now()
}

// emitComplete sends the successful terminal event.
func (s *Session) emitComplete(reason core.Reason) {
	finalDepth := s.lastDepth
	if finalDepth == 0 {
		finalDepth = s.req.MinDepth
	}

	ev := core.NewComplete(s.id)
	ev.Position = s.req.FEN
	ev.FinalDepth = finalDepth
	ev.BestMove = s.lastBest
	ev.Lines = s.lastLines
	ev.Reason = reason
	s.cfg.Out <- ev
}

// emitError sends the failing terminal event, wrapping unexpected faults as
// stream_failed. No partial internal state is exposed.
func (s *Session) emitError(err error) {
	se, ok := core.AsStreamError(err)
	if !ok {
		se = core.WrapStreamError(core.ErrCodeStreamFailed, false, "analysis stream failed", err)
	}
	s.logger.Warn("analysis stream error",
		"session_id", s.id, "code", string(se.Code), "error", se.Error())
	s.cfg.Out <- core.NewErrorEvent(s.id, se)
}

// topRecord returns the rank-1 record (or the first available) used for
// depth and search statistics.
func topRecord(records []engine.InfoRecord) engine.InfoRecord {
	for _, rec := range records {
		if rec.Rank <= 1 {
			return rec
		}
	}
	if len(records) > 0 {
		return records[0]
	}
	return engine.InfoRecord{}
}
