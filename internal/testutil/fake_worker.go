package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/enginemesh/engine"
)

// FakeSteppedWorker is an engine worker whose stepped analysis is driven by a
// caller-provided record function. It satisfies both the pool worker and the
// engine worker contracts.
type FakeSteppedWorker struct {
	// RecordsFn produces the records returned for one bounded call. When nil,
	// a single rank-1 record at the requested depth is returned.
	RecordsFn func(depth, multiPV int) []engine.InfoRecord
	// AnalyzeErr, when set, fails every call.
	AnalyzeErr error
	// Delay is slept inside each call to simulate search time.
	Delay time.Duration
	// QuitErr is returned from Quit.
	QuitErr error

	mu       sync.Mutex
	calls    int
	quits    int
	lastArgs SteppedCall
}

// SteppedCall captures the arguments of the most recent analysis call.
type SteppedCall struct {
	FEN      string
	Depth    int
	MoveTime time.Duration
	MultiPV  int
}

// Stepped returns the worker itself.
func (w *FakeSteppedWorker) Stepped() (engine.SteppedAnalyzer, bool) { return w, true }

// Continuous reports no continuous capability.
func (w *FakeSteppedWorker) Continuous() (engine.ContinuousAnalyzer, bool) { return nil, false }

// Analyze returns the scripted records for the requested depth.
func (w *FakeSteppedWorker) Analyze(ctx context.Context, fen string, depth int, moveTime time.Duration, multiPV int) ([]engine.InfoRecord, error) {
	w.mu.Lock()
	w.calls++
	w.lastArgs = SteppedCall{FEN: fen, Depth: depth, MoveTime: moveTime, MultiPV: multiPV}
	w.mu.Unlock()

	if w.Delay > 0 {
		select {
		case <-time.After(w.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if w.AnalyzeErr != nil {
		return nil, w.AnalyzeErr
	}
	if w.RecordsFn != nil {
		return w.RecordsFn(depth, multiPV), nil
	}
	return []engine.InfoRecord{NewRecordBuilder().Depth(depth).CP(25).PV("e2e4", "e7e5").Build()}, nil
}

// Quit records the shutdown.
func (w *FakeSteppedWorker) Quit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.quits++
	return w.QuitErr
}

// Calls returns the number of analysis calls made.
func (w *FakeSteppedWorker) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

// Quits returns the number of Quit invocations.
func (w *FakeSteppedWorker) Quits() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.quits
}

// LastCall returns the arguments of the most recent analysis call.
func (w *FakeSteppedWorker) LastCall() SteppedCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastArgs
}

// FakeContinuousWorker is an engine worker whose continuous analysis replays
// a scripted record sequence. Stop halts the replay early, mirroring a real
// engine that keeps searching until told otherwise.
type FakeContinuousWorker struct {
	// Script is replayed in order on the update channel.
	Script []engine.InfoRecord
	// Interval is slept between records.
	Interval time.Duration
	// StopDelay postpones the channel close after Stop, simulating an
	// engine that takes time to report its final best move.
	StopDelay time.Duration
	// StartErr, when set, fails StartAnalysis.
	StartErr error
	// StreamErr is surfaced from Err once the stream ends.
	StreamErr error
	// QuitErr is returned from Quit.
	QuitErr error

	mu        sync.Mutex
	starts    int
	quits     int
	stops     int
	streamEnd bool
}

// Stepped reports no stepped capability.
func (w *FakeContinuousWorker) Stepped() (engine.SteppedAnalyzer, bool) { return nil, false }

// Continuous returns the worker itself.
func (w *FakeContinuousWorker) Continuous() (engine.ContinuousAnalyzer, bool) { return w, true }

// StartAnalysis begins replaying the script.
func (w *FakeContinuousWorker) StartAnalysis(ctx context.Context, fen string, maxDepth int, moveTime time.Duration, multiPV int) (engine.Analysis, error) {
	w.mu.Lock()
	w.starts++
	w.mu.Unlock()

	if w.StartErr != nil {
		return nil, w.StartErr
	}

	a := &fakeAnalysis{
		updates:   make(chan engine.InfoRecord),
		stop:      make(chan struct{}),
		stopDelay: w.StopDelay,
		err:       w.StreamErr,
		onStop:    w.recordStop,
		onEnd:     w.recordStreamEnd,
	}
	go a.replay(ctx, w.Script, w.Interval)
	return a, nil
}

// Quit records the shutdown.
func (w *FakeContinuousWorker) Quit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.quits++
	return w.QuitErr
}

// Starts returns how many searches were started.
func (w *FakeContinuousWorker) Starts() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.starts
}

// Stops returns how many searches were stopped by the consumer.
func (w *FakeContinuousWorker) Stops() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stops
}

// Quits returns the number of Quit invocations.
func (w *FakeContinuousWorker) Quits() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.quits
}

// StreamEnded reports whether the update stream has finished, meaning the
// final record (or best move) was consumed and the channel is closed.
func (w *FakeContinuousWorker) StreamEnded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.streamEnd
}

func (w *FakeContinuousWorker) recordStop() {
	w.mu.Lock()
	w.stops++
	w.mu.Unlock()
}

func (w *FakeContinuousWorker) recordStreamEnd() {
	w.mu.Lock()
	w.streamEnd = true
	w.mu.Unlock()
}

type fakeAnalysis struct {
	updates   chan engine.InfoRecord
	stop      chan struct{}
	stopOnce  sync.Once
	stopDelay time.Duration
	err       error
	onStop    func()
	onEnd     func()
}

func (a *fakeAnalysis) replay(ctx context.Context, script []engine.InfoRecord, interval time.Duration) {
	defer func() {
		select {
		case <-a.stop:
			if a.stopDelay > 0 {
				time.Sleep(a.stopDelay)
			}
		default:
		}
		if a.onEnd != nil {
			a.onEnd()
		}
		close(a.updates)
	}()
	for _, rec := range script {
		if interval > 0 {
			select {
			case <-time.After(interval):
			case <-a.stop:
				return
			case <-ctx.Done():
				return
			}
		}
		select {
		case a.updates <- rec:
		case <-a.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (a *fakeAnalysis) Updates() <-chan engine.InfoRecord { return a.updates }

func (a *fakeAnalysis) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
		if a.onStop != nil {
			a.onStop()
		}
	})
}

func (a *fakeAnalysis) Err() error { return a.err }
