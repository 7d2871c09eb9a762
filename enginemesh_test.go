package enginemesh

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/enginemesh/core"
	"github.com/hupe1980/enginemesh/internal/testutil"
	"github.com/hupe1980/enginemesh/pool"
	"github.com/hupe1980/enginemesh/snapshot"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func testRequest() core.AnalysisRequest {
	req := core.NewAnalysisRequest(startFEN)
	req.MinDepth = 2
	req.MaxDepth = 4
	req.Throttle = core.MinThrottle
	return req
}

// recordingLogger captures log messages for assertions.
type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	l.msgs = append(l.msgs, msg)
	l.mu.Unlock()
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.record(msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.record(msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.record(msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.record(msg) }

func (l *recordingLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}

func newTestMesh(worker pool.Worker, optFns ...func(o *Options)) *Mesh {
	base := func(o *Options) {
		o.ResolveBinary = func() (string, error) { return "/fake/stockfish", nil }
		o.NewWorker = func(string) (pool.Worker, error) { return worker, nil }
	}
	return New(append([]func(o *Options){base}, optFns...)...)
}

func TestMeshAnalyzeSync(t *testing.T) {
	worker := &testutil.FakeSteppedWorker{}
	mesh := newTestMesh(worker)
	defer mesh.Shutdown()

	sessionID, events, err := mesh.AnalyzeSync(context.Background(), testRequest(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)
	require.NotEmpty(t, events)

	complete, ok := events[len(events)-1].(core.Complete)
	require.True(t, ok, "last event must be terminal, got %T", events[len(events)-1])
	assert.Equal(t, sessionID, complete.SessionID)
	assert.Equal(t, core.ReasonDepthReached, complete.Reason)
	assert.Equal(t, 4, complete.FinalDepth)
	assert.Equal(t, 0, mesh.Inflight())
}

func TestMeshAnalyzeChannelCloses(t *testing.T) {
	mesh := newTestMesh(&testutil.FakeSteppedWorker{})
	defer mesh.Shutdown()

	_, events := mesh.Analyze(context.Background(), testRequest(), nil)

	var terminal core.Event
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				require.NotNil(t, terminal)
				_, isComplete := terminal.(core.Complete)
				assert.True(t, isComplete)
				return
			}
			terminal = ev
		case <-deadline:
			t.Fatal("event channel never closed")
		}
	}
}

func TestMeshSavesSnapshot(t *testing.T) {
	store := snapshot.NewInMemoryStore()
	mesh := newTestMesh(&testutil.FakeSteppedWorker{}, func(o *Options) {
		o.SnapshotStore = store
	})
	defer mesh.Shutdown()

	sessionID, _, err := mesh.AnalyzeSync(context.Background(), testRequest(), nil)
	require.NoError(t, err)

	snap, err := mesh.Snapshot(sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, snap.SessionID)
	assert.Equal(t, 4, snap.FinalDepth)
	assert.Equal(t, "white", snap.SideToMove)
	assert.Equal(t, "e2e4", snap.BestMove)
}

func TestMeshSnapshotWithoutStore(t *testing.T) {
	mesh := newTestMesh(&testutil.FakeSteppedWorker{})
	defer mesh.Shutdown()

	_, err := mesh.Snapshot("analysis-missing")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}

func TestMeshErrorStream(t *testing.T) {
	mesh := newTestMesh(&testutil.FakeSteppedWorker{}, func(o *Options) {
		o.ResolveBinary = func() (string, error) {
			return "", core.NewStreamError(core.ErrCodeEngineUnavailable, true, "no engine binary found")
		}
	})
	defer mesh.Shutdown()

	_, events, err := mesh.AnalyzeSync(context.Background(), testRequest(), nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	errEv, ok := events[0].(core.Error)
	require.True(t, ok)
	assert.Equal(t, core.ErrCodeEngineUnavailable, errEv.Code)
}

func TestMeshCancellation(t *testing.T) {
	worker := &testutil.FakeSteppedWorker{Delay: 30 * time.Millisecond}
	mesh := newTestMesh(worker)
	defer mesh.Shutdown()

	req := testRequest()
	req.MaxDepth = 40

	signal := &core.CancelSignal{}
	go func() {
		time.Sleep(60 * time.Millisecond)
		signal.Cancel()
	}()

	_, events, err := mesh.AnalyzeSync(context.Background(), req, signal)
	require.NoError(t, err)
	complete, ok := events[len(events)-1].(core.Complete)
	require.True(t, ok)
	assert.Equal(t, core.ReasonClientCancelled, complete.Reason)
	assert.Equal(t, 0, worker.Quits(), "a cancelled session must return its worker to the pool")

	mesh.Shutdown()
	assert.Equal(t, 1, worker.Quits())
}

func TestMeshPoolUsesConfiguredLogger(t *testing.T) {
	logger := &recordingLogger{}
	mesh := newTestMesh(&testutil.FakeSteppedWorker{}, func(o *Options) {
		o.Logger = logger
	})

	_, _, err := mesh.AnalyzeSync(context.Background(), testRequest(), nil)
	require.NoError(t, err)
	mesh.Shutdown()

	assert.Contains(t, logger.Messages(), "worker pool drained")
}

func TestMeshShutdownQuitsIdleWorkers(t *testing.T) {
	worker := &testutil.FakeSteppedWorker{}
	mesh := newTestMesh(worker)

	_, _, err := mesh.AnalyzeSync(context.Background(), testRequest(), nil)
	require.NoError(t, err)

	mesh.Shutdown()
	assert.Equal(t, 1, worker.Quits())
}
