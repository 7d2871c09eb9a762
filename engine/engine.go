package engine

import (
	"context"
	"time"
)

// InfoRecord is one raw per-variation snapshot reported by an engine. Rank is
// the engine-reported 1-based variation index (0 when unreported). Exactly
// one of ScoreCP / ScoreMate is set when the engine reported an
// interpretable score; both are nil otherwise. ScoreMate is expressed in
// plies from the side to move's perspective.
type InfoRecord struct {
	Rank      int
	Depth     int
	SelDepth  int
	Nodes     int64
	NPS       int64
	ScoreCP   *int
	ScoreMate *int
	PV        []string
}

// SteppedAnalyzer performs one bounded, synchronous analysis call per depth.
// The returned records are the engine's final per-variation snapshots for
// that call. A zero moveTime means no time limit.
type SteppedAnalyzer interface {
	Analyze(ctx context.Context, fen string, depth int, moveTime time.Duration, multiPV int) ([]InfoRecord, error)
}

// Analysis is one in-flight continuous analysis operation. Updates yields
// incremental per-variation records until the engine stops (bounds reached,
// Stop called, or the process failed); the channel is then closed. Err
// reports a process-level failure after the channel closes.
type Analysis interface {
	Updates() <-chan InfoRecord
	Stop()
	Err() error
}

// ContinuousAnalyzer opens a streaming analysis bounded by maxDepth and, when
// moveTime is non-zero, a fixed time budget.
type ContinuousAnalyzer interface {
	StartAnalysis(ctx context.Context, fen string, maxDepth int, moveTime time.Duration, multiPV int) (Analysis, error)
}

// Worker is one live engine worker handle. Capabilities are fixed at
// construction; a worker exposing neither capability is a configuration
// error surfaced by the session, not a crash. Quit terminates the underlying
// process gracefully.
type Worker interface {
	Stepped() (SteppedAnalyzer, bool)
	Continuous() (ContinuousAnalyzer, bool)
	Quit() error
}
