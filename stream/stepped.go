package stream

import (
	"context"
	"time"

	"github.com/hupe1980/enginemesh/core"
	"github.com/hupe1980/enginemesh/engine"
)

// minSteppedCall is the floor passed to a bounded engine call when the
// remaining move time budget is nearly spent, so the engine still has a
// usable slice instead of a degenerate one.
const minSteppedCall = 10 * time.Millisecond

// runStepped walks the depth lattice with one bounded engine call per depth.
// Each iteration checks cancellation before doing work, deducts the elapsed
// share of the move time budget, and emits exactly one depth update.
func (s *Session) runStepped(ctx context.Context, analyzer engine.SteppedAnalyzer, budget Budget) (core.Reason, error) {
	started := time.Now()

	for depth := s.req.MinDepth; depth <= budget.MaxDepth; depth += s.req.DepthStep {
		if s.cancelled(ctx) {
			return core.ReasonClientCancelled, nil
		}

		var callBudget time.Duration
		if s.req.MoveTime > 0 {
			remaining := s.req.MoveTime - time.Since(started)
			if remaining <= 0 {
				return core.ReasonMoveTimeElapsed, nil
			}
			if remaining < minSteppedCall {
				remaining = minSteppedCall
			}
			callBudget = remaining
		}

		callStart := time.Now()
		records, err := analyzer.Analyze(ctx, s.req.FEN, depth, callBudget, budget.MultiPV)
		if err != nil {
			return "", err
		}
		s.logger.Debug("stepped engine call",
			"session_id", s.id, "depth", depth, "records", len(records),
			"duration", time.Since(callStart))

		lines := RankLines(s.req.FEN, records, budget.MultiPV)
		top := topRecord(records)

		// The engine may report a deeper (or shallower) search than asked
		// for; trust its figure but never exceed the budget.
		current := depth
		if top.Depth > 0 {
			current = top.Depth
		}
		if current > budget.MaxDepth {
			current = budget.MaxDepth
		}

		s.sleepThrottle()
		s.emitDepthUpdate(current, budget, top, lines)
	}
	return core.ReasonDepthReached, nil
}
