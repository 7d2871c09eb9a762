package stream

import (
	"context"
	"sort"

	"github.com/hupe1980/enginemesh/core"
	"github.com/hupe1980/enginemesh/engine"
)

// runContinuous starts one long-running engine search and consumes its
// incremental update stream, batching per-variation records and emitting a
// depth update for every lattice depth the search has passed. Throttled
// interim updates are dropped rather than delayed; the final depth is exempt.
func (s *Session) runContinuous(ctx context.Context, analyzer engine.ContinuousAnalyzer, budget Budget) (core.Reason, error) {
	analysis, err := analyzer.StartAnalysis(ctx, s.req.FEN, budget.MaxDepth, s.req.MoveTime, budget.MultiPV)
	if err != nil {
		return "", err
	}
	// Latest record per variation rank; ranks merge across updates so lower
	// variations keep their last known line while rank 1 advances.
	buffer := make(map[int]engine.InfoRecord, budget.MultiPV)
	next := s.req.MinDepth
	reason := core.ReasonEngineStopped

	for rec := range analysis.Updates() {
		if s.cancelled(ctx) {
			reason = core.ReasonClientCancelled
			break
		}

		rank := rec.Rank
		if rank < 1 {
			rank = 1
		}
		buffer[rank] = rec

		top, ok := buffer[1]
		if !ok {
			top = rec
		}
		if top.Depth <= 0 {
			continue
		}
		current := top.Depth
		if current > budget.MaxDepth {
			current = budget.MaxDepth
		}
		if current < next {
			continue
		}
		if s.withinThrottle() && current < budget.MaxDepth {
			continue
		}

		lines := RankLines(s.req.FEN, bufferedRecords(buffer), budget.MultiPV)
		if len(lines) == 0 {
			continue
		}

		for next <= current {
			s.emitDepthUpdate(next, budget, top, lines)
			next += s.req.DepthStep
		}
		if next > budget.MaxDepth {
			reason = core.ReasonDepthReached
			break
		}
	}

	// Join the engine reader before the handle changes hands: Stop ends the
	// search, and the update channel closes only once the reader has consumed
	// the engine's final best move. Err is meaningless before that point.
	analysis.Stop()
	for range analysis.Updates() {
	}

	if err := analysis.Err(); err != nil {
		return "", err
	}

	// The engine can end the search on its own (move time spent, forced
	// line found). Map that to the most specific reason available.
	if reason == core.ReasonEngineStopped {
		switch {
		case s.cfg.Signal.Cancelled():
			reason = core.ReasonClientCancelled
		case s.req.MoveTime > 0 && s.lastDepth < budget.MaxDepth:
			reason = core.ReasonMoveTimeElapsed
		case s.lastDepth >= budget.MaxDepth:
			reason = core.ReasonDepthReached
		}
	}
	return reason, nil
}

// bufferedRecords flattens the per-rank buffer in rank order.
func bufferedRecords(buffer map[int]engine.InfoRecord) []engine.InfoRecord {
	ranks := make([]int, 0, len(buffer))
	for rank := range buffer {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)

	records := make([]engine.InfoRecord, 0, len(buffer))
	for _, rank := range ranks {
		records = append(records, buffer[rank])
	}
	return records
}
