package stream

import "github.com/hupe1980/enginemesh/core"

// ShedConfig controls load shedding: under high concurrent load, sessions
// are degraded (fewer variations, lower depth) rather than refused outright.
type ShedConfig struct {
	// ThresholdPct is the load percentage (inflight / capacity) at or
	// above which shedding applies. Zero or negative disables shedding.
	ThresholdPct int
	// MaxMultiPV caps the variation count while shedding.
	MaxMultiPV int
	// MaxDepth caps the maximum depth while shedding. The request's
	// minimum depth is always honored.
	MaxDepth int
}

// DefaultShedConfig sheds to two variations and depth 16 once 80% of the
// session capacity is in use.
func DefaultShedConfig() ShedConfig {
	return ShedConfig{ThresholdPct: 80, MaxMultiPV: 2, MaxDepth: 16}
}

// Budget is the effective per-session analysis budget after shedding.
type Budget struct {
	MultiPV  int
	MaxDepth int
}

// Apply computes the effective budget for a request given the current
// in-flight count and the configured session capacity.
func (c ShedConfig) Apply(req core.AnalysisRequest, inflight, capacity int) Budget {
	full := Budget{MultiPV: req.MultiPV, MaxDepth: req.MaxDepth}
	if c.ThresholdPct <= 0 || capacity <= 0 {
		return full
	}
	if inflight*100 < c.ThresholdPct*capacity {
		return full
	}

	multiPV := c.MaxMultiPV
	if multiPV < 1 {
		multiPV = 1
	}
	if multiPV > req.MultiPV {
		multiPV = req.MultiPV
	}

	maxDepth := c.MaxDepth
	if maxDepth < req.MinDepth {
		maxDepth = req.MinDepth
	}
	if maxDepth > req.MaxDepth {
		maxDepth = req.MaxDepth
	}
	return Budget{MultiPV: multiPV, MaxDepth: maxDepth}
}
