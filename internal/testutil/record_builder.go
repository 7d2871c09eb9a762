package testutil

import "github.com/hupe1980/enginemesh/engine"

// RecordBuilder provides a fluent helper for constructing engine info records
// in tests. Example:
//
//	rec := NewRecordBuilder().Depth(12).CP(35).PV("e2e4", "e7e5").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type RecordBuilder struct {
	rec engine.InfoRecord
}

// NewRecordBuilder creates a builder with rank 1 and depth 1.
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{rec: engine.InfoRecord{Rank: 1, Depth: 1}}
}

// Rank sets the multipv rank (chainable).
func (b *RecordBuilder) Rank(r int) *RecordBuilder { b.rec.Rank = r; return b }

// Depth sets the reported search depth (chainable).
func (b *RecordBuilder) Depth(d int) *RecordBuilder { b.rec.Depth = d; return b }

// SelDepth sets the selective depth (chainable).
func (b *RecordBuilder) SelDepth(d int) *RecordBuilder { b.rec.SelDepth = d; return b }

// Nodes sets the searched node count (chainable).
func (b *RecordBuilder) Nodes(n int64) *RecordBuilder { b.rec.Nodes = n; return b }

// NPS sets the nodes-per-second figure (chainable).
func (b *RecordBuilder) NPS(n int64) *RecordBuilder { b.rec.NPS = n; return b }

// CP sets a centipawn score and clears any mate score (chainable).
func (b *RecordBuilder) CP(cp int) *RecordBuilder {
	b.rec.ScoreCP = &cp
	b.rec.ScoreMate = nil
	return b
}

// Mate sets a mate distance and clears any centipawn score (chainable).
func (b *RecordBuilder) Mate(plies int) *RecordBuilder {
	b.rec.ScoreMate = &plies
	b.rec.ScoreCP = nil
	return b
}

// NoScore clears both score fields (chainable).
func (b *RecordBuilder) NoScore() *RecordBuilder {
	b.rec.ScoreCP = nil
	b.rec.ScoreMate = nil
	return b
}

// PV sets the principal variation as UCI moves (chainable).
func (b *RecordBuilder) PV(moves ...string) *RecordBuilder {
	b.rec.PV = append([]string(nil), moves...)
	return b
}

// Build returns the constructed record.
func (b *RecordBuilder) Build() engine.InfoRecord { return b.rec }

// Records is shorthand for building a slice from several builders.
func Records(builders ...*RecordBuilder) []engine.InfoRecord {
	records := make([]engine.InfoRecord, 0, len(builders))
	for _, b := range builders {
		records = append(records, b.Build())
	}
	return records
}
