package stream

import (
	"sort"

	"github.com/corentings/chess"

	"github.com/hupe1980/enginemesh/core"
	"github.com/hupe1980/enginemesh/engine"
)

// RankLines converts raw per-variation engine records into the canonical,
// ordered, deduplicated lines array of an event, capped at multiPV entries.
//
// Records are indexed by their reported rank when present, by arrival order
// otherwise, and iterated ascending. Records without a principal variation
// are skipped; duplicate best moves keep the first occurrence. Output ranks
// are reassigned contiguously from 1. A mate distance populates the mate
// field, a centipawn score the centipawn field; an uninterpretable score
// leaves both unset but keeps the record. Ranking is a pure function of the
// given records: no state leaks between calls. Zero usable records yield an
// empty list, not an error.
func RankLines(fen string, records []engine.InfoRecord, multiPV int) []core.Line {
	if len(records) == 0 || multiPV < 1 {
		return nil
	}

	type indexed struct {
		order int
		rec   engine.InfoRecord
	}
	ordered := make([]indexed, 0, len(records))
	for i, rec := range records {
		order := i + 1
		if rec.Rank >= 1 {
			order = rec.Rank
		}
		ordered = append(ordered, indexed{order: order, rec: rec})
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].order < ordered[j].order })

	pos := positionFor(fen)

	lines := make([]core.Line, 0, multiPV)
	seen := make(map[string]struct{}, multiPV)
	for _, entry := range ordered {
		if len(lines) >= multiPV {
			break
		}
		pv := entry.rec.PV
		if len(pv) == 0 || len(pv[0]) < 4 {
			continue
		}
		move := pv[0]
		if _, dup := seen[move]; dup {
			continue
		}
		seen[move] = struct{}{}

		line := core.Line{
			Rank:               len(lines) + 1,
			Move:               move,
			FromSquare:         move[:2],
			ToSquare:           move[2:4],
			SAN:                sanFor(pos, move),
			PrincipalVariation: append([]string(nil), pv...),
		}
		if entry.rec.ScoreMate != nil {
			mate := *entry.rec.ScoreMate
			line.MateInPlies = &mate
		} else if entry.rec.ScoreCP != nil {
			cp := *entry.rec.ScoreCP
			line.CentipawnScore = &cp
		}
		lines = append(lines, line)
	}
	return lines
}

// positionFor parses fen into a position for SAN rendering. Ranking callers
// have already validated the request, so a parse failure just disables SAN.
func positionFor(fen string) *chess.Position {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil
	}
	return chess.NewGame(opt).Position()
}

// sanFor renders the UCI move in standard algebraic notation, falling back
// to the UCI encoding when the move cannot be interpreted.
func sanFor(pos *chess.Position, uci string) string {
	if pos == nil {
		return uci
	}
	move, err := chess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return uci
	}
	return chess.AlgebraicNotation{}.Encode(pos, move)
}
