package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/enginemesh/core"
)

func TestParseInfoLine(t *testing.T) {
	rec, ok := parseInfoLine("info depth 12 seldepth 18 multipv 2 score cp -35 nodes 123456 nps 987654 time 120 pv e7e5 g1f3 b8c6")
	require.True(t, ok)

	assert.Equal(t, 12, rec.Depth)
	assert.Equal(t, 18, rec.SelDepth)
	assert.Equal(t, 2, rec.Rank)
	require.NotNil(t, rec.ScoreCP)
	assert.Equal(t, -35, *rec.ScoreCP)
	assert.Nil(t, rec.ScoreMate)
	assert.Equal(t, int64(123456), rec.Nodes)
	assert.Equal(t, int64(987654), rec.NPS)
	assert.Equal(t, []string{"e7e5", "g1f3", "b8c6"}, rec.PV)
}

func TestParseInfoLine_Mate(t *testing.T) {
	rec, ok := parseInfoLine("info depth 20 multipv 1 score mate 3 pv d8h4 g2g3 h4g3")
	require.True(t, ok)

	require.NotNil(t, rec.ScoreMate)
	assert.Equal(t, 3, *rec.ScoreMate)
	assert.Nil(t, rec.ScoreCP)
}

func TestParseInfoLine_Bounds(t *testing.T) {
	rec, ok := parseInfoLine("info depth 9 multipv 1 score cp 50 lowerbound nodes 10 pv e2e4")
	require.True(t, ok)
	require.NotNil(t, rec.ScoreCP)
	assert.Equal(t, 50, *rec.ScoreCP)
	assert.Equal(t, []string{"e2e4"}, rec.PV)
}

func TestParseInfoLine_Rejected(t *testing.T) {
	for _, line := range []string{
		"info string NNUE evaluation using nn-abc.nnue",
		"bestmove e2e4 ponder e7e5",
		"readyok",
		"info currmovenumber 3",
	} {
		_, ok := parseInfoLine(line)
		assert.False(t, ok, "line %q should be rejected", line)
	}
}

func TestParseInfoLine_CurrmoveReportKept(t *testing.T) {
	// Depth-only progress reports carry no PV and are accepted by the
	// parser but filtered by strategy code.
	rec, ok := parseInfoLine("info depth 15 currmove e2e4 currmovenumber 1")
	require.True(t, ok)
	assert.Equal(t, 15, rec.Depth)
	assert.Empty(t, rec.PV)
}

func TestSortedRecords(t *testing.T) {
	byRank := map[int]InfoRecord{
		3: {Rank: 3},
		1: {Rank: 1},
		2: {Rank: 2},
	}
	records := sortedRecords(byRank)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, i+1, rec.Rank)
	}
}

func TestResolveBinary_ConfiguredMissing(t *testing.T) {
	_, err := ResolveBinary("/definitely/not/here/stockfish")
	require.Error(t, err)

	se, ok := core.AsStreamError(err)
	require.True(t, ok)
	assert.Equal(t, core.ErrCodeEngineUnavailable, se.Code)
	assert.True(t, se.Retryable)
}

func TestResolveBinary_ConfiguredExisting(t *testing.T) {
	path, err := ResolveBinary("/bin/sh")
	require.NoError(t, err)
	assert.Equal(t, "/bin/sh", path)
}
