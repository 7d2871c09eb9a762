package openings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookTSV = "A00\tKing's Pawn\t1. e4\te2e4\n" +
	"C20\tKing's Pawn Game\t1. e4 e5\te2e4 e7e5\n" +
	"B20\tSicilian Defence\t1. e4 c5\te2e4 c7c5\n" +
	"B27\tSicilian Defence: Hyperaccelerated Dragon\t1. e4 c5 2. Nf3 g6\te2e4 c7c5 g1f3 g7g6\n" +
	"D00\tQueen's Pawn Game\t1. d4 d5\td2d4 d7d5\n"

func testBook(t *testing.T) *Book {
	t.Helper()
	book, err := LoadReader(strings.NewReader(bookTSV), DatabaseInfo{Source: SourceFull, FileCount: 1})
	require.NoError(t, err)
	return book
}

func TestBookLookupDeepestMatch(t *testing.T) {
	book := testBook(t)
	require.Equal(t, 5, book.Len())

	result := book.Lookup([]string{"e2e4", "c7c5"}, 5)
	require.NotNil(t, result.Match)
	assert.Equal(t, "B20", result.Match.ECO)
	assert.Equal(t, "Sicilian Defence", result.Match.Name)
	assert.Equal(t, 2, result.Match.Ply)

	require.NotEmpty(t, result.Continuations)
	assert.Equal(t, "g1f3", result.Continuations[0].UCI)
	assert.Equal(t, 1, result.Continuations[0].Rank)
	assert.Equal(t, "g1", result.Continuations[0].FromSquare)
	assert.Equal(t, "f3", result.Continuations[0].ToSquare)
}

func TestBookLookupRanksContinuationsByPopularity(t *testing.T) {
	book := testBook(t)

	result := book.Lookup(nil, 5)
	assert.Nil(t, result.Match)
	require.Len(t, result.Continuations, 2)
	// Four lines pass through e2e4, one through d2d4.
	assert.Equal(t, "e2e4", result.Continuations[0].UCI)
	assert.Equal(t, "d2d4", result.Continuations[1].UCI)
}

func TestBookLookupOffBook(t *testing.T) {
	book := testBook(t)

	result := book.Lookup([]string{"e2e4", "c7c5", "b1c3"}, 5)
	require.NotNil(t, result.Match)
	assert.Equal(t, "B20", result.Match.ECO)
	assert.Empty(t, result.Continuations, "off-book positions offer no continuations")
}

func TestBookLookupCapsContinuations(t *testing.T) {
	book := testBook(t)
	result := book.Lookup(nil, 1)
	assert.Len(t, result.Continuations, 1)
	assert.Empty(t, book.Lookup(nil, 0).Continuations)
}

func TestBookPGNFallback(t *testing.T) {
	row := "C44\tKing's Knight Opening\t1. e4 e5 2. Nf3\n"
	book, err := LoadReader(strings.NewReader(row), DatabaseInfo{Source: SourceStarter, FileCount: 1})
	require.NoError(t, err)
	require.Equal(t, 1, book.Len())

	result := book.Lookup([]string{"e2e4", "e7e5", "g1f3"}, 0)
	require.NotNil(t, result.Match)
	assert.Equal(t, "C44", result.Match.ECO)
	assert.Equal(t, 3, result.Match.Ply)
}

func TestBookSkipsMalformedRows(t *testing.T) {
	rows := "eco\tname\tpgn\tuci\n" + // header decodes to nothing
		"\n" +
		"A01\n" +
		"A02\tNimzo-Larsen Attack\t1. b3\tb2b3\n"
	book, err := LoadReader(strings.NewReader(rows), DatabaseInfo{Source: SourceStarter, FileCount: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, book.Len())
}

func TestBookLookupFromNonStandardStart(t *testing.T) {
	book := testBook(t)
	result := book.LookupFrom("8/8/8/8/8/8/8/K6k w - - 0 1", []string{"e2e4"}, 5)
	assert.Nil(t, result.Match)
	assert.Empty(t, result.Continuations)

	standard := book.LookupFrom("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", []string{"e2e4"}, 5)
	assert.NotNil(t, standard.Match)
}

func TestLoadResolvesSources(t *testing.T) {
	dir := t.TempDir()

	missing, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, SourceMissing, missing.Info().Source)
	assert.Equal(t, 0, missing.Len())

	starterRow := "A02\tNimzo-Larsen Attack\t1. b3\tb2b3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, StarterFileName), []byte(starterRow), 0o644))

	starter, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, SourceStarter, starter.Info().Source)
	assert.Equal(t, 1, starter.Len())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.tsv"), []byte(bookTSV), 0o644))

	full, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, SourceFull, full.Info().Source)
	assert.Equal(t, 1, full.Info().FileCount, "starter file excluded once a full database exists")
	assert.Equal(t, 5, full.Len())
	assert.Nil(t, full.Lookup([]string{"b2b3"}, 0).Match)
}
