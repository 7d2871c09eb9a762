package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/enginemesh/core"
)

// Interface compliance (compile-time assertion)
var _ Store = (*InMemoryStore)(nil)

func completeEvent(sessionID string) core.Complete {
	ev := core.NewComplete(sessionID)
	ev.Position = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	ev.FinalDepth = 22
	ev.BestMove = "e2e4"
	cp := 35
	ev.Lines = []core.Line{{Rank: 1, Move: "e2e4", FromSquare: "e2", ToSquare: "e4", CentipawnScore: &cp, PrincipalVariation: []string{"e2e4", "e7e5"}}}
	ev.Reason = core.ReasonDepthReached
	return ev
}

func TestFromComplete(t *testing.T) {
	snap := FromComplete(completeEvent("analysis-abc"), "white")

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "analysis-abc", snap.SessionID)
	assert.Equal(t, "white", snap.SideToMove)
	assert.Equal(t, 22, snap.FinalDepth)
	assert.Equal(t, "e2e4", snap.BestMove)
	assert.Equal(t, core.ReasonDepthReached, snap.Reason)
	assert.False(t, snap.CreatedAt.IsZero())
}

func TestInMemoryStoreSaveGet(t *testing.T) {
	store := NewInMemoryStore()
	snap := FromComplete(completeEvent("analysis-abc"), "white")
	require.NoError(t, store.Save(snap))

	got, err := store.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.SessionID, got.SessionID)

	// Mutating the returned value must not affect the stored copy.
	got.BestMove = "a2a3"
	again, err := store.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "e2e4", again.BestMove)
}

func TestInMemoryStoreGetMissing(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Get("snapshot-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStoreBySession(t *testing.T) {
	store := NewInMemoryStore()

	older := FromComplete(completeEvent("analysis-abc"), "white")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := FromComplete(completeEvent("analysis-abc"), "white")
	other := FromComplete(completeEvent("analysis-xyz"), "black")
	require.NoError(t, store.Save(older))
	require.NoError(t, store.Save(newer))
	require.NoError(t, store.Save(other))

	got, err := store.BySession("analysis-abc")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	_, err = store.BySession("analysis-none")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStoreListAndDelete(t *testing.T) {
	store := NewInMemoryStore()
	first := FromComplete(completeEvent("analysis-1"), "white")
	first.CreatedAt = time.Now().Add(-time.Minute)
	second := FromComplete(completeEvent("analysis-2"), "black")
	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(second))

	all, err := store.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	require.NoError(t, store.Delete(first.ID))
	require.NoError(t, store.Delete("snapshot-missing"))
	all, err = store.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
