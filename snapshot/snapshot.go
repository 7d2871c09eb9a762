package snapshot

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/enginemesh/core"
)

// ErrNotFound is returned when no snapshot exists for the requested key.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the persisted result of one completed analysis stream.
type Snapshot struct {
	ID         string      `json:"id"`
	SessionID  string      `json:"session_id"`
	Position   string      `json:"position"`
	SideToMove string      `json:"side_to_move,omitempty"`
	FinalDepth int         `json:"final_depth"`
	BestMove   string      `json:"best_move,omitempty"`
	Lines      []core.Line `json:"lines"`
	Reason     core.Reason `json:"reason"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Clone returns a deep copy so stored snapshots cannot be mutated by callers.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	dup := *s
	dup.Lines = append([]core.Line(nil), s.Lines...)
	return &dup
}

// FromComplete builds a snapshot from a terminal completion event.
func FromComplete(ev core.Complete, sideToMove string) *Snapshot {
	return &Snapshot{
		ID:         newSnapshotID(),
		SessionID:  ev.SessionID,
		Position:   ev.Position,
		SideToMove: sideToMove,
		FinalDepth: ev.FinalDepth,
		BestMove:   ev.BestMove,
		Lines:      append([]core.Line(nil), ev.Lines...),
		Reason:     ev.Reason,
		CreatedAt:  time.Now().UTC(),
	}
}

// Store persists completed analysis snapshots. Implementations must be safe
// for concurrent use.
type Store interface {
	// Save stores the snapshot, overwriting any snapshot with the same ID.
	Save(snap *Snapshot) error
	// Get returns the snapshot with the given ID or ErrNotFound.
	Get(id string) (*Snapshot, error)
	// BySession returns the most recent snapshot for a session or ErrNotFound.
	BySession(sessionID string) (*Snapshot, error)
	// List returns all snapshots ordered newest first.
	List() ([]*Snapshot, error)
	// Delete removes the snapshot with the given ID. Deleting a missing
	// snapshot is not an error.
	Delete(id string) error
}

func newSnapshotID() string {
	return "snapshot-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
