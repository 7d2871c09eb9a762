package snapshot

import (
	"sort"
	"sync"
)

// InMemoryStore is a volatile Store implementation keeping snapshots in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo servers. Each returned snapshot is cloned to
// prevent external mutation of internal state.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewInMemoryStore constructs an empty in-memory snapshot store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{snapshots: make(map[string]*Snapshot)}
}

// Save stores a clone of the provided snapshot.
func (s *InMemoryStore) Save(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.ID] = snap.Clone()
	return nil
}

// Get returns the snapshot with the given ID or ErrNotFound.
func (s *InMemoryStore) Get(id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snap, ok := s.snapshots[id]; ok {
		return snap.Clone(), nil
	}
	return nil, ErrNotFound
}

// BySession returns the most recent snapshot for the session or ErrNotFound.
func (s *InMemoryStore) BySession(sessionID string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *Snapshot
	for _, snap := range s.snapshots {
		if snap.SessionID != sessionID {
			continue
		}
		if latest == nil || snap.CreatedAt.After(latest.CreatedAt) {
			latest = snap
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest.Clone(), nil
}

// List returns all snapshots ordered newest first.
func (s *InMemoryStore) List() ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes the snapshot with the given ID.
func (s *InMemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, id)
	return nil
}
