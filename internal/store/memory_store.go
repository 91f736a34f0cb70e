package store

import (
	"sort"
	"sync"

	"github.com/preston-bernstein/gamecast-service/internal/domain/games"
)

// MemoryStore keeps the latest snapshot per game id.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]games.Snapshot
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[string]games.Snapshot),
	}
}

// ListGames returns a copy of the current snapshots ordered by id.
func (s *MemoryStore) ListGames() []games.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]games.Snapshot, 0, len(s.games))
	for _, g := range s.games {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// GetGame retrieves a snapshot by id.
func (s *MemoryStore) GetGame(id string) (games.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	return g, ok
}

// Swap stores snap as the latest for its id and returns the snapshot it replaced.
func (s *MemoryStore) Swap(snap games.Snapshot) (games.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.games[snap.ID]
	s.games[snap.ID] = snap
	return prev, ok
}

// Delete drops a game and reports whether it was present.
func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.games[id]
	delete(s.games, id)
	return ok
}

// Len reports the number of tracked games.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
