package docstore

import (
	"context"
	"sync"

	"veridoc/pkg/platform/sentinel"
)

// InMemoryStore keeps envelopes per collection without external dependencies.
// It favors clarity over performance and is the default for tests and local
// runs.
type InMemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[Key]Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{collections: make(map[string]map[Key]Entry)}
}

func (s *InMemoryStore) Find(_ context.Context, key Key) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[key.Collection()]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	entry, ok := col[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &entry, nil
}

func (s *InMemoryStore) InsertIfAbsent(_ context.Context, entry Entry) (bool, error) {
	key := KeyOf(entry.Document)

	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[key.Collection()]
	if !ok {
		col = make(map[Key]Entry)
		s.collections[key.Collection()] = col
	}
	if _, exists := col[key]; exists {
		return false, nil
	}
	col[key] = entry
	return true, nil
}
