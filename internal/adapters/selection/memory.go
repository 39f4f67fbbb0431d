package selection

import (
	"context"
	"sync"

	"github.com/okian/scout/internal/domain/model"
)

// MemoryStore keeps selections in process.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string][]model.SelectionEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string][]model.SelectionEntry)}
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, owner string) ([]model.SelectionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.byID[owner]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]model.SelectionEntry(nil), entries...), nil
}

// Put implements Store.Put.
func (s *MemoryStore) Put(_ context.Context, owner string, entries []model.SelectionEntry) error {
	if err := Validate(owner, entries); err != nil {
		return err
	}
	s.mu.Lock()
	s.byID[owner] = append([]model.SelectionEntry(nil), entries...)
	s.mu.Unlock()
	return nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, owner string) error {
	s.mu.Lock()
	delete(s.byID, owner)
	s.mu.Unlock()
	return nil
}
