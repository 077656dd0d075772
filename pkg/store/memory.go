package store

import (
	"sync"

	"github.com/abrito/financas/financas-sync/pkg/domain"
)

// MemoryStore is a LocalStore kept entirely in memory. It backs tests and
// the degraded mode where host storage is unavailable for a session.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*domain.MonthData
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*domain.MonthData)}
}

// Get returns a copy of the stored document.
func (s *MemoryStore) Get(key string) (*domain.MonthData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data.Clone(), nil
}

// Put stores a copy of the document under key.
func (s *MemoryStore) Put(key string, data *domain.MonthData) error {
	if data == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = data.Clone()
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Len reports the number of stored documents (test helper).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

var _ LocalStore = (*MemoryStore)(nil)
