package testutil

import (
	"context"
	"sync"

	"github.com/abrito/financas/financas-sync/internal/websocket"
	"github.com/abrito/financas/financas-sync/pkg/domain"
)

// MockDocumentStore is an in-memory implementation of service.DocumentStore
type MockDocumentStore struct {
	mu        sync.Mutex
	Docs      map[string][]byte
	GetErr    error
	UpsertErr error
	Upserts   int
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		Docs: make(map[string][]byte),
	}
}

func storeKey(familyID, key string) string {
	return familyID + "/" + key
}

// Get retrieves a stored document
func (m *MockDocumentStore) Get(ctx context.Context, familyID, key string) ([]byte, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.Docs[storeKey(familyID, key)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// Upsert stores a document
func (m *MockDocumentStore) Upsert(ctx context.Context, familyID, key string, doc []byte, updatedAt int64) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Docs[storeKey(familyID, key)] = doc
	m.Upserts++
	return nil
}

// CapturingPublisher records published events instead of broadcasting them
type CapturingPublisher struct {
	mu     sync.Mutex
	Topics []string
	Events []websocket.Event
}

// Publish records the topic and event
func (p *CapturingPublisher) Publish(topic string, event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Topics = append(p.Topics, topic)
	p.Events = append(p.Events, event)
}

// Count returns how many events were published
func (p *CapturingPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Events)
}
