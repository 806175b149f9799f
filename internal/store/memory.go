package store

import (
	"context"
	"sync"

	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
)

// MemoryStore keeps the document in process. Used for tests and for
// throwaway deployments (STORE_BACKEND=memory).
type MemoryStore struct {
	mu  sync.RWMutex
	doc *patient.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{doc: emptyDocument()}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Load(ctx context.Context) (*patient.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, doc *patient.Document) error {
	cp := doc.Clone()
	cp.Normalize()
	m.mu.Lock()
	m.doc = cp
	m.mu.Unlock()
	return nil
}
