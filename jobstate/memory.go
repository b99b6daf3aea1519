package jobstate

import (
	"context"
	"sync"
)

// MemoryStore keeps statuses in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]Status)}
}

func (m *MemoryStore) Save(ctx context.Context, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[status.JobID] = status
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, jobID string) (Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, ok := m.jobs[jobID]
	if !ok {
		return Status{}, ErrNotFound
	}
	return status, nil
}
