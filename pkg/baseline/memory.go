package baseline

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore keeps baselines in process memory. This is the reference
// backend for single-process deployments and for tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]FingerprintRecord
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]FingerprintRecord)}
}

// Load returns a copy of the current record set. Callers own the returned
// map and may mutate it freely.
func (m *MemoryStore) Load(ctx context.Context) (map[string]FingerprintRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, loadError(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]FingerprintRecord, len(m.records))
	maps.Copy(out, m.records)
	return out, nil
}

// Save replaces the record set with a copy of the given mapping.
func (m *MemoryStore) Save(ctx context.Context, records map[string]FingerprintRecord) error {
	if err := ctx.Err(); err != nil {
		return saveError(err)
	}

	next := make(map[string]FingerprintRecord, len(records))
	maps.Copy(next, records)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = next
	return nil
}
