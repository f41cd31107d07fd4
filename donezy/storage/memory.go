package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

var errNoBackend = errors.New("no storage backend available")

// MemoryStore is an in-process RecordStore. It backs engine tests and
// the migrator's dry-run mode.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]json.RawMessage

	// FailWrites and FailReads force errors for failover tests.
	FailWrites bool
	FailReads  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]json.RawMessage)}
}

func (m *MemoryStore) Read(_ context.Context, path string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailReads {
		return nil, false, &StoreError{Op: "read", Path: path, Err: errNoBackend}
	}
	raw, ok := m.records[path]
	if !ok {
		return nil, false, nil
	}
	// Hand out a copy so callers cannot mutate the stored record, same
	// as Write copies on the way in.
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return cp, true, nil
}

func (m *MemoryStore) Write(_ context.Context, path string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return &StoreError{Op: "write", Path: path, Err: errNoBackend}
	}
	cp := make(json.RawMessage, len(value))
	copy(cp, value)
	m.records[path] = cp
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, path)
	return nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	if m.FailReads || m.FailWrites {
		return errNoBackend
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Len reports the stored record count.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
