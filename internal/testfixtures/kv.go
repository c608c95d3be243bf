package testfixtures

import (
	"context"
	"sync"

	"github.com/example/pricing-console/internal/persistence"
)

// MemoryKV is an in-memory persistence.KV substitute for tests. Optional
// error hooks simulate storage failures per key.
type MemoryKV struct {
	mu      sync.Mutex
	entries map[string][]byte

	// GetErr, SetErr, and DeleteErr, when non-nil, are returned for every
	// matching operation.
	GetErr    error
	SetErr    error
	DeleteErr error
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string][]byte)}
}

// Get implements persistence.KV.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set implements persistence.KV.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	m.entries[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

// Delete implements persistence.KV.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.entries, key)
	return nil
}

// Put seeds a raw value without going through the error hooks.
func (m *MemoryKV) Put(key string, value []byte) {
	m.mu.Lock()
	m.entries[key] = append([]byte(nil), value...)
	m.mu.Unlock()
}

// Raw returns the stored bytes and whether the key exists.
func (m *MemoryKV) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), value...), true
}

// Len reports the number of stored keys.
func (m *MemoryKV) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
