package storage

import (
	"context"
	"sync"
)

// Memory is a map-backed store, the default for tests and the dev
// node.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *Memory) Set(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, string(key))
	return nil
}

// snapshot returns a sorted copy of all entries, for persistence.
func (m *Memory) snapshot() []entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]entry, 0, len(m.data))
	for key, value := range m.data {
		entries = append(entries, entry{
			Key:   []byte(key),
			Value: append([]byte(nil), value...),
		})
	}
	sortEntries(entries)
	return entries
}

// restore replaces the contents with the given entries.
func (m *Memory) restore(entries []entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string][]byte, len(entries))
	for _, e := range entries {
		m.data[string(e.Key)] = append([]byte(nil), e.Value...)
	}
}
