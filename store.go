package moneyhero

import (
	"encoding/json"
	"fmt"
	"sync"
)

// DefaultKey is the storage key of the player state.
const DefaultKey = "moneyhero-simple-storage"

// Store persists player states by key.
type Store interface {
	// Load returns the state saved under key, or nil and no error when there is none.
	Load(key string) (*PlayerState, error)
	// Save replaces the state saved under key.
	Save(key string, s *PlayerState) error
	// Remove deletes the state saved under key. Removing a missing key is not an error.
	Remove(key string) error
}

// MemoryStore is a Store kept in memory. States are stored in their JSON form
// so that callers never share memory with the store.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(key string) (*PlayerState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	var s PlayerState
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("corrupted state %q: %w", key, err)
	}
	return &s, nil
}

func (m *MemoryStore) Save(key string, s *PlayerState) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("could not encode state %q: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = b
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Raw returns the JSON saved under key, for inspection.
func (m *MemoryStore) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	return b, ok
}

// SetRaw stores b under key as is.
func (m *MemoryStore) SetRaw(key string, b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = b
}
