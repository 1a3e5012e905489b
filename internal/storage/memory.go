package storage

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process KV. Values are kept JSON-encoded so callers see
// the same copy semantics as with BoltStore.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

// GetJSON implements KV.
func (m *Memory) GetJSON(key string, v any) error {
	m.mu.Lock()
	data, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("key %s: %w", key, ErrNotFound)
	}
	return json.Unmarshal(data, v)
}

// PutJSON implements KV.
func (m *Memory) PutJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.mu.Lock()
	m.data[key] = data
	m.mu.Unlock()
	return nil
}

// Delete implements KV.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}
