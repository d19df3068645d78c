package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/desertthunder/riff/internal/shared"
)

// MemoryStore is an in-memory [KV] implementation for tests and throwaway sessions.
type MemoryStore struct {
	mu            sync.RWMutex
	values        map[string][]byte
	MaxValueBytes int
}

// NewMemoryStore creates an empty in-memory store with no quota.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string][]byte{}}
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

func (m *MemoryStore) Set(key string, value []byte) error {
	if err := m.checkQuota(key, value); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) SetMulti(values map[string][]byte) error {
	for key, value := range values {
		if err := m.checkQuota(key, value); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for key, value := range values {
		m.values[key] = append([]byte(nil), value...)
	}
	return nil
}

func (m *MemoryStore) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for key := range m.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) checkQuota(key string, value []byte) error {
	if m.MaxValueBytes > 0 && len(value) > m.MaxValueBytes {
		return fmt.Errorf("%w: value for %s is %d bytes (limit %d)", shared.ErrQuotaExceeded, key, len(value), m.MaxValueBytes)
	}
	return nil
}
