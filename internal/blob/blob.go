// Package blob stores string values under string keys. It backs the
// persistence plugin.
package blob

import (
	"context"
	"sync"
)

// Store is a durable key/value store of strings.
type Store interface {
	// Get returns the value stored under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.writes++
	return nil
}

// Writes reports how many Set calls the store has accepted.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
