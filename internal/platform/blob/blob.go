// Package blob stores uploaded document files.
package blob

import (
	"context"
	"strings"
	"sync"
)

// Store writes an object and returns the URL documents refer to.
type Store interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// Memory keeps objects in process. URLs are prefix + key.
type Memory struct {
	prefix string

	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemory(prefix string) *Memory {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Memory{prefix: prefix, objects: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
	return m.prefix + key, nil
}

// Get returns a stored object.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	return b, ok
}
