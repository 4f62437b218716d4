package blob

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps blobs in a map. Used in tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read blob: %w", err)
	}

	url := "memory://" + key

	m.mu.Lock()
	m.blobs[url] = data
	m.mu.Unlock()

	return url, nil
}

func (m *MemoryStore) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[url]; !ok {
		return fmt.Errorf("blob %s not found", url)
	}
	delete(m.blobs, url)
	return nil
}

// Get returns the stored bytes, primarily for assertions in tests.
func (m *MemoryStore) Get(url string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[url]
	return data, ok
}

// Len reports the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
