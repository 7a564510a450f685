package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"weld-inspection-db/pkg/errors"
)

// MemoryStorage is an in-process Storage for tests and local runs without
// an object store.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string][]byte)}
}

func (m *MemoryStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStorage) Upload(ctx context.Context, key string, data io.Reader, contentType string) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

// Keys returns the stored object keys in no particular order.
func (m *MemoryStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
