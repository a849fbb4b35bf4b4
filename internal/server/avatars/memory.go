package avatars

import (
	"context"
	"sync"
)

// PathPrefix is where the dev server serves in-memory avatars.
const PathPrefix = "/avatars/"

type object struct {
	contentType string
	data        []byte
}

// MemoryStorage keeps avatars in process memory. Put returns a
// server-relative URL under PathPrefix.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]object
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]object)}
}

func (m *MemoryStorage) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = object{contentType: contentType, data: append([]byte(nil), data...)}
	return PathPrefix + key, nil
}

// Get returns a stored object by key.
func (m *MemoryStorage) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o.data, o.contentType, ok
}
