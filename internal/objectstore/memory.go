package objectstore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/ingestguard/ingestguard/internal/apperror"
)

type memoryObject struct {
	content     []byte
	contentType string
}

// MemoryStore is an in-memory Store, thread-safe but ephemeral — all data is
// lost on restart. Intended for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*memoryObject
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]*memoryObject)}
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (m *MemoryStore) PutStream(_ context.Context, key, contentType string, src io.Reader, _ int64) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return apperror.New(apperror.TransientIO, "put_stream", err)
	}
	return m.PutSmall(context.Background(), key, contentType, data)
}

func (m *MemoryStore) PutSmall(_ context.Context, key, contentType string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = &memoryObject{content: copyBytes(content), contentType: contentType}
	return nil
}

func (m *MemoryStore) GetStream(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := m.GetBytes(ctx, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStore) GetBytes(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, apperror.New(apperror.NotFound, "get_bytes", errKeyNotFound(key))
	}
	return copyBytes(obj.content), nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var infos []ObjectInfo
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, ObjectInfo{Key: key, Size: int64(len(obj.content)), ContentType: obj.contentType})
		}
	}
	return infos, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type notFoundError string

func (e notFoundError) Error() string { return "objectstore: key not found: " + string(e) }

func errKeyNotFound(key string) error { return notFoundError(key) }
