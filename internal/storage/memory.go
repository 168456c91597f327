package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MemoryStorage keeps objects in process. It backs the "memory" database
// driver, where uploads go through PutObject instead of a presigned URL.
type MemoryStorage struct {
	mu         sync.RWMutex
	bucket     string
	uploadBase string
	objects    map[string][]byte
}

func NewMemoryStorage(bucket string) *MemoryStorage {
	return &MemoryStorage{bucket: bucket, objects: make(map[string][]byte)}
}

// SetUploadBase makes upload URLs point at base + "/" + objectKey, the API
// route that forwards request bodies to PutObject.
func (m *MemoryStorage) SetUploadBase(base string) {
	m.uploadBase = strings.TrimSuffix(base, "/")
}

func (m *MemoryStorage) PutObject(ctx context.Context, objectKey string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(data) > MaxObjectSize {
		return ErrObjectTooLarge
	}
	m.Put(objectKey, data)
	return nil
}

func (m *MemoryStorage) Put(objectKey string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey] = append([]byte(nil), data...)
}

func (m *MemoryStorage) Has(objectKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[objectKey]
	return ok
}

func (m *MemoryStorage) GeneratePresignedUploadURL(_ context.Context, objectKey string, _ string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	if m.uploadBase != "" {
		return fmt.Sprintf("%s/%s?expires=%d", m.uploadBase, objectKey, int(expires.Seconds())), nil
	}
	return fmt.Sprintf("memory://%s/%s?expires=%d", m.bucket, url.PathEscape(objectKey), int(expires.Seconds())), nil
}

func (m *MemoryStorage) GetObject(ctx context.Context, objectKey string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.objects[objectKey]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrObjectNotFound
	}
	return readLimited(bytes.NewReader(data))
}

func (m *MemoryStorage) DeleteObject(_ context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectKey)
	return nil
}
