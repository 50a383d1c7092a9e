package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStorage implements Storage with an in-process map. Objects are
// stored as marshalled JSON so reads return copies, never shared references.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string][]byte),
	}
}

// PutJSON stores obj under bucket/key, replacing any previous value.
func (s *MemoryStorage) PutJSON(_ context.Context, bucket, key string, obj any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshaling %s/%s: %w", bucket, key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey(bucket, key)] = data
	return nil
}

// GetJSON unmarshals the object at bucket/key into out.
func (s *MemoryStorage) GetJSON(_ context.Context, bucket, key string, out any) error {
	s.mu.RLock()
	data, ok := s.objects[objectKey(bucket, key)]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshaling %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Exists reports whether an object is stored at bucket/key.
func (s *MemoryStorage) Exists(_ context.Context, bucket, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[objectKey(bucket, key)]
	return ok, nil
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}
