package storage

import (
	"strings"
	"sync"
)

type memoryStore struct {
	mu sync.Mutex
	kv map[string]string
}

// NewMemory returns a Store holding everything in process memory. Used when
// no storage path is configured, and in tests.
func NewMemory() Store {
	return &memoryStore{kv: map[string]string{}}
}

func (s *memoryStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.kv[key]
	return value, ok, nil
}

func (s *memoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = value
	return nil
}

func (s *memoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kv, key)
	return nil
}

func (s *memoryStore) Keys(prefix string) (keys []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.kv {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return
}

func (s *memoryStore) Close() error {
	return nil
}
