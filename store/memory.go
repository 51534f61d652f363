package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

type memoryStore struct {
	mu     sync.Mutex
	data   map[string]string
	closed bool
}

// NewMemory returns an in-memory Store with the same JSON round-trip
// semantics as the SQLite store. Intended for tests.
func NewMemory() Store {
	return &memoryStore{data: make(map[string]string)}
}

func (s *memoryStore) Get(key string, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("failed to decode key %s: %w", key, err)
	}
	return true, nil
}

func (s *memoryStore) Set(key string, val any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to encode key %s: %w", key, err)
	}
	s.data[key] = string(raw)
	return nil
}

func (s *memoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.data, key)
	return nil
}

func (s *memoryStore) Reset(preserve ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	keep := make(map[string]string, len(preserve))
	for _, k := range preserve {
		if v, ok := s.data[k]; ok {
			keep[k] = v
		}
	}
	s.data = keep
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
