package host

import "sync"

// MemoryStore is an in-process ConfigStore. The real host persists keys to
// its own profile storage; this one backs tests and the replay harness.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]string
}

var _ ConfigStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: map[string]string{}}
}

func (s *MemoryStore) Read(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[key], nil
}

func (s *MemoryStore) Write(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}
