package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// sweepInterval is how often Set drops expired entries nobody reads again.
const sweepInterval = time.Minute

// MemoryStore is a per-process Store.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]entry
	now       func() time.Time
	nextSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]entry{}, now: time.Now}
}

// WithClock replaces the time source; used to step over TTLs in tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, ErrMiss
	}
	return e.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, len(value))
	copy(buf, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !now.Before(s.nextSweep) {
		for k, e := range s.entries {
			if !now.Before(e.expiresAt) {
				delete(s.entries, k)
			}
		}
		s.nextSweep = now.Add(sweepInterval)
	}

	s.entries[key] = entry{value: buf, expiresAt: now.Add(ttl)}
	return nil
}

// Len is the number of entries held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}
