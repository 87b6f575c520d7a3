package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps hit timestamps per key in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hits: make(map[string][]time.Time)}
}

func (s *MemoryStore) Hit(ctx context.Context, key string, now time.Time, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hits := prune(s.hits[key], now.Add(-window))
	hits = append(hits, now)
	s.hits[key] = hits

	return len(hits), hits[0], nil
}

// Cleanup drops keys with no hits inside the window.
func (s *MemoryStore) Cleanup(now time.Time, window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, hits := range s.hits {
		hits = prune(hits, now.Add(-window))
		if len(hits) == 0 {
			delete(s.hits, key)
			removed++
			continue
		}
		s.hits[key] = hits
	}
	return removed
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
