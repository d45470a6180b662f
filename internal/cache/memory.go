package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with bounded capacity and LRU eviction.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]*memoryEntry
	maxEntries int

	hits   int64
	misses int64

	now func() time.Time
}

type memoryEntry struct {
	entry    Entry
	accessed time.Time
}

// NewMemoryStore creates a memory store holding at most maxEntries payloads.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 128
	}
	return &MemoryStore{
		entries:    make(map[string]*memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the stored entry for key, if any. Expiry is the caller's call.
func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return Entry{}, false, nil
	}
	e.accessed = s.now()
	s.hits++
	return e.entry, true, nil
}

// Put stores payload under key, silently superseding any previous entry.
func (s *MemoryStore) Put(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictLRU()
	}

	now := s.now()
	buf := make([]byte, len(payload))
	copy(buf, payload)
	s.entries[key] = &memoryEntry{
		entry:    Entry{Key: key, Payload: buf, Timestamp: now},
		accessed: now,
	}
	return nil
}

// Stats returns cumulative hit and miss counts.
func (s *MemoryStore) Stats() (hits, misses int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits, s.misses
}

// evictLRU removes the least recently accessed entry. Caller holds the lock.
func (s *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestTime time.Time
	for key, e := range s.entries {
		if oldestKey == "" || e.accessed.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.accessed
		}
	}
	if oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}
