package ratelimit

import (
	"context"
	"sync"
)

// MemoryStore is an in-process CounterStore for tests and single-node
// development. It mirrors the Redis store's semantics: records persist
// until overwritten or deleted, with no TTL.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

// Read returns the record for key, or absent when none exists.
func (s *MemoryStore) Read(ctx context.Context, key string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	return rec, ok, nil
}

// Write stores the record under key.
func (s *MemoryStore) Write(ctx context.Context, key string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = rec
	return nil
}

// Delete removes the record for key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
