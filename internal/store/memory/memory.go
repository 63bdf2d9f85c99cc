package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/tabshell/internal/persist"
)

// Store is an in-memory KV. Nothing survives a restart; it backs the
// ephemeral storage mode and tests.
type Store struct {
	mu        sync.RWMutex
	values    map[string][]byte
	writes    int
	lastWrite time.Time
	failWith  error
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failWith != nil {
		return nil, s.failWith
	}
	v, ok := s.values[key]
	if !ok {
		return nil, persist.ErrNotFound
	}
	return slices.Clone(v), nil
}

// Set stores a copy of value under key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return s.failWith
	}
	s.values[key] = slices.Clone(value)
	s.writes++
	s.lastWrite = time.Now()
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Writes returns the number of successful Set calls.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// LastWrite returns the time of the last successful Set.
func (s *Store) LastWrite() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastWrite
}

// FailWith makes every subsequent Get and Set return err. Pass nil to
// recover. Used to simulate an unavailable backend.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}
