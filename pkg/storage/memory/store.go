// Package memory implements interview state storage in process memory.
// Suitable for tests and single-instance deployments.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/open-event-systems/interview/pkg/storage"
)

// Store implements storage.Store in memory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Put stores the record under a fresh key. Records are kept serialized
// so later mutations of the caller's maps cannot leak in.
func (s *Store) Put(_ context.Context, rec storage.Record) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	key := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return key, nil
}

// Get retrieves the record for a key.
func (s *Store) Get(_ context.Context, key string) (*storage.Record, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}

	var rec storage.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close implements storage.Store; it is a no-op.
func (s *Store) Close() error { return nil }
