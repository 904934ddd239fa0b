// Package storage defines how in-flight interview state is persisted
// between update calls. Keys are opaque, unguessable capabilities: each
// successful update stores a new record under a new key.
package storage

import (
	"context"
	"errors"

	"github.com/open-event-systems/interview/pkg/interview"
)

// ErrNotFound is returned when no record exists for a key, whether it
// never existed or has expired.
var ErrNotFound = errors.New("interview state not found")

// Record is the persisted snapshot: which interview the state belongs to
// plus the state itself. The script is not persisted; it is resolved from
// the process's loaded configuration on each request.
type Record struct {
	Interview string          `json:"interview"`
	State     interview.State `json:"state"`
}

// Store persists interview records. Expiry and eviction policy belong to
// the implementation, not to the engine.
type Store interface {
	// Put stores the record and returns its new opaque key.
	Put(ctx context.Context, rec Record) (string, error)

	// Get retrieves the record for a key, or ErrNotFound.
	Get(ctx context.Context, key string) (*Record, error)

	// Close releases any underlying resources.
	Close() error
}
