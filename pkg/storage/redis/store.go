// Package redis implements interview state storage on Redis. State is
// stored as JSON under prefixed, uuid-keyed entries with an optional TTL.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/open-event-systems/interview/pkg/storage"
	backend "github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an in-flight interview survives between update
// calls unless configured otherwise.
const DefaultTTL = 24 * time.Hour

// Store implements storage.Store using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the expiration for stored interview state. Zero disables
// expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a Redis store with its own client.
func New(addr, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "interview:state:",
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

// Put stores the record under a fresh key.
func (s *Store) Put(ctx context.Context, rec storage.Record) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	key := uuid.NewString()
	if err := s.client.Set(ctx, s.key(key), raw, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to save to redis: %w", err)
	}
	return key, nil
}

// Get retrieves the record for a key.
func (s *Store) Get(ctx context.Context, key string) (*storage.Record, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var rec storage.Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
