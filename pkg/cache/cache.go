// Package cache provides content-addressed caching for pipeline stages:
// classification results, built trees, and computed layouts.
//
// Three backends share one interface: a file cache for CLI usage, a redis
// cache for server deployments, and a null cache that disables caching
// entirely (tests, --no-cache). Keys are produced by a [Keyer] so that every
// input that affects a stage's output is part of its key.
package cache

import (
	"context"
	"time"
)

// TTLs per artifact class. Trees and layouts are pure functions of their
// inputs, so the TTL mostly bounds disk usage rather than staleness.
const (
	TTLClassify = 7 * 24 * time.Hour
	TTLTree     = 24 * time.Hour
	TTLLayout   = 24 * time.Hour
)

// Cache stores opaque bytes under string keys with per-entry TTLs.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NullCache is a no-op cache that never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always returns a miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
