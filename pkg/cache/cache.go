// Package cache stores built trees and encoded artifacts between runs.
//
// Backends implement [Cache]: [FileCache] for the CLI (one file per entry
// under the XDG cache directory), [RedisCache] for sharing a cache between
// machines, and [NullCache] when caching is disabled. Keys come from a
// [Keyer] so callers never assemble them by hand.
package cache

import (
	"context"
	"time"
)

// TTLs per cached kind. Trees and artifacts are derived purely from their
// inputs, so they only expire to bound disk usage.
const (
	TTLTree     = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
