// Package cache stores fetched metadata documents between runs.
//
// Resolution is dominated by metadata round-trips, and the same documents
// (popular parents, shared libraries) are requested again on every run.
// A [Cache] keeps their raw bytes keyed by URL so repeat runs only touch the
// network for artifacts that are actually missing locally.
//
// Three backends are provided:
//   - [FileCache]: one JSON file per entry under a local directory
//   - [RedisCache]: a shared Redis instance, for CI fleets
//   - [NullCache]: stores nothing, used by --no-cache
//
// Wrap any backend with [Instrument] to report hits, misses and writes
// through the registered observability hooks.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long metadata stays fresh when no TTL is configured.
// Published documents never change, so this only bounds stale negative state
// and disk growth.
const DefaultTTL = 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
