// Package cache stores rendered layouts and artifacts keyed by document hash.
//
// # Overview
//
// Rendering a layout document is deterministic: the same document bytes and
// render options always produce the same SVG, PNG or JSON. The pipeline
// therefore caches its outputs under keys derived from [Hash] of the
// document and the options that affect the bytes.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI use)
//   - [RedisCache]: shared cache for the preview server
//   - [MemoryCache]: in-process map, mostly for tests
//   - [NullCache]: never stores anything (--no-cache)
//
// Wrap any backend with [Observe] to report hits, misses and writes to the
// registered [observability.CacheHooks].
//
// # Keys
//
// A [Keyer] builds keys. [DefaultKeyer] produces "layout:<hash>" and
// "artifact:<hash>" keys; [ScopedKeyer] prefixes them, which the CLI uses
// to keep entries from different releases apart.
//
// [observability.CacheHooks]: github.com/matzehuels/gridplot/pkg/observability.CacheHooks
package cache

import (
	"context"
	"sync"
	"time"
)

// Default time-to-live values.
const (
	LayoutTTL   = 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. A ttl of zero never expires.
type Cache interface {
	// Get returns the entry for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// NullCache is a no-op cache that never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

// MemoryCache keeps entries in a map. It is safe for concurrent use.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.Data, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = newEntry(data, ttl, c.now())
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Close() error { return nil }

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheEntry wraps cached data with metadata.
type cacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newEntry(data []byte, ttl time.Duration, now time.Time) cacheEntry {
	e := cacheEntry{Data: data}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	return e
}

func (e cacheEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

var (
	_ Cache = NullCache{}
	_ Cache = (*MemoryCache)(nil)
)
