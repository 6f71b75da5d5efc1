// Package cache stores encoded trip summaries keyed by snapshot fingerprint.
// Entries never need invalidation: a changed ledger has a different
// fingerprint, so stale entries simply stop being asked for and age out.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache.
type Cache interface {
	// Get returns the cached value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value, replacing any existing one.
	Set(ctx context.Context, key string, val []byte) error

	// Close releases any resources held by the cache.
	Close() error
}

// Nop is a Cache that never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error         { return nil }
func (Nop) Close() error                                      { return nil }

// Cleaner is implemented by caches that need periodic expiry sweeps.
type Cleaner interface {
	CleanExpired() int
}

// RunJanitor sweeps expired entries every interval until ctx is done.
// onClean, when set, receives the number of entries removed per sweep.
func RunJanitor(ctx context.Context, c Cleaner, interval time.Duration, onClean func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := c.CleanExpired()
			if onClean != nil {
				onClean(removed)
			}
		case <-ctx.Done():
			return
		}
	}
}
