// Package cache stores parsed data sources so that reopening a large CSV or
// XLSX file skips parsing.
//
// Entries are opaque byte slices under string keys. Keys for sources are
// built with [SourceKey], which changes whenever the file does, so stale
// entries are never read; they only take space until [FileCache.Clear].
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}
