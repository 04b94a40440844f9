// Package cache holds the response caches used by both the API access layer
// and the server handlers. A Cacher is an explicitly owned object with a
// create/clear lifecycle; nothing in this package is a process-wide
// singleton.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNoEntry      = errors.New("no entry")
	ErrEntryExpired = errors.New("entry expired")
)

type Cacher interface {
	// Remember stores value under key for ttl. Entries are never mutated in
	// place; storing over an existing key replaces the whole entry.
	Remember(ctx context.Context, key string, value any, ttl time.Duration) error
	// Get returns the live value for key, ErrNoEntry when the key was never
	// stored, or ErrEntryExpired when its age passed the ttl.
	Get(ctx context.Context, key string) (any, error)
	// Clear deletes every entry owned by this cacher unconditionally.
	Clear(ctx context.Context) error
}
