// Package lock guards operations that must not run concurrently across the
// fleet, like dataset reloads.
package lock

import (
	"context"
	"time"

	"github.com/petrodata/brentdash/errors"
)

// ErrHeld is returned when someone else holds the lock.
var ErrHeld = errors.New("lock already held")

type Locker interface {
	// Lock acquires key for at most ttl, or fails with ErrHeld.
	Lock(ctx context.Context, key string, ttl time.Duration) error
	Unlock(ctx context.Context, key string) error
}
