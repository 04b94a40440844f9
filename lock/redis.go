package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistributedLock coordinates through redis. SET NX makes the
// check-and-acquire a single round trip.
type DistributedLock struct {
	Client *redis.Client
}

func (r *DistributedLock) Lock(ctx context.Context, key string, ttl time.Duration) error {
	acquired, err := r.Client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return err
	}
	if !acquired {
		return ErrHeld
	}
	return nil
}

func (r *DistributedLock) Unlock(ctx context.Context, key string) error {
	return r.Client.Del(ctx, key).Err()
}
