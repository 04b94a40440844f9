package cache

import (
	"context"
	"time"

	"github.com/petrodata/brentdash/errors"
	"github.com/redis/go-redis/v9"
)

// redisCacher stores entries under namespace-prefixed keys so Clear can
// bulk-delete its own entries without touching the rest of the database.
// Values must be string or []byte; the access layer caches raw JSON payloads.
type redisCacher struct {
	client    *redis.Client
	namespace string
}

func NewRedisCacher(client *redis.Client, namespace string) Cacher {
	return &redisCacher{
		client:    client,
		namespace: namespace,
	}
}

func (r *redisCacher) key(key string) string {
	return r.namespace + ":" + key
}

func (r *redisCacher) Remember(ctx context.Context, key string, value any, ttl time.Duration) error {
	return errors.Wrap(r.client.Set(ctx, r.key(key), value, ttl).Err(), "error in redis cacher set")
}

func (r *redisCacher) Get(ctx context.Context, key string) (any, error) {
	bs, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		// redis drops expired keys itself, no way to tell expired from
		// never-stored here.
		return nil, ErrNoEntry
	}
	if err != nil {
		return nil, errors.Wrap(err, "error in redis cacher get")
	}

	return bs, nil
}

func (r *redisCacher) Clear(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, r.namespace+":*").Result()
	if err != nil {
		return errors.Wrap(err, "error in redis cacher listing keys")
	}
	if len(keys) == 0 {
		return nil
	}

	return errors.Wrap(r.client.Del(ctx, keys...).Err(), "error in redis cacher clear")
}
