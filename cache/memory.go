package cache

import (
	"context"
	"sync"
	"time"
)

type memoryCacher struct {
	mu   sync.Mutex
	data map[string]cacheValue
}

type cacheValue struct {
	v              any
	registeredTime time.Time
	expireAfter    time.Duration
}

func NewMemoryCacher() Cacher {
	return &memoryCacher{
		data: map[string]cacheValue{},
	}
}

func (m *memoryCacher) Remember(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = cacheValue{
		v:              value,
		registeredTime: time.Now(),
		expireAfter:    ttl,
	}

	return nil
}

func (m *memoryCacher) Get(ctx context.Context, key string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.data[key]
	if !ok {
		return nil, ErrNoEntry
	}

	if value.expireAfter > 0 && value.registeredTime.Add(value.expireAfter).Before(time.Now()) {
		delete(m.data, key)
		return nil, ErrEntryExpired
	}

	return value.v, nil
}

func (m *memoryCacher) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = map[string]cacheValue{}
	return nil
}
