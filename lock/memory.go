package lock

import (
	"context"
	"sync"
	"time"
)

// InMemoryLock is the single-process Locker. TTLs expire lazily on the next
// acquire attempt.
type InMemoryLock struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewInMemoryLock() *InMemoryLock {
	return &InMemoryLock{held: map[string]time.Time{}}
}

func (l *InMemoryLock) Lock(ctx context.Context, key string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if deadline, ok := l.held[key]; ok && time.Now().Before(deadline) {
		return ErrHeld
	}
	l.held[key] = time.Now().Add(ttl)
	return nil
}

func (l *InMemoryLock) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
