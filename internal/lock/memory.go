package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryLocker is an in-process Locker backed by go-cache. It is enough for a
// single instance deployment and for tests.
type MemoryLocker struct {
	store *gocache.Cache
	mu    sync.Mutex
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{store: gocache.New(gocache.NoExpiration, time.Minute)}
}

// Acquire stores key only if it is absent or expired.
func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	token := uuid.New().String()
	// mu orders Add against the token check in release, so an entry that
	// expired and was re-acquired is never deleted by the previous holder.
	l.mu.Lock()
	err := l.store.Add(key, token, ttl)
	l.mu.Unlock()
	if err != nil {
		return nil, ErrLockHeld
	}
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if v, ok := l.store.Get(key); ok && v.(string) == token {
			l.store.Delete(key)
		}
	}, nil
}
