// Package lock provides short-lived mutual exclusion keyed by entity identifier.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld is returned when another holder owns the key.
var ErrLockHeld = errors.New("lock is already held")

// Locker acquires a lock on key for at most ttl. The returned release
// function is safe to call once the work is done; it only removes the lock
// if it is still owned by the caller.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
