package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ideaspark/internal/lock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_Exclusive(t *testing.T) {
	l := lock.NewMemoryLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "order:1", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "order:1", time.Minute)
	assert.ErrorIs(t, err, lock.ErrLockHeld)

	// Different keys do not interfere.
	releaseOther, err := l.Acquire(ctx, "order:2", time.Minute)
	require.NoError(t, err)
	releaseOther()

	release()
	release2, err := l.Acquire(ctx, "order:1", time.Minute)
	require.NoError(t, err)
	release2()
}

func TestMemoryLocker_Expires(t *testing.T) {
	l := lock.NewMemoryLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "order:1", 20*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)

	release2, err := l.Acquire(ctx, "order:1", time.Minute)
	require.NoError(t, err)

	// A stale release must not drop the new holder's lock.
	release()
	_, err = l.Acquire(ctx, "order:1", time.Minute)
	assert.ErrorIs(t, err, lock.ErrLockHeld)
	release2()
}

func TestMemoryLocker_Concurrent(t *testing.T) {
	l := lock.NewMemoryLocker()
	var acquired int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Acquire(context.Background(), "order:1", time.Minute); err == nil {
				atomic.AddInt32(&acquired, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), acquired)
}

func TestMemoryLocker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := lock.NewMemoryLocker().Acquire(ctx, "order:1", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryLocker_StaleReleaseRacingReacquire(t *testing.T) {
	l := lock.NewMemoryLocker()
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		stale, err := l.Acquire(ctx, "order:1", time.Millisecond)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			stale()
		}()
		current, err := l.Acquire(ctx, "order:1", time.Minute)
		wg.Wait()
		require.NoError(t, err)

		_, err = l.Acquire(ctx, "order:1", time.Minute)
		require.ErrorIs(t, err, lock.ErrLockHeld, "round %d", i)
		current()
	}
}
