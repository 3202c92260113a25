package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	store := newInMemoryIdempotencyStore(clock.Now, time.Hour)
	defer store.Close()
	ctx := context.Background()

	t.Run("first delivery is accepted", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "evt-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("redelivery is rejected", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "evt-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)

		processed, err := store.IsProcessed(ctx, "evt-1")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("accepted again after expiry", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "evt-2", time.Minute)
		require.NoError(t, err)
		clock.Advance(2 * time.Minute)

		processed, err := store.IsProcessed(ctx, "evt-2")
		require.NoError(t, err)
		assert.False(t, processed)

		isNew, err := store.MarkProcessed(ctx, "evt-2", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("release forgets the event", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "evt-3", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "evt-3"))

		isNew, err := store.MarkProcessed(ctx, "evt-3", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_ExactlyOnceUnderConcurrency(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if isNew, _ := store.MarkProcessed(context.Background(), "same-event", time.Hour); isNew {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newInMemoryIdempotencyStore(clock.Now, time.Hour)
	defer store.Close()
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "short", time.Minute)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	clock.Advance(5 * time.Minute)

	store.cleanup()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
