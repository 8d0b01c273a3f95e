package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "terralegit/pkg/domain-errors"
)

func TestMemory(t *testing.T) {
	t.Run("serializes holders of the same key", func(t *testing.T) {
		locker := NewMemory()
		var (
			wg      sync.WaitGroup
			inside  atomic.Int32
			maxSeen atomic.Int32
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := locker.Acquire(context.Background(), "listing:1")
				if !assert.NoError(t, err) {
					return
				}
				n := inside.Add(1)
				if n > maxSeen.Load() {
					maxSeen.Store(n)
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				release()
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), maxSeen.Load())
		assert.Zero(t, locker.Size(), "entries are removed once released")
	})

	t.Run("different keys do not block", func(t *testing.T) {
		locker := NewMemory()
		r1, err := locker.Acquire(context.Background(), "case:1")
		require.NoError(t, err)
		defer r1()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		r2, err := locker.Acquire(ctx, "case:2")
		require.NoError(t, err)
		r2()
	})

	t.Run("waiting respects context", func(t *testing.T) {
		locker := NewMemory()
		release, err := locker.Acquire(context.Background(), "shipment:1")
		require.NoError(t, err)
		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = locker.Acquire(ctx, "shipment:1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	t.Run("release is idempotent", func(t *testing.T) {
		locker := NewMemory()
		release, err := locker.Acquire(context.Background(), "listing:2")
		require.NoError(t, err)
		release()
		release()

		again, err := locker.Acquire(context.Background(), "listing:2")
		require.NoError(t, err)
		again()
	})
}

func TestBounded(t *testing.T) {
	mem := NewMemory()
	locker := Bounded{Locker: mem, Wait: 20 * time.Millisecond}

	release, err := locker.Acquire(context.Background(), "case:1")
	require.NoError(t, err)

	start := time.Now()
	_, err = locker.Acquire(context.Background(), "case:1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.Less(t, time.Since(start), time.Second)

	release()
	again, err := locker.Acquire(context.Background(), "case:1")
	require.NoError(t, err)
	again()
	assert.Equal(t, 0, mem.Size())
}
