//go:build integration

package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terralegit/pkg/testutil/containers"
)

func TestRedisLocker(t *testing.T) {
	rc := containers.GetManager().GetRedis(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	locker := NewRedis(rc.Client, 2*time.Second)

	release, err := locker.Acquire(ctx, "case:abc")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(waitCtx, "case:abc")
	assert.Error(t, err, "second writer must wait")

	release()
	again, err := locker.Acquire(ctx, "case:abc")
	require.NoError(t, err)
	again()
}

func TestRedisLockerExpiry(t *testing.T) {
	rc := containers.GetManager().GetRedis(t)
	ctx := context.Background()

	locker := NewRedis(rc.Client, 100*time.Millisecond)
	stale, err := locker.Acquire(ctx, "listing:ttl")
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)
	fresh, err := locker.Acquire(ctx, "listing:ttl")
	require.NoError(t, err)

	stale()
	exists, err := rc.Client.Exists(ctx, "terralegit:lock:listing:ttl").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists, "stale release must not delete the new holder's lock")
	fresh()
}
