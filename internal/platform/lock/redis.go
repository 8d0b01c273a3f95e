package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	dErrors "terralegit/pkg/domain-errors"
	"terralegit/pkg/platform/sentinel"
)

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by another writer is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared across processes. Locks expire after ttl so a
// crashed holder cannot block an entity forever.
type Redis struct {
	client   redis.UniversalClient
	prefix   string
	ttl      time.Duration
	retryMin time.Duration
	retryMax time.Duration
}

// NewRedis creates a Redis-backed Locker.
func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{
		client:   client,
		prefix:   "terralegit:lock:",
		ttl:      ttl,
		retryMin: 10 * time.Millisecond,
		retryMax: 200 * time.Millisecond,
	}
}

func (l *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	token := uuid.NewString()
	redisKey := l.prefix + key
	backoff := l.retryMin

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for entity lock")
			}
			return nil, dErrors.Wrap(errors.Join(sentinel.ErrUnavailable, err), dErrors.CodeStorageUnavailable, "lock backend unavailable")
		}
		if ok {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, dErrors.Wrap(errors.Join(sentinel.ErrLockHeld, ctx.Err()), dErrors.CodeTimeout, "timed out waiting for entity lock")
		case <-timer.C:
		}
		backoff *= 2
		if backoff > l.retryMax {
			backoff = l.retryMax
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err()
	}, nil
}
