package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"terralegit/internal/ratelimit/models"
)

// slidingWindow trims the sorted set to the window, then admits the request
// when there is room. Returns {allowed, remaining, oldest_ms}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local oldest = now
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if #first == 2 then oldest = tonumber(first[2]) end
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	redis.call('PEXPIRE', key, window)
	return {1, limit - count - 1, oldest}
end
return {0, 0, oldest}
`)

// Redis shares sliding window counters between replicas. Each key is a sorted
// set of request ids scored by arrival time in milliseconds.
type Redis struct {
	client redis.Scripter
	now    func() time.Time
}

func NewRedis(client redis.Scripter) *Redis {
	return &Redis{client: client, now: time.Now}
}

func (s *Redis) Allow(ctx context.Context, key string, p models.Policy) (*models.Result, error) {
	now := s.now().UnixMilli()
	raw, err := slidingWindow.Run(ctx, s.client, []string{key},
		strconv.FormatInt(now, 10),
		strconv.FormatInt(p.Window.Milliseconds(), 10),
		strconv.Itoa(p.Limit),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("rate limit script: unexpected reply of %d values", len(raw))
	}
	return &models.Result{
		Allowed:   raw[0] == 1,
		Limit:     p.Limit,
		Remaining: int(raw[1]),
		ResetAt:   time.UnixMilli(raw[2]).Add(p.Window),
	}, nil
}
