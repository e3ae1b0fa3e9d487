package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"regionx/internal/ratelimit/models"
)

// The window is a sorted set scored by request time in milliseconds. Expired
// members are trimmed, then the request is admitted only below the limit.
// Returns {allowed, count, oldest score}.
var slidingWindowScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - window)
local count = redis.call("ZCARD", KEYS[1])
local allowed = 0
if count < limit then
  redis.call("ZADD", KEYS[1], now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call("PEXPIRE", KEYS[1], window)
local oldest = redis.call("ZRANGE", KEYS[1], 0, 0, "WITHSCORES")
local first = now
if oldest[2] then
  first = tonumber(oldest[2])
end
return {allowed, count, first}
`)

// RedisBucketStore shares sliding windows between instances.
type RedisBucketStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedis(client *redis.Client) *RedisBucketStore {
	return &RedisBucketStore{client: client, now: time.Now}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error) {
	now := s.now()
	res, err := slidingWindowScript.Run(ctx, s.client, []string{key},
		now.UnixMilli(), limit.Window.Milliseconds(), limit.Requests, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("check rate limit: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("check rate limit: unexpected reply %v", res)
	}
	resetAt := time.UnixMilli(res[2]).Add(limit.Window)
	result := &models.Result{
		Allowed: res[0] == 1,
		Limit:   limit.Requests,
		ResetAt: resetAt,
	}
	if result.Allowed {
		result.Remaining = limit.Requests - int(res[1])
	} else {
		result.RetryAfter = retryAfter(now, resetAt)
	}
	return result, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
