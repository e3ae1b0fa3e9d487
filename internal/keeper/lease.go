package keeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lease elects a single keeper among instances. Acquire returns true while
// the caller holds the lease; holding it again extends it.
type Lease interface {
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

// MemoryLease always grants itself; it serves single-instance deployments.
type MemoryLease struct {
	mu   sync.Mutex
	held bool
}

func (l *MemoryLease) Acquire(context.Context, time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = true
	return true, nil
}

func (l *MemoryLease) Release(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	return nil
}

const DefaultLeaseKey = "regionx:keeper:lease"

// acquireScript takes the lease when free and extends it when we already own it.
var acquireScript = redis.NewScript(`
local owner = redis.call("GET", KEYS[1])
if (not owner) then
  redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
  return 1
end
if owner == ARGV[1] then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
  return 1
end
return 0
`)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease holds a key with a per-instance owner token and a TTL, so a
// crashed keeper's lease lapses on its own.
type RedisLease struct {
	client *redis.Client
	key    string
	owner  string
}

func NewRedisLease(client *redis.Client, key string) *RedisLease {
	if key == "" {
		key = DefaultLeaseKey
	}
	return &RedisLease{client: client, key: key, owner: uuid.NewString()}
}

func (l *RedisLease) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	n, err := acquireScript.Run(ctx, l.client, []string{l.key}, l.owner, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("acquire keeper lease: %w", err)
	}
	return n == 1, nil
}

func (l *RedisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.owner).Err(); err != nil {
		return fmt.Errorf("release keeper lease: %w", err)
	}
	return nil
}
