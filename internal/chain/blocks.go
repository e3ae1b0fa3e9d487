package chain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// BlockCache stores the latest observed relay block number.
type BlockCache interface {
	Latest(ctx context.Context) (uint64, bool, error)
	Advance(ctx context.Context, block uint64) error
}

// MemoryCache is a process-local BlockCache. It doubles as a manually driven
// block source for tests and local runs.
type MemoryCache struct {
	mu    sync.RWMutex
	block uint64
	known bool
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (m *MemoryCache) Latest(context.Context) (uint64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.block, m.known, nil
}

// Advance records block if it is not behind the current value.
func (m *MemoryCache) Advance(_ context.Context, block uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.known || block > m.block {
		m.block = block
		m.known = true
	}
	return nil
}

// Set overwrites the block number, including moving it backwards.
func (m *MemoryCache) Set(block uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block = block
	m.known = true
}

const relayBlockKey = "regionx:relay:block"

// advanceScript stores ARGV[1] only when it is greater than the current value.
var advanceScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if (not cur) or (tonumber(ARGV[1]) > tonumber(cur)) then
  redis.call("SET", KEYS[1], ARGV[1])
  return 1
end
return 0
`)

// RedisCache shares the latest relay block between instances.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Latest(ctx context.Context) (uint64, bool, error) {
	v, err := r.client.Get(ctx, relayBlockKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read relay block: %w", err)
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse relay block %q: %w", v, err)
	}
	return n, true, nil
}

func (r *RedisCache) Advance(ctx context.Context, block uint64) error {
	if err := advanceScript.Run(ctx, r.client, []string{relayBlockKey}, block).Err(); err != nil {
		return fmt.Errorf("advance relay block: %w", err)
	}
	return nil
}

// CachedBlocks serves CurrentBlockNumber from a cache filled by the poller.
type CachedBlocks struct {
	cache BlockCache
}

func NewCachedBlocks(cache BlockCache) *CachedBlocks {
	return &CachedBlocks{cache: cache}
}

func (c *CachedBlocks) CurrentBlockNumber(ctx context.Context) (uint64, error) {
	block, ok, err := c.cache.Latest(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNoBlock
	}
	return block, nil
}
