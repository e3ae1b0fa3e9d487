package bucket

import (
	"context"
	"sync"
	"time"

	"regionx/internal/ratelimit/models"
)

// InMemoryBucketStore keeps a sliding window of request times per key. It is
// per instance; RedisBucketStore shares windows between replicas.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

func New() *InMemoryBucketStore {
	return &InMemoryBucketStore{buckets: make(map[string]*slidingWindow), now: time.Now}
}

func (s *InMemoryBucketStore) Allow(_ context.Context, key string, limit models.Limit) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sw := s.bucket(key, limit.Window)
	sw.cleanup(now)

	if len(sw.timestamps) >= limit.Requests {
		resetAt := sw.timestamps[0].Add(limit.Window)
		return &models.Result{
			Allowed:    false,
			Limit:      limit.Requests,
			ResetAt:    resetAt,
			RetryAfter: retryAfter(now, resetAt),
		}, nil
	}
	sw.timestamps = append(sw.timestamps, now)
	return &models.Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - len(sw.timestamps),
		ResetAt:   sw.timestamps[0].Add(limit.Window),
	}, nil
}

// Reset forgets a key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// cleanup drops timestamps that left the window.
func (sw *slidingWindow) cleanup(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

// bucket must be called with s.mu held.
func (s *InMemoryBucketStore) bucket(key string, window time.Duration) *slidingWindow {
	if sw := s.buckets[key]; sw != nil {
		return sw
	}
	sw := &slidingWindow{window: window}
	s.buckets[key] = sw
	return sw
}

func retryAfter(now, resetAt time.Time) int {
	secs := int(resetAt.Sub(now).Round(time.Second) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
