package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"regionx/internal/ismp"
	"regionx/internal/ismp/wire"
)

// Producer is the slice of the Kafka producer the dispatcher uses.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// NonceSource hands out request nonces that are unique across instances.
type NonceSource interface {
	NextNonce(ctx context.Context) (uint64, error)
}

// MemoryNonces counts nonces in process.
type MemoryNonces struct {
	n atomic.Uint64
}

func (m *MemoryNonces) NextNonce(context.Context) (uint64, error) {
	return m.n.Add(1) - 1, nil
}

// RedisNonces increments a shared counter.
type RedisNonces struct {
	client *redis.Client
	key    string
}

func NewRedisNonces(client *redis.Client, key string) *RedisNonces {
	if key == "" {
		key = "regionx:ismp:nonce"
	}
	return &RedisNonces{client: client, key: key}
}

func (r *RedisNonces) NextNonce(ctx context.Context) (uint64, error) {
	n, err := r.client.Incr(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment ismp nonce: %w", err)
	}
	return uint64(n - 1), nil
}

// Dispatcher produces GET requests to the request topic. A request is
// considered dispatched once the broker acknowledges it.
type Dispatcher struct {
	producer Producer
	nonces   NonceSource
	source   ismp.StateMachine
	topic    string
	now      func() time.Time
}

func NewDispatcher(producer Producer, nonces NonceSource, source ismp.StateMachine, topic string) (*Dispatcher, error) {
	switch {
	case producer == nil:
		return nil, fmt.Errorf("kafka producer is required")
	case nonces == nil:
		return nil, fmt.Errorf("nonce source is required")
	case topic == "":
		return nil, fmt.Errorf("request topic is required")
	}
	return &Dispatcher{producer: producer, nonces: nonces, source: source, topic: topic, now: time.Now}, nil
}

// DispatchGet builds the request, turning the relative timeout into a unix
// timestamp, and produces it keyed by its commitment.
func (d *Dispatcher) DispatchGet(ctx context.Context, get ismp.DispatchGet, _ ismp.FeeMetadata) (ismp.Commitment, error) {
	nonce, err := d.nonces.NextNonce(ctx)
	if err != nil {
		return ismp.Commitment{}, err
	}
	var timeout uint64
	if get.Timeout > 0 {
		timeout = uint64(d.now().Unix()) + get.Timeout
	}
	req := ismp.GetRequest{
		Source:           d.source,
		Dest:             get.Dest,
		Nonce:            nonce,
		From:             get.From,
		Keys:             get.Keys,
		Height:           get.Height,
		TimeoutTimestamp: timeout,
	}
	commitment := req.Commitment()
	value, err := json.Marshal(wire.FromGetRequest(req))
	if err != nil {
		return ismp.Commitment{}, fmt.Errorf("marshal get request: %w", err)
	}
	// Produced before the caller commits. A caller that rolls back leaves an
	// orphan request whose response fails the region's commitment check.
	if err := d.producer.Produce(ctx, d.topic, []byte(commitment.String()), value); err != nil {
		return ismp.Commitment{}, err
	}
	return commitment, nil
}

// Heights caches the latest height reported for each state machine.
type Heights struct {
	mu      sync.RWMutex
	heights map[ismp.StateMachineID]uint64
}

func NewHeights() *Heights {
	return &Heights{heights: make(map[ismp.StateMachineID]uint64)}
}

// SetHeight records height unless a higher one is already known.
func (h *Heights) SetHeight(id ismp.StateMachineID, height uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if height > h.heights[id] {
		h.heights[id] = height
	}
}

func (h *Heights) LatestStateMachineHeight(_ context.Context, id ismp.StateMachineID) uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.heights[id]
}
