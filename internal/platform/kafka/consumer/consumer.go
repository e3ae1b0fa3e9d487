// Package consumer reads Kafka topics as a consumer group and hands each
// record to a Handler.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is a consumed record.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Partition int32
	Offset    int64
}

type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg *Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

type Config struct {
	Brokers []string
	GroupID string
	Topics  []string
}

// Consumer polls its topics and commits offsets after each handled batch.
// A record whose handler fails is logged and committed so one bad message
// cannot stall the partition.
type Consumer struct {
	client *kgo.Client
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Consumer, error) {
	switch {
	case len(cfg.Brokers) == 0:
		return nil, fmt.Errorf("kafka brokers are required")
	case cfg.GroupID == "":
		return nil, fmt.Errorf("consumer group is required")
	case len(cfg.Topics) == 0:
		return nil, fmt.Errorf("at least one topic is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.DisableAutoCommit(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{client: client, logger: logger}, nil
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		for _, fe := range fetches.Errors() {
			if errors.Is(fe.Err, context.Canceled) {
				return nil
			}
			c.logger.ErrorContext(ctx, "kafka fetch error",
				"topic", fe.Topic,
				"partition", fe.Partition,
				"error", fe.Err,
			)
		}
		fetches.EachRecord(func(r *kgo.Record) {
			msg := &Message{
				Topic:     r.Topic,
				Key:       r.Key,
				Value:     r.Value,
				Partition: r.Partition,
				Offset:    r.Offset,
			}
			if err := handler.Handle(ctx, msg); err != nil {
				c.logger.WarnContext(ctx, "message handler failed",
					"topic", r.Topic,
					"partition", r.Partition,
					"offset", r.Offset,
					"error", err,
				)
			}
		})
		if err := c.client.CommitUncommittedOffsets(ctx); err != nil && ctx.Err() == nil {
			c.logger.ErrorContext(ctx, "failed to commit offsets", "error", err)
		}
	}
}

func (c *Consumer) Close() {
	c.client.Close()
}

// Router dispatches messages to a handler per topic.
type Router struct {
	handlers map[string]Handler
	logger   *slog.Logger
}

func NewRouter(logger *slog.Logger) *Router {
	return &Router{handlers: make(map[string]Handler), logger: logger}
}

func (r *Router) Register(topic string, handler Handler) {
	r.handlers[topic] = handler
}

// Topics lists the registered topics.
func (r *Router) Topics() []string {
	topics := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		topics = append(topics, t)
	}
	return topics
}

func (r *Router) Handle(ctx context.Context, msg *Message) error {
	handler, ok := r.handlers[msg.Topic]
	if !ok {
		r.logger.WarnContext(ctx, "no handler for topic, skipping message",
			"topic", msg.Topic,
			"key", string(msg.Key),
		)
		return nil
	}
	return handler.Handle(ctx, msg)
}
