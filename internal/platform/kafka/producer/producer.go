// Package producer publishes records to Kafka.
package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer wraps a franz-go client configured for synchronous, acknowledged
// produces.
type Producer struct {
	client *kgo.Client
}

type Config struct {
	Brokers  []string
	ClientID string
	Timeout  time.Duration
}

func New(cfg Config) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(0),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(cfg.Timeout))
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Producer{client: client}, nil
}

// Produce writes one record and waits for it to be acknowledged.
func (p *Producer) Produce(ctx context.Context, topic string, key, value []byte) error {
	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// Ping checks broker connectivity.
func (p *Producer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Client exposes the underlying client for admin operations.
func (p *Producer) Client() *kgo.Client {
	return p.client
}

func (p *Producer) Close() {
	p.client.Close()
}

// TopicSink binds a producer to a single topic.
type TopicSink struct {
	producer *Producer
	topic    string
}

func NewTopicSink(p *Producer, topic string) *TopicSink {
	return &TopicSink{producer: p, topic: topic}
}

func (s *TopicSink) Publish(ctx context.Context, key, value []byte) error {
	return s.producer.Produce(ctx, s.topic, key, value)
}
