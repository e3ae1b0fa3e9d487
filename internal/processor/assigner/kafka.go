package assigner

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"regionx/pkg/domain"
)

// Producer is the slice of the Kafka producer the sender uses.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// KafkaSender hands remote calls to the relayer through a topic. The relayer
// wraps them in the cross-chain message that pays for execution.
type KafkaSender struct {
	producer Producer
	topic    string
}

func NewKafkaSender(producer Producer, topic string) (*KafkaSender, error) {
	if producer == nil {
		return nil, fmt.Errorf("kafka producer is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	return &KafkaSender{producer: producer, topic: topic}, nil
}

// RemoteCall is the wire form of a queued call.
type RemoteCall struct {
	ID   string `json:"id"`
	Dest uint32 `json:"dest"`
	Call string `json:"call"`
	Fee  string `json:"fee"`
}

func (s *KafkaSender) Send(ctx context.Context, dest domain.ParaID, call []byte, fee domain.Balance) error {
	msg := RemoteCall{
		ID:   uuid.NewString(),
		Dest: uint32(dest),
		Call: "0x" + hex.EncodeToString(call),
		Fee:  strconv.FormatUint(uint64(fee), 10),
	}
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal remote call: %w", err)
	}
	return s.producer.Produce(ctx, s.topic, []byte(msg.ID), value)
}
