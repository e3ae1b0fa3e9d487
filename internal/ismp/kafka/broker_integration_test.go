//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionx/internal/ismp"
	"regionx/internal/ismp/wire"
	platformkafka "regionx/internal/platform/kafka"
	"regionx/internal/platform/kafka/consumer"
	"regionx/internal/platform/kafka/producer"
	"regionx/pkg/testutil/containers"
)

func TestBrokerRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	broker := containers.GetManager().GetRedpanda(t).Broker
	rc := containers.GetManager().GetRedis(t)
	require.NoError(t, rc.FlushAll(ctx))

	suffix := uuid.NewString()[:8]
	topics := Topics{
		Requests:  "ismp.requests." + suffix,
		Responses: "ismp.responses." + suffix,
		Timeouts:  "ismp.timeouts." + suffix,
		Heights:   "ismp.heights." + suffix,
	}

	p, err := producer.New(producer.Config{Brokers: []string{broker}, ClientID: "regionx-test", Timeout: 10 * time.Second})
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.Ping(ctx))
	require.NoError(t, platformkafka.EnsureTopics(ctx, p.Client(), 1, 1,
		topics.Requests, topics.Responses, topics.Timeouts, topics.Heights))
	require.NoError(t, platformkafka.EnsureTopics(ctx, p.Client(), 1, 1, topics.Requests), "existing topics are tolerated")

	nonces := NewRedisNonces(rc.Client, "regionx:test:nonce")
	dest := ismp.StateMachine{Kind: "KUSAMA", ID: 1005}
	dispatcher, err := NewDispatcher(p, nonces, ismp.StateMachine{Kind: "KUSAMA", ID: 2000}, topics.Requests)
	require.NoError(t, err)

	commitment, err := dispatcher.DispatchGet(ctx, ismp.DispatchGet{
		Dest:    dest,
		From:    []byte("regionx"),
		Keys:    [][]byte{{0x01}},
		Height:  7,
		Timeout: 60,
	}, ismp.FeeMetadata{})
	require.NoError(t, err)

	heights := NewHeights()
	router := consumer.NewRouter(slog.Default())
	Register(router, topics, &recordingModule{}, heights)
	requests := make(chan wire.GetRequest, 1)
	router.Register(topics.Requests, consumer.HandlerFunc(func(_ context.Context, msg *consumer.Message) error {
		var req wire.GetRequest
		if err := json.Unmarshal(msg.Value, &req); err != nil {
			return err
		}
		requests <- req
		return nil
	}))

	update, err := json.Marshal(wire.HeightUpdate{StateMachine: dest, Consensus: "PARA", Height: 99})
	require.NoError(t, err)
	require.NoError(t, producer.NewTopicSink(p, topics.Heights).Publish(ctx, nil, update))

	c, err := consumer.New(consumer.Config{
		Brokers: []string{broker},
		GroupID: "regionx-test-" + suffix,
		Topics:  router.Topics(),
	}, slog.Default())
	require.NoError(t, err)
	defer c.Close()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- c.Run(runCtx, router) }()

	select {
	case req := <-requests:
		assert.Equal(t, commitment.String(), req.Commitment)
		assert.Equal(t, commitment, req.ToISMP().Commitment())
	case <-ctx.Done():
		t.Fatal("request was never consumed")
	}

	id := ismp.StateMachineID{StateID: dest, ConsensusStateID: ismp.ParachainConsensusID}
	assert.Eventually(t, func() bool {
		return heights.LatestStateMachineHeight(ctx, id) == 99
	}, 30*time.Second, 100*time.Millisecond)

	next, err := nonces.NextNonce(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next, "the dispatch consumed nonce zero")

	stop()
	require.NoError(t, <-done)
}
