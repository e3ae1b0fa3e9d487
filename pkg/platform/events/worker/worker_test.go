package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionx/pkg/platform/events/store/postgres"
)

type fakeOutbox struct {
	pending   []postgres.Entry
	published []uuid.UUID
}

func (f *fakeOutbox) ListPending(_ context.Context, limit int) ([]postgres.Entry, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

type fakeSink struct {
	failAfter int
	keys      []string
}

func (f *fakeSink) Publish(_ context.Context, key, _ []byte) error {
	if f.failAfter >= 0 && len(f.keys) == f.failAfter {
		return errors.New("broker down")
	}
	f.keys = append(f.keys, string(key))
	return nil
}

func TestRelayOnce(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	entries := []postgres.Entry{
		{ID: uuid.New(), Name: "region_minted", Payload: []byte(`{}`)},
		{ID: uuid.New(), Name: "region_listed", Payload: []byte(`{}`)},
	}

	t.Run("publishes and marks every entry", func(t *testing.T) {
		outbox := &fakeOutbox{pending: entries}
		sink := &fakeSink{failAfter: -1}
		w := NewWorker(outbox, sink, time.Second, logger)

		n, err := w.RelayOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []uuid.UUID{entries[0].ID, entries[1].ID}, outbox.published)
	})

	t.Run("stops at the first sink failure without marking it", func(t *testing.T) {
		outbox := &fakeOutbox{pending: entries}
		sink := &fakeSink{failAfter: 1}
		w := NewWorker(outbox, sink, time.Second, logger)

		n, err := w.RelayOnce(context.Background())
		require.Error(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, []uuid.UUID{entries[0].ID}, outbox.published)
	})
}
