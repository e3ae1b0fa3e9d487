package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"regionx/pkg/platform/events/store/postgres"
)

// Outbox is the source of unpublished events.
type Outbox interface {
	ListPending(ctx context.Context, limit int) ([]postgres.Entry, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

// Sink publishes a relayed event.
type Sink interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Worker relays outbox entries to a sink. Entries are marked published only
// after the sink accepts them, so delivery is at-least-once.
type Worker struct {
	outbox    Outbox
	sink      Sink
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewWorker(outbox Outbox, sink Sink, interval time.Duration, logger *slog.Logger) *Worker {
	return &Worker{outbox: outbox, sink: sink, interval: interval, batchSize: 100, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.RelayOnce(ctx); err != nil {
				w.logger.WarnContext(ctx, "outbox relay failed", "error", err)
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many entries were relayed.
func (w *Worker) RelayOnce(ctx context.Context) (int, error) {
	entries, err := w.outbox.ListPending(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	for i, e := range entries {
		if err := w.sink.Publish(ctx, []byte(e.ID.String()), e.Payload); err != nil {
			return i, err
		}
		if err := w.outbox.MarkPublished(ctx, e.ID); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}
