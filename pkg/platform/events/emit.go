package events

import (
	"context"
	"log/slog"

	"regionx/pkg/platform/tx"
	"regionx/pkg/requestcontext"
)

// Emit logs the event once committed and hands it to the publisher. It is the shared helper
// services use so every state change is both logged and published. A
// publisher error is returned so the surrounding transaction fails with it.
func Emit(ctx context.Context, logger *slog.Logger, publisher Publisher, name Name, kv ...string) error {
	event := New(name, kv...)
	event.RequestID = requestcontext.RequestID(ctx)

	if logger != nil {
		args := make([]any, 0, len(kv)+6)
		for _, v := range kv {
			args = append(args, v)
		}
		args = append(args, "event", string(name), "module", name.Module())
		if event.RequestID != "" {
			args = append(args, "request_id", event.RequestID)
		}
		tx.OnCommit(ctx, func() {
			logger.InfoContext(ctx, string(name), args...)
		})
	}

	if publisher == nil {
		return nil
	}
	if err := publisher.Emit(ctx, event); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to publish event", "event", string(name), "error", err)
		}
		return err
	}
	return nil
}
