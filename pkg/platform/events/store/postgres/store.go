package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"regionx/pkg/platform/events"
	txcontext "regionx/pkg/platform/tx"
)

// Store implements events.Publisher using the transactional outbox pattern.
// Events are written to event_outbox in the caller's transaction and relayed
// to Kafka by the outbox worker.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL outbox store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka.
type outboxPayload struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Module     string            `json:"module"`
	Timestamp  string            `json:"timestamp"`
	RequestID  string            `json:"request_id,omitempty"`
	Attributes map[string]string `json:"attributes"`
}

// Entry is an unpublished outbox row.
type Entry struct {
	ID      uuid.UUID
	Name    string
	Payload []byte
}

// Emit writes the event to the outbox table.
func (s *Store) Emit(ctx context.Context, event events.Event) error {
	payload := outboxPayload{
		ID:         event.ID.String(),
		Name:       string(event.Name),
		Module:     event.Name.Module(),
		Timestamp:  event.Timestamp.Format(time.RFC3339Nano),
		RequestID:  event.RequestID,
		Attributes: event.Attributes,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	query := `
		INSERT INTO event_outbox (id, module, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		event.ID,
		payload.Module,
		payload.Name,
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListPending returns up to limit unpublished entries, oldest first.
func (s *Store) ListPending(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, event_type, payload
		FROM event_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkPublished flags an entry as relayed.
func (s *Store) MarkPublished(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE event_outbox SET published_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return fmt.Errorf("mark outbox entry published: %w", err)
	}
	return nil
}
