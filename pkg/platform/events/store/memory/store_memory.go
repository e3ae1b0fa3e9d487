package memory

import (
	"context"
	"sync"

	"regionx/pkg/platform/events"
	"regionx/pkg/platform/tx"
)

// InMemoryStore keeps emitted events in order. Events emitted inside a
// transaction are appended only once it commits.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []events.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Emit(ctx context.Context, event events.Event) error {
	tx.OnCommit(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.events = append(s.events, event)
	})
	return nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// ListAll returns every event in emission order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]events.Event{}, s.events...), nil
}

// ListByName returns the events with the given name in emission order.
func (s *InMemoryStore) ListByName(_ context.Context, name events.Name) ([]events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []events.Event
	for _, e := range s.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out, nil
}
