package order

import (
	"context"
	"math"
	"sort"
	"sync"

	"regionx/internal/orders/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/sentinel"
	"regionx/pkg/platform/tx"
)

// InMemory stores orders and owns the order id sequence.
type InMemory struct {
	mu     sync.RWMutex
	orders map[domain.OrderID]models.Order
	next   domain.OrderID
}

func NewInMemory() *InMemory {
	return &InMemory{orders: make(map[domain.OrderID]models.Order)}
}

// NextOrderID hands out the current sequence value and advances it,
// saturating at the maximum id.
func (s *InMemory) NextOrderID(ctx context.Context) (domain.OrderID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	if s.next < math.MaxUint32 {
		s.next++
	}
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.next = id
	})
	return id, nil
}

func (s *InMemory) Find(_ context.Context, id domain.OrderID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &o, nil
}

func (s *InMemory) Save(ctx context.Context, id domain.OrderID, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.orders[id]
	s.orders[id] = *order
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existed {
			s.orders[id] = prev
		} else {
			delete(s.orders, id)
		}
	})
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id domain.OrderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.orders[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.orders, id)
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.orders[id] = prev
	})
	return nil
}

// ListIDs returns every live order id in ascending order.
func (s *InMemory) ListIDs(_ context.Context) ([]domain.OrderID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]domain.OrderID, 0, len(s.orders))
	for id := range s.orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
