// Package contribution stores the per-account and per-order contribution
// ledgers. Zero amounts are not stored.
package contribution

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"regionx/internal/orders/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/tx"
)

type key struct {
	order domain.OrderID
	who   domain.AccountID
}

type InMemory struct {
	mu     sync.RWMutex
	shares map[key]domain.Balance
	totals map[domain.OrderID]domain.Balance
}

func NewInMemory() *InMemory {
	return &InMemory{
		shares: make(map[key]domain.Balance),
		totals: make(map[domain.OrderID]domain.Balance),
	}
}

func (s *InMemory) Contribution(_ context.Context, order domain.OrderID, who domain.AccountID) (domain.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shares[key{order, who}], nil
}

func (s *InMemory) Total(_ context.Context, order domain.OrderID) (domain.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals[order], nil
}

func (s *InMemory) SetContribution(ctx context.Context, order domain.OrderID, who domain.AccountID, amount domain.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	setJournaled(ctx, &s.mu, s.shares, key{order, who}, amount)
	return nil
}

func (s *InMemory) SetTotal(ctx context.Context, order domain.OrderID, amount domain.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	setJournaled(ctx, &s.mu, s.totals, order, amount)
	return nil
}

// List returns the contributors of an order ordered by account id.
func (s *InMemory) List(_ context.Context, order domain.OrderID) ([]models.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Contribution
	for k, amount := range s.shares {
		if k.order == order {
			out = append(out, models.Contribution{Who: k.who, Amount: amount})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Who[:], out[j].Who[:]) < 0
	})
	return out, nil
}

// Clear drops every contribution and the total of an order.
func (s *InMemory) Clear(ctx context.Context, order domain.OrderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.shares {
		if k.order == order {
			setJournaled(ctx, &s.mu, s.shares, k, 0)
		}
	}
	setJournaled(ctx, &s.mu, s.totals, order, 0)
	return nil
}

// setJournaled writes m[k] = v, deleting on zero, and journals the previous
// value. Callers hold mu.
func setJournaled[K comparable](ctx context.Context, mu *sync.RWMutex, m map[K]domain.Balance, k K, v domain.Balance) {
	prev, existed := m[k]
	if v == 0 {
		delete(m, k)
	} else {
		m[k] = v
	}
	tx.OnRollback(ctx, func() {
		mu.Lock()
		defer mu.Unlock()
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	})
}
