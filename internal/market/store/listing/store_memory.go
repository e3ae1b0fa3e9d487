package listing

import (
	"context"
	"sync"

	"regionx/internal/market/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/platform/sentinel"
	"regionx/pkg/platform/tx"
)

// InMemory keeps listings in a map, journaling writes for rollback.
type InMemory struct {
	mu       sync.RWMutex
	listings map[regionmodels.RegionID]models.Listing
}

func NewInMemory() *InMemory {
	return &InMemory{listings: make(map[regionmodels.RegionID]models.Listing)}
}

func (s *InMemory) Find(_ context.Context, id regionmodels.RegionID) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &l, nil
}

func (s *InMemory) Save(ctx context.Context, id regionmodels.RegionID, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.listings[id]
	s.listings[id] = *listing
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existed {
			s.listings[id] = prev
		} else {
			delete(s.listings, id)
		}
	})
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id regionmodels.RegionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.listings[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.listings, id)
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listings[id] = prev
	})
	return nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings), nil
}
