package assignment

import (
	"context"
	"sort"
	"sync"

	"regionx/internal/processor/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/platform/sentinel"
	"regionx/pkg/platform/tx"
)

type InMemory struct {
	mu          sync.RWMutex
	assignments map[regionmodels.RegionID]models.Assignment
}

func NewInMemory() *InMemory {
	return &InMemory{assignments: make(map[regionmodels.RegionID]models.Assignment)}
}

func (s *InMemory) Find(_ context.Context, id regionmodels.RegionID) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}

func (s *InMemory) Save(ctx context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.assignments[a.RegionID]
	s.assignments[a.RegionID] = *a
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existed {
			s.assignments[a.RegionID] = prev
		} else {
			delete(s.assignments, a.RegionID)
		}
	})
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id regionmodels.RegionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.assignments[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.assignments, id)
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.assignments[id] = prev
	})
	return nil
}

// List returns every recorded assignment ordered by region begin then core.
func (s *InMemory) List(_ context.Context) ([]models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegionID.Begin != out[j].RegionID.Begin {
			return out[i].RegionID.Begin < out[j].RegionID.Begin
		}
		return out[i].RegionID.Core < out[j].RegionID.Core
	})
	return out, nil
}
