package region

import (
	"context"
	"sort"
	"sync"

	"regionx/internal/regions/models"
	"regionx/pkg/platform/sentinel"
	"regionx/pkg/platform/tx"
)

// InMemory is a journaled in-memory region store. Writes made inside a
// transaction are undone when it rolls back.
type InMemory struct {
	mu      sync.RWMutex
	regions map[models.RegionID]models.Region
}

func NewInMemory() *InMemory {
	return &InMemory{regions: make(map[models.RegionID]models.Region)}
}

func (s *InMemory) Find(_ context.Context, id models.RegionID) (*models.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.regions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *InMemory) Save(ctx context.Context, id models.RegionID, region *models.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.regions[id]
	s.regions[id] = *region
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existed {
			s.regions[id] = prev
		} else {
			delete(s.regions, id)
		}
	})
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id models.RegionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.regions[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.regions, id)
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.regions[id] = prev
	})
	return nil
}

// ListByStatus returns the ids of regions whose record is in status, ordered
// by begin then core.
func (s *InMemory) ListByStatus(_ context.Context, status models.RecordStatus) ([]models.RegionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []models.RegionID
	for id, r := range s.regions {
		if r.Record.Status() == status {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Begin != ids[j].Begin {
			return ids[i].Begin < ids[j].Begin
		}
		return ids[i].Core < ids[j].Core
	})
	return ids, nil
}
