package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"regionx/internal/ismp"
	"regionx/internal/regions/metrics"
	"regionx/internal/regions/models"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/platform/events"
	"regionx/pkg/platform/sentinel"
	"regionx/pkg/platform/tx"
)

// Store persists regions. Find returns sentinel.ErrNotFound for unknown ids.
type Store interface {
	Find(ctx context.Context, id models.RegionID) (*models.Region, error)
	Save(ctx context.Context, id models.RegionID, region *models.Region) error
	Delete(ctx context.Context, id models.RegionID) error
	ListByStatus(ctx context.Context, status models.RecordStatus) ([]models.RegionID, error)
}

// TimesliceProvider reports the current timeslice.
type TimesliceProvider interface {
	CurrentTimeslice(ctx context.Context) (domain.Timeslice, error)
}

// Config names the remote chain regions are read from.
type Config struct {
	CoretimeChain ismp.StateMachine
	// Timeout is the relative timeout, in seconds, given to record requests.
	Timeout uint64
	// ModuleID is the sender identity attached to outgoing requests.
	ModuleID []byte
}

// Service is the region registry.
type Service struct {
	store      Store
	runner     tx.Runner
	dispatcher ismp.Dispatcher
	heights    ismp.HeightProvider
	clock      TimesliceProvider
	cfg        Config
	logger     *slog.Logger
	publisher  events.Publisher
	metrics    *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, runner tx.Runner, dispatcher ismp.Dispatcher, heights ismp.HeightProvider, clock TimesliceProvider, cfg Config, opts ...Option) (*Service, error) {
	switch {
	case store == nil:
		return nil, fmt.Errorf("region store is required")
	case runner == nil:
		return nil, fmt.Errorf("transaction runner is required")
	case dispatcher == nil:
		return nil, fmt.Errorf("ismp dispatcher is required")
	case heights == nil:
		return nil, fmt.Errorf("height provider is required")
	case clock == nil:
		return nil, fmt.Errorf("timeslice provider is required")
	}
	s := &Service{
		store:      store,
		runner:     runner,
		dispatcher: dispatcher,
		heights:    heights,
		clock:      clock,
		cfg:        cfg,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) emit(ctx context.Context, name events.Name, kv ...string) error {
	return events.Emit(ctx, s.logger, s.publisher, name, kv...)
}

func (s *Service) load(ctx context.Context, id models.RegionID) (*models.Region, error) {
	region, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrUnknownRegion
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load region")
	}
	return region, nil
}

func (s *Service) save(ctx context.Context, id models.RegionID, region *models.Region) error {
	if err := s.store.Save(ctx, id, region); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save region")
	}
	return nil
}

// Region returns the region with id.
func (s *Service) Region(ctx context.Context, id models.RegionID) (*models.Region, error) {
	return s.load(ctx, id)
}

// Record returns the record state of the region with id.
func (s *Service) Record(ctx context.Context, id models.RegionID) (models.Record, error) {
	region, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return region.Record, nil
}

// ListByStatus returns the ids of regions whose record is in status.
func (s *Service) ListByStatus(ctx context.Context, status models.RecordStatus) ([]models.RegionID, error) {
	ids, err := s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list regions")
	}
	return ids, nil
}
