// Package service implements the region marketplace. Listings sit on top of
// the registry lock: a listed region is locked until it is sold or unlisted.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"regionx/internal/market/metrics"
	"regionx/internal/market/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/internal/regions/ports"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/platform/events"
	"regionx/pkg/platform/sentinel"
	"regionx/pkg/platform/tx"
)

// Store persists listings. Find returns sentinel.ErrNotFound for unlisted regions.
type Store interface {
	Find(ctx context.Context, id regionmodels.RegionID) (*models.Listing, error)
	Save(ctx context.Context, id regionmodels.RegionID, listing *models.Listing) error
	Delete(ctx context.Context, id regionmodels.RegionID) error
	Count(ctx context.Context) (int, error)
}

// Currency pays sellers.
type Currency interface {
	Transfer(ctx context.Context, from, to domain.AccountID, amount domain.Balance, keepAlive bool) error
}

type TimesliceProvider interface {
	CurrentTimeslice(ctx context.Context) (domain.Timeslice, error)
}

type Service struct {
	store     Store
	regions   ports.Trader
	currency  Currency
	clock     TimesliceProvider
	runner    tx.Runner
	logger    *slog.Logger
	publisher events.Publisher
	metrics   *metrics.Metrics
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

func New(store Store, regions ports.Trader, currency Currency, clock TimesliceProvider, runner tx.Runner, opts ...Option) (*Service, error) {
	switch {
	case store == nil:
		return nil, fmt.Errorf("listing store is required")
	case regions == nil:
		return nil, fmt.Errorf("region registry is required")
	case currency == nil:
		return nil, fmt.Errorf("currency is required")
	case clock == nil:
		return nil, fmt.Errorf("timeslice provider is required")
	case runner == nil:
		return nil, fmt.Errorf("transaction runner is required")
	}
	s := &Service{
		store:    store,
		regions:  regions,
		currency: currency,
		clock:    clock,
		runner:   runner,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SyncMetrics sets the open-listing gauge from the store.
func (s *Service) SyncMetrics(ctx context.Context) error {
	n, err := s.store.Count(ctx)
	if err != nil {
		return err
	}
	s.metrics.SetActive(n)
	return nil
}

func (s *Service) emit(ctx context.Context, name events.Name, kv ...string) error {
	return events.Emit(ctx, s.logger, s.publisher, name, kv...)
}

func (s *Service) listing(ctx context.Context, id regionmodels.RegionID) (*models.Listing, error) {
	l, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrNotListed
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load listing")
	}
	return l, nil
}

// record returns the region's fetched record; regions still waiting for one
// cannot be traded.
func (s *Service) record(ctx context.Context, id regionmodels.RegionID) (regionmodels.RegionRecord, error) {
	rec, err := s.regions.Record(ctx, id)
	if err != nil {
		return regionmodels.RegionRecord{}, err
	}
	available, ok := regionmodels.Available(rec)
	if !ok {
		return regionmodels.RegionRecord{}, regionmodels.ErrRecordUnavailable
	}
	return available, nil
}

func (s *Service) now(ctx context.Context) (domain.Timeslice, error) {
	return s.clock.CurrentTimeslice(ctx)
}

// Listing returns the open listing for a region.
func (s *Service) Listing(ctx context.Context, id regionmodels.RegionID) (*models.Listing, error) {
	return s.listing(ctx, id)
}

func formatBalance(b domain.Balance) string {
	return strconv.FormatUint(uint64(b), 10)
}
