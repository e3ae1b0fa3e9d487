// Package service manages coretime orders and the funds contributors escrow
// toward them.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"regionx/internal/orders/metrics"
	"regionx/internal/orders/models"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/platform/events"
	"regionx/pkg/platform/sentinel"
	"regionx/pkg/platform/tx"
)

// OrderStore persists orders and owns the id sequence.
type OrderStore interface {
	NextOrderID(ctx context.Context) (domain.OrderID, error)
	Find(ctx context.Context, id domain.OrderID) (*models.Order, error)
	Save(ctx context.Context, id domain.OrderID, order *models.Order) error
	Delete(ctx context.Context, id domain.OrderID) error
	ListIDs(ctx context.Context) ([]domain.OrderID, error)
}

// ContributionStore keeps the individual and total contribution ledgers.
type ContributionStore interface {
	Contribution(ctx context.Context, order domain.OrderID, who domain.AccountID) (domain.Balance, error)
	SetContribution(ctx context.Context, order domain.OrderID, who domain.AccountID, amount domain.Balance) error
	Total(ctx context.Context, order domain.OrderID) (domain.Balance, error)
	SetTotal(ctx context.Context, order domain.OrderID, amount domain.Balance) error
	List(ctx context.Context, order domain.OrderID) ([]models.Contribution, error)
	Clear(ctx context.Context, order domain.OrderID) error
}

// Reserver escrows contributions.
type Reserver interface {
	Reserve(ctx context.Context, who domain.AccountID, amount domain.Balance) error
	Unreserve(ctx context.Context, who domain.AccountID, amount domain.Balance) (domain.Balance, error)
}

type TimesliceProvider interface {
	CurrentTimeslice(ctx context.Context) (domain.Timeslice, error)
}

type Config struct {
	CreationCost        domain.Balance
	MinimumContribution domain.Balance
}

type Service struct {
	orders        OrderStore
	contributions ContributionStore
	currency      Reserver
	fees          FeeHandler
	clock         TimesliceProvider
	runner        tx.Runner
	cfg           Config
	logger        *slog.Logger
	publisher     events.Publisher
	metrics       *metrics.Metrics
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

func New(orders OrderStore, contributions ContributionStore, currency Reserver, fees FeeHandler, clock TimesliceProvider, runner tx.Runner, cfg Config, opts ...Option) (*Service, error) {
	switch {
	case orders == nil:
		return nil, fmt.Errorf("order store is required")
	case contributions == nil:
		return nil, fmt.Errorf("contribution store is required")
	case currency == nil:
		return nil, fmt.Errorf("currency is required")
	case fees == nil:
		return nil, fmt.Errorf("fee handler is required")
	case clock == nil:
		return nil, fmt.Errorf("timeslice provider is required")
	case runner == nil:
		return nil, fmt.Errorf("transaction runner is required")
	}
	s := &Service{
		orders:        orders,
		contributions: contributions,
		currency:      currency,
		fees:          fees,
		clock:         clock,
		runner:        runner,
		cfg:           cfg,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) emit(ctx context.Context, name events.Name, kv ...string) error {
	return events.Emit(ctx, s.logger, s.publisher, name, kv...)
}

func (s *Service) load(ctx context.Context, id domain.OrderID) (*models.Order, error) {
	o, err := s.orders.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrInvalidOrderID
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load order")
	}
	return o, nil
}

func formatID(id domain.OrderID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func formatBalance(b domain.Balance) string {
	return strconv.FormatUint(uint64(b), 10)
}

func wrapInternal(err error, msg string) error {
	if err == nil {
		return nil
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
