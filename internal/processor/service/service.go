// Package service fulfills orders with regions and assigns the regions to
// the ordering parachain on the coretime chain.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ordermodels "regionx/internal/orders/models"
	"regionx/internal/processor/metrics"
	"regionx/internal/processor/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/internal/regions/ports"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/platform/events"
	"regionx/pkg/platform/sentinel"
	"regionx/pkg/platform/tx"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks RegionAssigner

// Orders is what the processor needs from the order book.
type Orders interface {
	Order(ctx context.Context, id domain.OrderID) (*ordermodels.Order, error)
	RemoveOrder(ctx context.Context, id domain.OrderID) error
	Contributions(ctx context.Context, id domain.OrderID) ([]ordermodels.Contribution, error)
	ClearContributions(ctx context.Context, id domain.OrderID) error
}

// Escrow pays reserved contributions out.
type Escrow interface {
	RepatriateReserved(ctx context.Context, from, to domain.AccountID, amount domain.Balance) error
}

// RegionAssigner dispatches the remote assignment of a region.
type RegionAssigner interface {
	Assign(ctx context.Context, id regionmodels.RegionID, paraID domain.ParaID) error
}

// Store keeps the assignment retry ledger.
type Store interface {
	Find(ctx context.Context, id regionmodels.RegionID) (*models.Assignment, error)
	Save(ctx context.Context, a *models.Assignment) error
	List(ctx context.Context) ([]models.Assignment, error)
}

type Service struct {
	regions     ports.Trader
	orders      Orders
	escrow      Escrow
	assigner    RegionAssigner
	assignments Store
	runner      tx.Runner
	logger      *slog.Logger
	publisher   events.Publisher
	metrics     *metrics.Metrics
	tracer      trace.Tracer
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

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(regions ports.Trader, orders Orders, escrow Escrow, assigner RegionAssigner, assignments Store, runner tx.Runner, opts ...Option) (*Service, error) {
	switch {
	case regions == nil:
		return nil, fmt.Errorf("region registry is required")
	case orders == nil:
		return nil, fmt.Errorf("order book is required")
	case escrow == nil:
		return nil, fmt.Errorf("escrow is required")
	case assigner == nil:
		return nil, fmt.Errorf("region assigner is required")
	case assignments == nil:
		return nil, fmt.Errorf("assignment store is required")
	case runner == nil:
		return nil, fmt.Errorf("transaction runner is required")
	}
	s := &Service{
		regions:     regions,
		orders:      orders,
		escrow:      escrow,
		assigner:    assigner,
		assignments: assignments,
		runner:      runner,
		logger:      slog.Default(),
		tracer:      otel.Tracer("regionx/processor"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) emit(ctx context.Context, name events.Name, kv ...string) error {
	return events.Emit(ctx, s.logger, s.publisher, name, kv...)
}

// Assignment returns the recorded assignment of a region.
func (s *Service) Assignment(ctx context.Context, id regionmodels.RegionID) (*models.Assignment, error) {
	a, err := s.assignments.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrRegionAssignmentNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load assignment")
	}
	return a, nil
}

// PendingAssignments lists assignments whose call has not been sent yet.
func (s *Service) PendingAssignments(ctx context.Context) ([]models.Assignment, error) {
	all, err := s.assignments.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assignments")
	}
	pending := all[:0]
	for _, a := range all {
		if !a.Sent {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
