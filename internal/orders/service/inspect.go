package service

import (
	"context"

	"regionx/internal/orders/models"
	"regionx/pkg/domain"
)

// Order returns a live order.
func (s *Service) Order(ctx context.Context, id domain.OrderID) (*models.Order, error) {
	return s.load(ctx, id)
}

// Orders lists the ids of live orders.
func (s *Service) Orders(ctx context.Context) ([]domain.OrderID, error) {
	ids, err := s.orders.ListIDs(ctx)
	return ids, wrapInternal(err, "failed to list orders")
}

// RemoveOrder deletes a fulfilled order without touching contributions.
func (s *Service) RemoveOrder(ctx context.Context, id domain.OrderID) error {
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.load(ctx, id); err != nil {
			return err
		}
		return wrapInternal(s.orders.Delete(ctx, id), "failed to delete order")
	})
}

// Contributions lists the contributors of an order.
func (s *Service) Contributions(ctx context.Context, id domain.OrderID) ([]models.Contribution, error) {
	list, err := s.contributions.List(ctx, id)
	return list, wrapInternal(err, "failed to list contributions")
}

func (s *Service) Contribution(ctx context.Context, id domain.OrderID, who domain.AccountID) (domain.Balance, error) {
	amount, err := s.contributions.Contribution(ctx, id, who)
	return amount, wrapInternal(err, "failed to load contribution")
}

func (s *Service) TotalContributions(ctx context.Context, id domain.OrderID) (domain.Balance, error) {
	total, err := s.contributions.Total(ctx, id)
	return total, wrapInternal(err, "failed to load total contribution")
}

// ClearContributions zeroes both ledgers of an order after its escrow has been paid out.
func (s *Service) ClearContributions(ctx context.Context, id domain.OrderID) error {
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		return wrapInternal(s.contributions.Clear(ctx, id), "failed to clear contributions")
	})
}
