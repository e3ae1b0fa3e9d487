package service

import (
	"context"
	"errors"

	"regionx/internal/orders/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/events"
)

// CreateOrder charges the creation fee and stores a new order under the next
// sequential id.
func (s *Service) CreateOrder(ctx context.Context, caller domain.AccountID, paraID domain.ParaID, requirements models.Requirements) (domain.OrderID, error) {
	if err := requirements.Validate(); err != nil {
		return 0, err
	}
	var id domain.OrderID
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.fees.Handle(ctx, caller, s.cfg.CreationCost); err != nil {
			return err
		}
		var err error
		if id, err = s.orders.NextOrderID(ctx); err != nil {
			return wrapInternal(err, "failed to allocate order id")
		}
		order := &models.Order{Creator: caller, ParaID: paraID, Requirements: requirements}
		if err := s.orders.Save(ctx, id, order); err != nil {
			return wrapInternal(err, "failed to save order")
		}
		return s.emit(ctx, events.OrderCreated, "order_id", formatID(id), "by", caller.String())
	})
	if err != nil {
		return 0, err
	}
	s.metrics.IncrementCreated()
	return id, nil
}

// CancelOrder deletes an order. Contributions stay reserved until each
// contributor removes theirs.
func (s *Service) CancelOrder(ctx context.Context, caller domain.AccountID, id domain.OrderID) error {
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		now, err := s.clock.CurrentTimeslice(ctx)
		if err != nil {
			return err
		}
		if !order.Cancellable(caller, now) {
			return models.ErrNotAllowed
		}
		if err := s.orders.Delete(ctx, id); err != nil {
			return wrapInternal(err, "failed to delete order")
		}
		return s.emit(ctx, events.OrderRemoved, "order_id", formatID(id), "by", caller.String())
	})
	if err != nil {
		return err
	}
	s.metrics.IncrementRemoved()
	return nil
}

// Contribute reserves amount from caller toward an open order.
func (s *Service) Contribute(ctx context.Context, caller domain.AccountID, id domain.OrderID, amount domain.Balance) error {
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		now, err := s.clock.CurrentTimeslice(ctx)
		if err != nil {
			return err
		}
		if order.Expired(now) {
			return models.ErrOrderExpired
		}
		if amount < s.cfg.MinimumContribution {
			return models.ErrInvalidAmount
		}
		if err := s.currency.Reserve(ctx, caller, amount); err != nil {
			return err
		}

		share, err := s.contributions.Contribution(ctx, id, caller)
		if err != nil {
			return wrapInternal(err, "failed to load contribution")
		}
		total, err := s.contributions.Total(ctx, id)
		if err != nil {
			return wrapInternal(err, "failed to load total contribution")
		}
		if err := s.contributions.SetContribution(ctx, id, caller, share.SaturatingAdd(amount)); err != nil {
			return wrapInternal(err, "failed to save contribution")
		}
		if err := s.contributions.SetTotal(ctx, id, total.SaturatingAdd(amount)); err != nil {
			return wrapInternal(err, "failed to save total contribution")
		}
		return s.emit(ctx, events.Contributed,
			"order_id", formatID(id),
			"who", caller.String(),
			"amount", formatBalance(amount),
		)
	})
	if err != nil {
		return err
	}
	s.metrics.ObserveContribution(uint64(amount))
	return nil
}

// RemoveContribution returns caller's escrow once the order is gone.
func (s *Service) RemoveContribution(ctx context.Context, caller domain.AccountID, id domain.OrderID) error {
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		_, err := s.load(ctx, id)
		switch {
		case err == nil:
			return models.ErrOrderNotCancelled
		case !errors.Is(err, models.ErrInvalidOrderID):
			return err
		}

		amount, err := s.contributions.Contribution(ctx, id, caller)
		if err != nil {
			return wrapInternal(err, "failed to load contribution")
		}
		if amount == 0 {
			return models.ErrNoContribution
		}
		total, err := s.contributions.Total(ctx, id)
		if err != nil {
			return wrapInternal(err, "failed to load total contribution")
		}

		left, err := s.currency.Unreserve(ctx, caller, amount)
		if err != nil {
			return err
		}
		if left != 0 {
			s.logger.ErrorContext(ctx, "reserved balance below recorded contribution",
				"order_id", formatID(id),
				"who", caller.String(),
				"contribution", formatBalance(amount),
				"shortfall", formatBalance(left),
			)
			return models.ErrReserveMismatch
		}
		if err := s.contributions.SetContribution(ctx, id, caller, 0); err != nil {
			return wrapInternal(err, "failed to clear contribution")
		}
		if err := s.contributions.SetTotal(ctx, id, total.SaturatingSub(amount)); err != nil {
			return wrapInternal(err, "failed to save total contribution")
		}
		return s.emit(ctx, events.ContributionRemoved,
			"order_id", formatID(id),
			"who", caller.String(),
			"amount", formatBalance(amount),
		)
	})
	if err != nil {
		return err
	}
	s.metrics.IncrementContributionRemoved()
	return nil
}
