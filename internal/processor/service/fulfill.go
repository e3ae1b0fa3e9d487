package service

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	ordermodels "regionx/internal/orders/models"
	"regionx/internal/processor/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/platform/events"
)

// FulfillOrder sells a region owned by caller to an order. The region moves
// to the order creator locked, every contribution is paid to caller and the
// order is removed. The remote assignment is attempted afterwards; its
// failure is reported through an event and left for Assign to retry.
func (s *Service) FulfillOrder(ctx context.Context, caller domain.AccountID, orderID domain.OrderID, regionID regionmodels.RegionID) (err error) {
	ctx, span := s.tracer.Start(ctx, "processor.FulfillOrder")
	span.SetAttributes(
		attribute.Int64("order_id", int64(orderID)),
		attribute.String("region_id", regionID.String()),
	)
	defer func() { endSpan(span, err) }()

	var assignment models.Assignment
	var paid domain.Balance
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		region, err := s.regions.Region(ctx, regionID)
		if err != nil {
			return err
		}
		if region.Locked {
			return regionmodels.ErrRegionLocked
		}
		if region.Owner != caller {
			return regionmodels.ErrNotOwner
		}
		record, ok := regionmodels.Available(region.Record)
		if !ok {
			return regionmodels.ErrRecordUnavailable
		}
		order, err := s.orders.Order(ctx, orderID)
		if err != nil {
			if errors.Is(err, ordermodels.ErrInvalidOrderID) {
				return models.ErrUnknownOrder
			}
			return err
		}
		if err := models.MatchRequirements(regionID, record, order.Requirements); err != nil {
			return err
		}

		if err := s.regions.DoTransfer(ctx, regionID, nil, order.Creator); err != nil {
			return err
		}
		if err := s.regions.Lock(ctx, regionID, nil); err != nil {
			return err
		}
		assignment = models.Assignment{RegionID: regionID, ParaID: order.ParaID}
		if err := s.assignments.Save(ctx, &assignment); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save assignment")
		}

		if paid, err = s.releaseEscrow(ctx, orderID, caller); err != nil {
			return err
		}
		if err := s.orders.RemoveOrder(ctx, orderID); err != nil {
			return err
		}
		return s.emit(ctx, events.OrderProcessed,
			"order_id", strconv.FormatUint(uint64(orderID), 10),
			"region_id", regionID.String(),
			"seller", caller.String(),
			"paid", strconv.FormatUint(uint64(paid), 10),
		)
	})
	if err != nil {
		return err
	}
	s.metrics.ObserveFulfilled(uint64(paid))
	span.SetAttributes(attribute.Int64("para_id", int64(assignment.ParaID)))

	if err := s.dispatch(ctx, assignment); err != nil {
		s.logger.WarnContext(ctx, "region assignment failed, left for retry",
			"region_id", regionID.String(),
			"para_id", assignment.ParaID,
			"error", err,
		)
		if emitErr := s.emit(ctx, events.AssignmentFailed,
			"region_id", regionID.String(),
			"para_id", strconv.FormatUint(uint64(assignment.ParaID), 10),
			"error", err.Error(),
		); emitErr != nil {
			s.logger.WarnContext(ctx, "failed to publish assignment failure", "error", emitErr)
		}
	}
	return nil
}

// releaseEscrow pays every contribution of an order to the seller and clears
// the contribution ledgers.
func (s *Service) releaseEscrow(ctx context.Context, orderID domain.OrderID, seller domain.AccountID) (domain.Balance, error) {
	contributions, err := s.orders.Contributions(ctx, orderID)
	if err != nil {
		return 0, err
	}
	var total domain.Balance
	for _, c := range contributions {
		if err := s.escrow.RepatriateReserved(ctx, c.Who, seller, c.Amount); err != nil {
			return 0, err
		}
		total = total.SaturatingAdd(c.Amount)
	}
	if err := s.orders.ClearContributions(ctx, orderID); err != nil {
		return 0, err
	}
	return total, nil
}

// Assign re-sends the recorded assignment of a region. Anyone may call it,
// any number of times.
func (s *Service) Assign(ctx context.Context, caller domain.AccountID, regionID regionmodels.RegionID) (err error) {
	ctx, span := s.tracer.Start(ctx, "processor.Assign")
	span.SetAttributes(
		attribute.String("region_id", regionID.String()),
		attribute.String("caller", caller.String()),
	)
	defer func() { endSpan(span, err) }()

	a, err := s.Assignment(ctx, regionID)
	if err != nil {
		return err
	}
	return s.dispatch(ctx, *a)
}

// dispatch sends the assign call, then marks the assignment sent and emits
// RegionAssigned.
func (s *Service) dispatch(ctx context.Context, a models.Assignment) error {
	if err := s.assigner.Assign(ctx, a.RegionID, a.ParaID); err != nil {
		s.metrics.IncrementAssignment("failed")
		return err
	}
	s.metrics.IncrementAssignment("sent")
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		a.Sent = true
		if err := s.assignments.Save(ctx, &a); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save assignment")
		}
		return s.emit(ctx, events.RegionAssigned,
			"region_id", a.RegionID.String(),
			"para_id", strconv.FormatUint(uint64(a.ParaID), 10),
		)
	})
}
