package service

import (
	"context"
	"errors"

	"regionx/internal/market/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/platform/events"
	"regionx/pkg/platform/sentinel"
)

// ListRegion puts a region owned by caller up for sale and locks it. A nil
// recipient pays the seller.
func (s *Service) ListRegion(ctx context.Context, caller domain.AccountID, id regionmodels.RegionID, timeslicePrice domain.Balance, recipient *domain.AccountID) error {
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		_, err := s.store.Find(ctx, id)
		switch {
		case err == nil:
			return models.ErrAlreadyListed
		case !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load listing")
		}

		record, err := s.record(ctx, id)
		if err != nil {
			return err
		}
		now, err := s.now(ctx)
		if err != nil {
			return err
		}
		if models.Expired(record, now) {
			return models.ErrRegionExpired
		}
		if err := s.regions.Lock(ctx, id, &caller); err != nil {
			return err
		}

		listing := models.NewListing(caller, timeslicePrice, recipient)
		if err := s.store.Save(ctx, id, &listing); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save listing")
		}
		return s.emit(ctx, events.RegionListed,
			"region_id", id.String(),
			"seller", caller.String(),
			"sale_recipient", listing.SaleRecipient.String(),
			"timeslice_price", formatBalance(timeslicePrice),
		)
	})
	if err != nil {
		return err
	}
	s.metrics.IncrementListed()
	return nil
}

// UnlistRegion withdraws a listing and unlocks the region. Only the seller may
// unlist until the region expires; after that anyone may.
func (s *Service) UnlistRegion(ctx context.Context, caller domain.AccountID, id regionmodels.RegionID) error {
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		listing, err := s.listing(ctx, id)
		if err != nil {
			return err
		}
		record, err := s.record(ctx, id)
		if err != nil {
			return err
		}
		now, err := s.now(ctx)
		if err != nil {
			return err
		}
		if !models.Expired(record, now) && caller != listing.Seller {
			return models.ErrNotAllowed
		}
		if err := s.store.Delete(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete listing")
		}
		if err := s.regions.Unlock(ctx, id, nil); err != nil {
			return err
		}
		return s.emit(ctx, events.RegionUnlisted, "region_id", id.String(), "by", caller.String())
	})
	if err != nil {
		return err
	}
	s.metrics.IncrementUnlisted()
	return nil
}

// UpdateRegionPrice changes the per-timeslice price of a live listing.
func (s *Service) UpdateRegionPrice(ctx context.Context, caller domain.AccountID, id regionmodels.RegionID, newPrice domain.Balance) error {
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		listing, err := s.listing(ctx, id)
		if err != nil {
			return err
		}
		if caller != listing.Seller {
			return models.ErrNotAllowed
		}
		record, err := s.record(ctx, id)
		if err != nil {
			return err
		}
		now, err := s.now(ctx)
		if err != nil {
			return err
		}
		if models.Expired(record, now) {
			return models.ErrRegionExpired
		}
		listing.TimeslicePrice = newPrice
		if err := s.store.Save(ctx, id, listing); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save listing")
		}
		return s.emit(ctx, events.RegionPriceUpdated,
			"region_id", id.String(),
			"timeslice_price", formatBalance(newPrice),
		)
	})
}

// PurchaseRegion buys a listed region for at most maxPrice and returns the
// price paid. The buyer's account is kept alive.
func (s *Service) PurchaseRegion(ctx context.Context, caller domain.AccountID, id regionmodels.RegionID, maxPrice domain.Balance) (domain.Balance, error) {
	var price domain.Balance
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		listing, err := s.listing(ctx, id)
		if err != nil {
			return err
		}
		if listing.IsParty(caller) {
			return models.ErrNotAllowed
		}
		record, err := s.record(ctx, id)
		if err != nil {
			return err
		}
		now, err := s.now(ctx)
		if err != nil {
			return err
		}
		price, err = models.CalculateRegionPrice(id, record, listing.TimeslicePrice, now)
		if err != nil {
			return err
		}
		if price > maxPrice {
			return models.ErrPriceTooHigh
		}
		if err := s.currency.Transfer(ctx, caller, listing.SaleRecipient, price, true); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete listing")
		}
		if err := s.regions.Unlock(ctx, id, nil); err != nil {
			return err
		}
		if err := s.regions.DoTransfer(ctx, id, nil, caller); err != nil {
			return err
		}
		return s.emit(ctx, events.RegionPurchased,
			"region_id", id.String(),
			"buyer", caller.String(),
			"seller", listing.Seller.String(),
			"sale_recipient", listing.SaleRecipient.String(),
			"price", formatBalance(price),
		)
	})
	if err != nil {
		return 0, err
	}
	s.metrics.ObservePurchase(uint64(price))
	return price, nil
}

// CalculateRegionPrice quotes the current price of a listed region.
func (s *Service) CalculateRegionPrice(ctx context.Context, id regionmodels.RegionID) (domain.Balance, error) {
	listing, err := s.listing(ctx, id)
	if err != nil {
		return 0, err
	}
	record, err := s.record(ctx, id)
	if err != nil {
		return 0, err
	}
	now, err := s.now(ctx)
	if err != nil {
		return 0, err
	}
	return models.CalculateRegionPrice(id, record, listing.TimeslicePrice, now)
}
