package models

import (
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
)

var (
	ErrAlreadyListed = dErrors.New(dErrors.CodeConflict, "already_listed")
	ErrNotListed     = dErrors.New(dErrors.CodeNotFound, "not_listed")
	ErrNotAllowed    = dErrors.New(dErrors.CodeForbidden, "not_allowed")
	ErrPriceTooHigh  = dErrors.New(dErrors.CodeConflict, "price_too_high")
	ErrRegionExpired = dErrors.New(dErrors.CodeConflict, "region_expired")
)

// Listing is an open sale offer for a region. The region stays locked while
// the listing exists.
type Listing struct {
	Seller         domain.AccountID `json:"seller"`
	TimeslicePrice domain.Balance   `json:"timeslice_price"`
	SaleRecipient  domain.AccountID `json:"sale_recipient"`
}

// NewListing defaults the sale recipient to the seller.
func NewListing(seller domain.AccountID, price domain.Balance, recipient *domain.AccountID) Listing {
	l := Listing{Seller: seller, TimeslicePrice: price, SaleRecipient: seller}
	if recipient != nil {
		l.SaleRecipient = *recipient
	}
	return l
}

// IsParty reports whether who would be trading with themselves.
func (l Listing) IsParty(who domain.AccountID) bool {
	return who == l.Seller || who == l.SaleRecipient
}

// Expired reports whether the region's record has run out at now.
func Expired(record regionmodels.RegionRecord, now domain.Timeslice) bool {
	return record.End <= now
}

// CalculateRegionPrice prices a region per remaining timeslice. Before the
// region begins the full duration is charged; afterwards only what is left,
// reaching zero at the end.
func CalculateRegionPrice(id regionmodels.RegionID, record regionmodels.RegionRecord, timeslicePrice domain.Balance, now domain.Timeslice) (domain.Balance, error) {
	if now < id.Begin {
		duration := saturatingSub(record.End, id.Begin)
		return timeslicePrice.CheckedMul(uint64(duration))
	}
	remaining := saturatingSub(record.End, now)
	return timeslicePrice.CheckedMul(uint64(remaining))
}

func saturatingSub(a, b domain.Timeslice) domain.Timeslice {
	if b > a {
		return 0
	}
	return a - b
}
