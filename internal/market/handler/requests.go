package handler

import (
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
)

type ListRequest struct {
	RegionID       string            `json:"region_id"`
	TimeslicePrice *domain.Balance   `json:"timeslice_price"`
	SaleRecipient  *domain.AccountID `json:"sale_recipient,omitempty"`

	regionID regionmodels.RegionID
}

func (r *ListRequest) Validate() error {
	id, err := regionmodels.ParseRegionID(r.RegionID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "region_id is invalid")
	}
	if r.TimeslicePrice == nil {
		return dErrors.New(dErrors.CodeValidation, "timeslice_price is required")
	}
	r.regionID = id
	return nil
}

type UpdatePriceRequest struct {
	TimeslicePrice *domain.Balance `json:"timeslice_price"`
}

func (r *UpdatePriceRequest) Validate() error {
	if r.TimeslicePrice == nil {
		return dErrors.New(dErrors.CodeValidation, "timeslice_price is required")
	}
	return nil
}

// PurchaseRequest bounds what the buyer is willing to pay; the price decays
// between signing and execution.
type PurchaseRequest struct {
	MaxPrice *domain.Balance `json:"max_price"`
}

func (r *PurchaseRequest) Validate() error {
	if r.MaxPrice == nil {
		return dErrors.New(dErrors.CodeValidation, "max_price is required")
	}
	return nil
}
