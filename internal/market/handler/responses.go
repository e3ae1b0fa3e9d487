package handler

import "regionx/pkg/domain"

type ListingResponse struct {
	RegionID       string           `json:"region_id"`
	Seller         domain.AccountID `json:"seller"`
	TimeslicePrice domain.Balance   `json:"timeslice_price"`
	SaleRecipient  domain.AccountID `json:"sale_recipient"`
	CurrentPrice   domain.Balance   `json:"current_price"`
}

type ListedResponse struct {
	RegionID string `json:"region_id"`
}

type PurchaseResponse struct {
	RegionID string         `json:"region_id"`
	Price    domain.Balance `json:"price"`
}
