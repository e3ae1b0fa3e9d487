package handler

import (
	"regionx/internal/orders/models"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
)

type CreateOrderRequest struct {
	ParaID       domain.ParaID       `json:"para_id"`
	Requirements models.Requirements `json:"requirements"`
}

func (r *CreateOrderRequest) Validate() error {
	if r.ParaID == 0 {
		return dErrors.New(dErrors.CodeValidation, "para_id is required")
	}
	return r.Requirements.Validate()
}

type ContributeRequest struct {
	Amount *domain.Balance `json:"amount"`
}

func (r *ContributeRequest) Validate() error {
	if r.Amount == nil {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	return nil
}
