package service

import (
	"context"
	"fmt"

	"regionx/pkg/domain"
)

// FeeHandler charges the order creation fee.
type FeeHandler interface {
	Handle(ctx context.Context, who domain.AccountID, fee domain.Balance) error
}

type Transferer interface {
	Transfer(ctx context.Context, from, to domain.AccountID, amount domain.Balance, keepAlive bool) error
}

// TreasuryFeeHandler pays creation fees into a treasury account.
type TreasuryFeeHandler struct {
	currency Transferer
	treasury domain.AccountID
}

func NewTreasuryFeeHandler(currency Transferer, treasury domain.AccountID) (*TreasuryFeeHandler, error) {
	if currency == nil {
		return nil, fmt.Errorf("currency is required")
	}
	return &TreasuryFeeHandler{currency: currency, treasury: treasury}, nil
}

func (h *TreasuryFeeHandler) Handle(ctx context.Context, who domain.AccountID, fee domain.Balance) error {
	return h.currency.Transfer(ctx, who, h.treasury, fee, true)
}
