package models

import (
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
)

var (
	ErrInvalidOrderID      = dErrors.New(dErrors.CodeNotFound, "invalid_order_id")
	ErrNotAllowed          = dErrors.New(dErrors.CodeForbidden, "not_allowed")
	ErrInvalidAmount       = dErrors.New(dErrors.CodeValidation, "invalid_amount")
	ErrOrderExpired        = dErrors.New(dErrors.CodeConflict, "order_expired")
	ErrOrderNotCancelled   = dErrors.New(dErrors.CodeConflict, "order_not_cancelled")
	ErrNoContribution      = dErrors.New(dErrors.CodeNotFound, "no_contribution")
	ErrInvalidRequirements = dErrors.New(dErrors.CodeValidation, "invalid_requirements")
	ErrReserveMismatch     = dErrors.New(dErrors.CodeInvariantViolation, "reserve_mismatch")
)

// Requirements describe the region an order wants. CoreOccupancy is in parts
// of 57600.
type Requirements struct {
	Begin         domain.Timeslice `json:"begin"`
	End           domain.Timeslice `json:"end"`
	CoreOccupancy uint32           `json:"core_occupancy"`
}

// Validate rejects requirements no region could ever satisfy.
func (r Requirements) Validate() error {
	if r.End <= r.Begin {
		return dErrors.Wrap(ErrInvalidRequirements, dErrors.CodeValidation, "end must be after begin")
	}
	if r.CoreOccupancy > TotalParts {
		return dErrors.Wrap(ErrInvalidRequirements, dErrors.CodeValidation, "core occupancy exceeds a full core")
	}
	return nil
}

// TotalParts is a whole core expressed in occupancy parts.
const TotalParts = 57600

// Order is pooled demand for coretime on behalf of a parachain.
type Order struct {
	Creator      domain.AccountID `json:"creator"`
	ParaID       domain.ParaID    `json:"para_id"`
	Requirements Requirements     `json:"requirements"`
}

// Expired reports whether the order's window has closed for contributions.
func (o Order) Expired(now domain.Timeslice) bool {
	return now >= o.Requirements.End
}

// Cancellable reports whether who may cancel: the creator always, anyone
// once the window has fully passed.
func (o Order) Cancellable(who domain.AccountID, now domain.Timeslice) bool {
	return o.Creator == who || o.Requirements.End < now
}

// Contribution is one account's escrowed share of an order.
type Contribution struct {
	Who    domain.AccountID `json:"who"`
	Amount domain.Balance   `json:"amount"`
}
