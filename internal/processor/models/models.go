package models

import (
	ordermodels "regionx/internal/orders/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
)

var (
	ErrUnknownOrder                    = dErrors.New(dErrors.CodeNotFound, "unknown_order")
	ErrRegionStartsTooLate             = dErrors.New(dErrors.CodeConflict, "region_starts_too_late")
	ErrRegionEndsTooSoon               = dErrors.New(dErrors.CodeConflict, "region_ends_too_soon")
	ErrRegionCoreOccupancyInsufficient = dErrors.New(dErrors.CodeConflict, "region_core_occupancy_insufficient")
	ErrRegionAssignmentNotFound        = dErrors.New(dErrors.CodeNotFound, "region_assignment_not_found")
)

// Assignment records that a fulfilled region belongs to a parachain. Sent is
// set once the assign call has been handed to the transport; unsent
// assignments are what the keeper retries. Delivery on the remote side is not
// tracked, so assignments stay recorded and may be re-sent at any time.
type Assignment struct {
	RegionID regionmodels.RegionID `json:"region_id"`
	ParaID   domain.ParaID         `json:"para_id"`
	Sent     bool                  `json:"sent"`
}

// MatchRequirements checks that a region covers an order: it must start no
// later, end no sooner and occupy at least the requested share of the core.
func MatchRequirements(id regionmodels.RegionID, record regionmodels.RegionRecord, reqs ordermodels.Requirements) error {
	if id.Begin > reqs.Begin {
		return ErrRegionStartsTooLate
	}
	if record.End < reqs.End {
		return ErrRegionEndsTooSoon
	}
	if id.Mask.Occupancy() < reqs.CoreOccupancy {
		return ErrRegionCoreOccupancyInsufficient
	}
	return nil
}
