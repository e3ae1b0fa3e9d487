package handler

import (
	"encoding/hex"
	"strings"

	"regionx/internal/regions/models"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
)

type TransferRequest struct {
	NewOwner *domain.AccountID `json:"new_owner"`
}

func (r *TransferRequest) Validate() error {
	if r.NewOwner == nil {
		return dErrors.New(dErrors.CodeValidation, "new_owner is required")
	}
	return nil
}

// MintRequest describes a region that arrived from the coretime chain. Mask
// is the 0x-prefixed 10-byte core mask.
type MintRequest struct {
	Begin uint32            `json:"begin"`
	Core  uint16            `json:"core"`
	Mask  string            `json:"mask"`
	Owner *domain.AccountID `json:"owner"`

	mask models.CoreMask
}

func (r *MintRequest) Validate() error {
	if r.Owner == nil {
		return dErrors.New(dErrors.CodeValidation, "owner is required")
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(r.Mask, "0x"))
	if err != nil || len(raw) != len(r.mask) {
		return dErrors.New(dErrors.CodeValidation, "mask must be 10 hex-encoded bytes")
	}
	copy(r.mask[:], raw)
	return nil
}

func (r *MintRequest) RegionID() models.RegionID {
	return models.RegionID{Begin: domain.Timeslice(r.Begin), Core: domain.CoreIndex(r.Core), Mask: r.mask}
}
