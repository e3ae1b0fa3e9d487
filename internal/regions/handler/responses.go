package handler

import (
	"encoding/hex"

	"regionx/internal/regions/models"
	"regionx/pkg/domain"
)

type hexBytes []byte

func (b hexBytes) MarshalText() ([]byte, error) {
	return []byte("0x" + hex.EncodeToString(b)), nil
}

type RecordResponse struct {
	Status     string            `json:"status"`
	Commitment string            `json:"commitment,omitempty"`
	End        *uint32           `json:"end,omitempty"`
	Owner      *domain.AccountID `json:"owner,omitempty"`
	Paid       *domain.Balance   `json:"paid,omitempty"`
}

type RegionResponse struct {
	ID     string           `json:"id"`
	Begin  uint32           `json:"begin"`
	Core   uint16           `json:"core"`
	Mask   string           `json:"mask"`
	Owner  domain.AccountID `json:"owner"`
	Locked bool             `json:"locked"`
	Record RecordResponse   `json:"record"`
}

type AttributeResponse struct {
	Key   string   `json:"key"`
	Value hexBytes `json:"value"`
}

type MintResponse struct {
	RegionID string `json:"region_id"`
}

func toRegionResponse(id models.RegionID, region *models.Region) RegionResponse {
	resp := RegionResponse{
		ID:     id.String(),
		Begin:  uint32(id.Begin),
		Core:   uint16(id.Core),
		Mask:   id.Mask.String(),
		Owner:  region.Owner,
		Locked: region.Locked,
		Record: RecordResponse{Status: string(region.Record.Status())},
	}
	switch rec := region.Record.(type) {
	case models.PendingRecord:
		resp.Record.Commitment = rec.Commitment.String()
	case models.AvailableRecord:
		end := uint32(rec.Record.End)
		owner := rec.Record.Owner
		resp.Record.End = &end
		resp.Record.Owner = &owner
		resp.Record.Paid = rec.Record.Paid
	}
	return resp
}
