package service

import (
	"context"
	"strconv"

	"regionx/internal/regions/models"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/platform/events"
	"regionx/pkg/scale"
)

// ErrStaleResponse rejects a response whose request is no longer the one the
// region is waiting for.
var ErrStaleResponse = dErrors.New(dErrors.CodeConflict, "stale_response")

// ErrStaleTimeout rejects a timeout for a request the region is no longer
// waiting for, such as a redelivered timeout after a newer request succeeded.
var ErrStaleTimeout = dErrors.New(dErrors.CodeConflict, "stale_timeout")

// SetRecord stores a fetched record. Available records are never replaced.
func (s *Service) SetRecord(ctx context.Context, id models.RegionID, record models.RegionRecord) error {
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		region, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := region.CanSetRecord(); err != nil {
			return err
		}
		return s.applyRecord(ctx, id, region, record)
	})
}

// CompleteRecordRequest applies a response to the request identified by
// commitment. The region must still be pending on that exact request.
func (s *Service) CompleteRecordRequest(ctx context.Context, id models.RegionID, commitment models.Commitment, record models.RegionRecord) error {
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		region, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := region.CanSetRecord(); err != nil {
			return err
		}
		pending, ok := region.Record.(models.PendingRecord)
		if !ok || pending.Commitment != commitment {
			s.metrics.IncrementRecordResponse("stale")
			return ErrStaleResponse
		}
		return s.applyRecord(ctx, id, region, record)
	})
}

func (s *Service) applyRecord(ctx context.Context, id models.RegionID, region *models.Region, record models.RegionRecord) error {
	region.Record = models.AvailableRecord{Record: record}
	if err := s.save(ctx, id, region); err != nil {
		return err
	}
	s.metrics.IncrementRecordResponse("applied")
	return s.emit(ctx, events.RegionRecordSet,
		"region_id", id.String(),
		"end", strconv.FormatUint(uint64(record.End), 10),
	)
}

// ExpireRecordRequest marks the record unavailable so it can be requested
// again. Only the request identified by commitment can expire it.
func (s *Service) ExpireRecordRequest(ctx context.Context, id models.RegionID, commitment models.Commitment) error {
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		region, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		pending, ok := region.Record.(models.PendingRecord)
		if !ok || pending.Commitment != commitment {
			return ErrStaleTimeout
		}
		region.Record = models.UnavailableRecord{}
		if err := s.save(ctx, id, region); err != nil {
			return err
		}
		s.metrics.IncrementRecordTimeout()
		return s.emit(ctx, events.RegionRecordUnavailable, "region_id", id.String())
	})
}

// DropRegion removes a region whose record shows it has ended. Anyone may call it.
func (s *Service) DropRegion(ctx context.Context, caller domain.AccountID, id models.RegionID) error {
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		region, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		record, ok := models.Available(region.Record)
		if !ok {
			return models.ErrRecordUnavailable
		}
		now, err := s.clock.CurrentTimeslice(ctx)
		if err != nil {
			return err
		}
		if record.End >= now {
			return models.ErrRegionNotExpired
		}
		if err := s.store.Delete(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete region")
		}
		return s.emit(ctx, events.RegionDropped,
			"region_id", id.String(),
			"caller", caller.String(),
		)
	})
}

// Attribute returns a SCALE-encoded attribute of a region with an available
// record. Keys: begin, end, length, core, part, owner, paid.
func (s *Service) Attribute(ctx context.Context, id models.RegionID, key string) ([]byte, error) {
	region, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	record, ok := models.Available(region.Record)
	if !ok {
		return nil, models.ErrRecordUnavailable
	}
	e := scale.NewEncoder(32)
	switch key {
	case "begin":
		e.U32(uint32(id.Begin))
	case "end":
		e.U32(uint32(record.End))
	case "length":
		length := uint32(0)
		if record.End > id.Begin {
			length = uint32(record.End - id.Begin)
		}
		e.U32(length)
	case "core":
		e.U16(uint16(id.Core))
	case "part":
		e.Raw(id.Mask[:])
	case "owner":
		e.Raw(record.Owner[:])
	case "paid":
		var paid *uint64
		if record.Paid != nil {
			p := uint64(*record.Paid)
			paid = &p
		}
		e.OptionU128(paid)
	default:
		return nil, models.ErrUnknownAttribute
	}
	return e.Bytes(), nil
}
