package service

import (
	"context"
	"errors"
	"strconv"

	"regionx/internal/ismp"
	"regionx/internal/regions/models"
	"regionx/internal/regions/storagekey"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/platform/events"
	"regionx/pkg/platform/sentinel"
)

// Mint deposits a region for owner and immediately requests its record. A
// failed request leaves the record unavailable instead of failing the mint.
// Re-minting an id overwrites the region unless it is locked.
func (s *Service) Mint(ctx context.Context, id models.RegionID, owner domain.AccountID) error {
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.store.Find(ctx, id)
		switch {
		case err == nil && existing.Locked:
			return models.ErrRegionLocked
		case err != nil && !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load region")
		}

		var record models.Record = models.UnavailableRecord{}
		commitment, err := s.requestRecord(ctx, id, owner)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to request region record",
				"region_id", id.String(),
				"error", err,
			)
			if err := s.emit(ctx, events.RegionRecordRequestFailed, "region_id", id.String()); err != nil {
				return err
			}
		} else {
			record = models.PendingRecord{Commitment: commitment}
		}

		if err := s.save(ctx, id, &models.Region{Owner: owner, Record: record}); err != nil {
			return err
		}
		s.metrics.IncrementMinted()
		return s.emit(ctx, events.RegionMinted,
			"region_id", id.String(),
			"owner", owner.String(),
			"record", string(record.Status()),
		)
	})
}

// Burn removes a region. Locks are not checked.
func (s *Service) Burn(ctx context.Context, id models.RegionID, expectedOwner *domain.AccountID) error {
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		region, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := region.CheckOwner(expectedOwner); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, id); err != nil {
			return err
		}
		return s.emit(ctx, events.RegionBurned, "region_id", id.String(), "owner", region.Owner.String())
	})
}

// Transfer moves a region owned by caller to newOwner.
func (s *Service) Transfer(ctx context.Context, caller domain.AccountID, id models.RegionID, newOwner domain.AccountID) error {
	return s.DoTransfer(ctx, id, &caller, newOwner)
}

// DoTransfer moves a region to newOwner. Locked regions cannot move.
func (s *Service) DoTransfer(ctx context.Context, id models.RegionID, expectedOwner *domain.AccountID, newOwner domain.AccountID) error {
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		region, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := region.CanTransfer(expectedOwner); err != nil {
			return err
		}
		oldOwner := region.Owner
		region.Owner = newOwner
		if err := s.save(ctx, id, region); err != nil {
			return err
		}
		return s.emit(ctx, events.RegionTransferred,
			"region_id", id.String(),
			"old_owner", oldOwner.String(),
			"owner", newOwner.String(),
		)
	})
}

func (s *Service) Lock(ctx context.Context, id models.RegionID, expectedOwner *domain.AccountID) error {
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		region, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := region.CanLock(expectedOwner); err != nil {
			return err
		}
		region.Locked = true
		if err := s.save(ctx, id, region); err != nil {
			return err
		}
		return s.emit(ctx, events.RegionLocked, "region_id", id.String())
	})
}

func (s *Service) Unlock(ctx context.Context, id models.RegionID, expectedOwner *domain.AccountID) error {
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		region, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := region.CanUnlock(expectedOwner); err != nil {
			return err
		}
		region.Locked = false
		if err := s.save(ctx, id, region); err != nil {
			return err
		}
		return s.emit(ctx, events.RegionUnlocked, "region_id", id.String())
	})
}

// RequestRegionRecord re-requests the record of a region whose previous
// request failed or timed out. Anyone may call it; the caller pays.
func (s *Service) RequestRegionRecord(ctx context.Context, caller domain.AccountID, id models.RegionID) error {
	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		region, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := region.CanRequestRecord(); err != nil {
			return err
		}
		commitment, err := s.requestRecord(ctx, id, caller)
		if err != nil {
			return err
		}
		region.Record = models.PendingRecord{Commitment: commitment}
		return s.save(ctx, id, region)
	})
}

// requestRecord dispatches the GET for the region's storage entry on the
// coretime chain.
func (s *Service) requestRecord(ctx context.Context, id models.RegionID, payer domain.AccountID) (models.Commitment, error) {
	height := s.heights.LatestStateMachineHeight(ctx, ismp.StateMachineID{
		StateID:          s.cfg.CoretimeChain,
		ConsensusStateID: ismp.ParachainConsensusID,
	})
	commitment, err := s.dispatcher.DispatchGet(ctx, ismp.DispatchGet{
		Dest:    s.cfg.CoretimeChain,
		From:    s.cfg.ModuleID,
		Keys:    [][]byte{storagekey.RegionKey(id)},
		Height:  height,
		Timeout: s.cfg.Timeout,
	}, ismp.FeeMetadata{Payer: payer})
	if err != nil {
		s.metrics.IncrementRecordRequest("failed")
		return models.Commitment{}, dErrors.Wrap(err, models.ErrIsmpDispatch.Code, models.ErrIsmpDispatch.Message)
	}
	s.metrics.IncrementRecordRequest("ok")
	if err := s.emit(ctx, events.RegionRecordRequested,
		"region_id", id.String(),
		"account", payer.String(),
		"commitment", models.Commitment(commitment).String(),
		"height", strconv.FormatUint(height, 10),
	); err != nil {
		return models.Commitment{}, err
	}
	return models.Commitment(commitment), nil
}
