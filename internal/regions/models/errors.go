package models

import dErrors "regionx/pkg/domain-errors"

var (
	ErrUnknownRegion          = dErrors.New(dErrors.CodeNotFound, "unknown_region")
	ErrNotOwner               = dErrors.New(dErrors.CodeForbidden, "not_owner")
	ErrRegionLocked           = dErrors.New(dErrors.CodeConflict, "region_locked")
	ErrRegionNotLocked        = dErrors.New(dErrors.CodeConflict, "region_not_locked")
	ErrRegionRecordAlreadySet = dErrors.New(dErrors.CodeConflict, "region_record_already_set")
	ErrNotUnavailable         = dErrors.New(dErrors.CodeConflict, "not_unavailable")
	ErrIsmpDispatch           = dErrors.New(dErrors.CodeUnavailable, "ismp_dispatch_error")
	ErrInvalidRegionID        = dErrors.New(dErrors.CodeInvalidInput, "invalid_region_id")
	ErrRecordUnavailable      = dErrors.New(dErrors.CodeConflict, "record_unavailable")
	ErrRegionNotExpired       = dErrors.New(dErrors.CodeConflict, "region_not_expired")
	ErrUnknownAttribute       = dErrors.New(dErrors.CodeNotFound, "unknown_attribute")
)
