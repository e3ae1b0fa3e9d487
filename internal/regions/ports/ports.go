// Package ports declares the narrow region registry capabilities that other
// modules depend on. Each consumer asks only for what it uses.
package ports

import (
	"context"

	"regionx/internal/regions/models"
	"regionx/pkg/domain"
)

// Inspector reads regions and their records.
type Inspector interface {
	Region(ctx context.Context, id models.RegionID) (*models.Region, error)
	Record(ctx context.Context, id models.RegionID) (models.Record, error)
}

// Transferer moves ownership. A nil expectedOwner skips the owner check.
type Transferer interface {
	DoTransfer(ctx context.Context, id models.RegionID, expectedOwner *domain.AccountID, newOwner domain.AccountID) error
}

// Locker toggles the region lock. A nil expectedOwner skips the owner check.
type Locker interface {
	Lock(ctx context.Context, id models.RegionID, expectedOwner *domain.AccountID) error
	Unlock(ctx context.Context, id models.RegionID, expectedOwner *domain.AccountID) error
}

// Factory creates and destroys regions and receives fetched records.
type Factory interface {
	Mint(ctx context.Context, id models.RegionID, owner domain.AccountID) error
	Burn(ctx context.Context, id models.RegionID, expectedOwner *domain.AccountID) error
	SetRecord(ctx context.Context, id models.RegionID, record models.RegionRecord) error
}

// Trader is what the market needs from the registry.
type Trader interface {
	Inspector
	Transferer
	Locker
}
