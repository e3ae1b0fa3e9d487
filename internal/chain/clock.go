// Package chain tracks relay chain progress and converts it into timeslices.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math"

	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
)

// DefaultTimeslicePeriod is the number of relay blocks per timeslice.
const DefaultTimeslicePeriod = 80

// ErrNoBlock is returned while no relay block number is known yet.
var ErrNoBlock = dErrors.New(dErrors.CodeUnavailable, "relay_block_unknown")

// BlockNumberProvider reports the current relay chain block number.
type BlockNumberProvider interface {
	CurrentBlockNumber(ctx context.Context) (uint64, error)
}

// Clock derives the current timeslice from the relay block number.
type Clock struct {
	blocks BlockNumberProvider
	period uint64
}

func NewClock(blocks BlockNumberProvider, period uint64) (*Clock, error) {
	if blocks == nil {
		return nil, errors.New("block number provider is required")
	}
	if period == 0 {
		return nil, errors.New("timeslice period must be positive")
	}
	return &Clock{blocks: blocks, period: period}, nil
}

// CurrentTimeslice is floor(block / period), saturating at the largest timeslice.
func (c *Clock) CurrentTimeslice(ctx context.Context) (domain.Timeslice, error) {
	block, err := c.blocks.CurrentBlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("current relay block: %w", err)
	}
	ts := block / c.period
	if ts > math.MaxUint32 {
		return math.MaxUint32, nil
	}
	return domain.Timeslice(ts), nil
}
