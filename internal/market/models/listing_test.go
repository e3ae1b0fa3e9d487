package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
)

func TestCalculateRegionPrice(t *testing.T) {
	id := regionmodels.RegionID{Begin: 0, Core: 0, Mask: regionmodels.CompleteMask()}
	record := regionmodels.RegionRecord{End: 8}

	tests := []struct {
		now  domain.Timeslice
		want domain.Balance
	}{
		{now: 0, want: 80},
		{now: 1, want: 70},
		{now: 4, want: 40},
		{now: 7, want: 10},
		{now: 8, want: 0},
		{now: 100, want: 0},
	}
	for _, tc := range tests {
		got, err := CalculateRegionPrice(id, record, 10, tc.now)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "now=%d", tc.now)
	}
}

func TestCalculateRegionPriceBeforeBegin(t *testing.T) {
	id := regionmodels.RegionID{Begin: 10}
	record := regionmodels.RegionRecord{End: 18}

	got, err := CalculateRegionPrice(id, record, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.Balance(80), got)

	t.Run("end before begin prices at zero", func(t *testing.T) {
		got, err := CalculateRegionPrice(id, regionmodels.RegionRecord{End: 5}, 10, 3)
		require.NoError(t, err)
		assert.Zero(t, got)
	})
}

func TestCalculateRegionPriceIsNonIncreasing(t *testing.T) {
	id := regionmodels.RegionID{Begin: 5}
	record := regionmodels.RegionRecord{End: 40}
	prev := domain.Balance(math.MaxUint64)
	for now := domain.Timeslice(0); now < 50; now++ {
		got, err := CalculateRegionPrice(id, record, 3, now)
		require.NoError(t, err)
		assert.LessOrEqual(t, got, prev)
		prev = got
	}
}

func TestCalculateRegionPriceOverflow(t *testing.T) {
	id := regionmodels.RegionID{}
	_, err := CalculateRegionPrice(id, regionmodels.RegionRecord{End: 2}, math.MaxUint64, 0)
	require.ErrorIs(t, err, domain.ErrOverflow)
}

func TestNewListing(t *testing.T) {
	seller := domain.AccountID{1}
	other := domain.AccountID{2}

	l := NewListing(seller, 5, nil)
	assert.Equal(t, seller, l.SaleRecipient)

	l = NewListing(seller, 5, &other)
	assert.Equal(t, other, l.SaleRecipient)
	assert.True(t, l.IsParty(other))
	assert.True(t, l.IsParty(seller))
	assert.False(t, l.IsParty(domain.AccountID{3}))
}
