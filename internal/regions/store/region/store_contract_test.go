package region

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionx/internal/regions/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/sentinel"
	"regionx/pkg/platform/tx"
)

type store interface {
	Find(ctx context.Context, id models.RegionID) (*models.Region, error)
	Save(ctx context.Context, id models.RegionID, region *models.Region) error
	Delete(ctx context.Context, id models.RegionID) error
	ListByStatus(ctx context.Context, status models.RecordStatus) ([]models.RegionID, error)
}

func regionID(begin domain.Timeslice, core domain.CoreIndex) models.RegionID {
	return models.RegionID{Begin: begin, Core: core, Mask: models.CompleteMask()}
}

// runContract exercises behaviour both implementations must share. reset is
// called before every subtest.
func runContract(t *testing.T, s store, runner tx.Runner, reset func()) {
	ctx := context.Background()
	alice := domain.AccountID{1}
	bob := domain.AccountID{2}

	t.Run("unknown ids are not found", func(t *testing.T) {
		reset()
		_, err := s.Find(ctx, regionID(1, 1))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, regionID(1, 1)), sentinel.ErrNotFound)
	})

	t.Run("every record state round trips", func(t *testing.T) {
		reset()
		paid := domain.Balance(1_000_000)
		cases := map[models.RegionID]models.Record{
			regionID(1, 0): models.UnavailableRecord{},
			regionID(1, 1): models.PendingRecord{Commitment: models.Commitment{0xab, 0xcd}},
			regionID(1, 2): models.AvailableRecord{Record: models.RegionRecord{End: 9, Owner: bob, Paid: &paid}},
			regionID(1, 3): models.AvailableRecord{Record: models.RegionRecord{End: 9, Owner: bob}},
		}
		for id, record := range cases {
			require.NoError(t, s.Save(ctx, id, &models.Region{Owner: alice, Locked: true, Record: record}))
		}
		for id, record := range cases {
			got, err := s.Find(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, alice, got.Owner)
			assert.True(t, got.Locked)
			assert.Equal(t, record, got.Record)
		}
	})

	t.Run("save overwrites", func(t *testing.T) {
		reset()
		id := regionID(2, 0)
		require.NoError(t, s.Save(ctx, id, &models.Region{Owner: alice, Record: models.UnavailableRecord{}}))
		require.NoError(t, s.Save(ctx, id, &models.Region{Owner: bob, Record: models.UnavailableRecord{}}))
		got, err := s.Find(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, bob, got.Owner)
	})

	t.Run("list by status is ordered by begin then core", func(t *testing.T) {
		reset()
		for _, id := range []models.RegionID{regionID(5, 2), regionID(3, 7), regionID(5, 1)} {
			require.NoError(t, s.Save(ctx, id, &models.Region{Owner: alice, Record: models.UnavailableRecord{}}))
		}
		require.NoError(t, s.Save(ctx, regionID(4, 0), &models.Region{Owner: alice, Record: models.PendingRecord{}}))

		ids, err := s.ListByStatus(ctx, models.RecordUnavailable)
		require.NoError(t, err)
		assert.Equal(t, []models.RegionID{regionID(3, 7), regionID(5, 1), regionID(5, 2)}, ids)
	})

	t.Run("rolled back writes are undone", func(t *testing.T) {
		reset()
		kept := regionID(6, 0)
		require.NoError(t, s.Save(ctx, kept, &models.Region{Owner: alice, Record: models.UnavailableRecord{}}))

		boom := errors.New("boom")
		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			require.NoError(t, s.Save(ctx, regionID(6, 1), &models.Region{Owner: alice, Record: models.UnavailableRecord{}}))
			require.NoError(t, s.Save(ctx, kept, &models.Region{Owner: bob, Record: models.UnavailableRecord{}}))
			require.NoError(t, s.Delete(ctx, kept))
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := s.Find(ctx, kept)
		require.NoError(t, err)
		assert.Equal(t, alice, got.Owner)
		_, err = s.Find(ctx, regionID(6, 1))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
