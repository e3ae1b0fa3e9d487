package assignment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionx/internal/processor/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/platform/sentinel"
	"regionx/pkg/platform/tx"
)

type store interface {
	Find(ctx context.Context, id regionmodels.RegionID) (*models.Assignment, error)
	Save(ctx context.Context, a *models.Assignment) error
	Delete(ctx context.Context, id regionmodels.RegionID) error
	List(ctx context.Context) ([]models.Assignment, error)
}

func runContract(t *testing.T, s store, runner tx.Runner, reset func()) {
	ctx := context.Background()
	early := regionmodels.RegionID{Begin: 1, Core: 4, Mask: regionmodels.CompleteMask()}
	late := regionmodels.RegionID{Begin: 8, Core: 0, Mask: regionmodels.CompleteMask()}

	t.Run("save find delete", func(t *testing.T) {
		reset()
		_, err := s.Find(ctx, early)
		require.ErrorIs(t, err, sentinel.ErrNotFound)

		a := &models.Assignment{RegionID: early, ParaID: 2000}
		require.NoError(t, s.Save(ctx, a))
		a.Sent = true
		require.NoError(t, s.Save(ctx, a))

		got, err := s.Find(ctx, early)
		require.NoError(t, err)
		assert.Equal(t, *a, *got)

		require.NoError(t, s.Delete(ctx, early))
		assert.ErrorIs(t, s.Delete(ctx, early), sentinel.ErrNotFound)
	})

	t.Run("list is ordered by region", func(t *testing.T) {
		reset()
		require.NoError(t, s.Save(ctx, &models.Assignment{RegionID: late, ParaID: 2001}))
		require.NoError(t, s.Save(ctx, &models.Assignment{RegionID: early, ParaID: 2000, Sent: true}))

		all, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, early, all[0].RegionID)
		assert.True(t, all[0].Sent)
		assert.Equal(t, late, all[1].RegionID)
	})

	t.Run("rollback restores the sent flag", func(t *testing.T) {
		reset()
		require.NoError(t, s.Save(ctx, &models.Assignment{RegionID: early, ParaID: 2000}))
		boom := errors.New("boom")
		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			require.NoError(t, s.Save(ctx, &models.Assignment{RegionID: early, ParaID: 2000, Sent: true}))
			return boom
		})
		require.ErrorIs(t, err, boom)
		got, err := s.Find(ctx, early)
		require.NoError(t, err)
		assert.False(t, got.Sent)
	})
}
