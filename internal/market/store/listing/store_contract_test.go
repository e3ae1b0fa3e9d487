package listing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionx/internal/market/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/sentinel"
	"regionx/pkg/platform/tx"
)

type store interface {
	Find(ctx context.Context, id regionmodels.RegionID) (*models.Listing, error)
	Save(ctx context.Context, id regionmodels.RegionID, listing *models.Listing) error
	Delete(ctx context.Context, id regionmodels.RegionID) error
	Count(ctx context.Context) (int, error)
}

func runContract(t *testing.T, s store, runner tx.Runner, reset func()) {
	ctx := context.Background()
	seller := domain.AccountID{1}
	recipient := domain.AccountID{2}
	id := regionmodels.RegionID{Begin: 3, Core: 1, Mask: regionmodels.CompleteMask()}
	other := regionmodels.RegionID{Begin: 4, Core: 1, Mask: regionmodels.CompleteMask()}

	t.Run("save find delete", func(t *testing.T) {
		reset()
		_, err := s.Find(ctx, id)
		require.ErrorIs(t, err, sentinel.ErrNotFound)

		listing := models.NewListing(seller, 25, &recipient)
		require.NoError(t, s.Save(ctx, id, &listing))
		got, err := s.Find(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, listing, *got)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		require.NoError(t, s.Delete(ctx, id))
		assert.ErrorIs(t, s.Delete(ctx, id), sentinel.ErrNotFound)
	})

	t.Run("prices use the full balance range", func(t *testing.T) {
		reset()
		listing := models.NewListing(seller, math.MaxUint64, nil)
		require.NoError(t, s.Save(ctx, id, &listing))
		got, err := s.Find(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.Balance(math.MaxUint64), got.TimeslicePrice)
		assert.Equal(t, seller, got.SaleRecipient)
	})

	t.Run("rollback restores listings", func(t *testing.T) {
		reset()
		listing := models.NewListing(seller, 10, nil)
		require.NoError(t, s.Save(ctx, id, &listing))

		boom := errors.New("boom")
		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			updated := models.NewListing(seller, 99, nil)
			require.NoError(t, s.Save(ctx, id, &updated))
			require.NoError(t, s.Save(ctx, other, &updated))
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := s.Find(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.Balance(10), got.TimeslicePrice)
		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}
