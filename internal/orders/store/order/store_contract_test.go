package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionx/internal/orders/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/sentinel"
	"regionx/pkg/platform/tx"
)

type store interface {
	NextOrderID(ctx context.Context) (domain.OrderID, error)
	Find(ctx context.Context, id domain.OrderID) (*models.Order, error)
	Save(ctx context.Context, id domain.OrderID, order *models.Order) error
	Delete(ctx context.Context, id domain.OrderID) error
	ListIDs(ctx context.Context) ([]domain.OrderID, error)
}

func runContract(t *testing.T, s store, runner tx.Runner, reset func()) {
	ctx := context.Background()
	order := &models.Order{
		Creator:      domain.AccountID{1},
		ParaID:       2000,
		Requirements: models.Requirements{Begin: 10, End: 20, CoreOccupancy: 28800},
	}

	t.Run("ids are sequential from zero", func(t *testing.T) {
		reset()
		for want := domain.OrderID(0); want < 3; want++ {
			got, err := s.NextOrderID(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("a rolled back allocation is reused", func(t *testing.T) {
		reset()
		boom := errors.New("boom")
		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			id, err := s.NextOrderID(ctx)
			require.NoError(t, err)
			require.NoError(t, s.Save(ctx, id, order))
			return boom
		})
		require.ErrorIs(t, err, boom)

		id, err := s.NextOrderID(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderID(0), id)
		_, err = s.Find(ctx, 0)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("save find list delete", func(t *testing.T) {
		reset()
		require.NoError(t, s.Save(ctx, 4, order))
		require.NoError(t, s.Save(ctx, 1, order))

		got, err := s.Find(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, *order, *got)

		ids, err := s.ListIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.OrderID{1, 4}, ids)

		require.NoError(t, s.Delete(ctx, 4))
		assert.ErrorIs(t, s.Delete(ctx, 4), sentinel.ErrNotFound)
		_, err = s.Find(ctx, 4)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
