package contribution

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionx/internal/orders/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/tx"
)

type store interface {
	Contribution(ctx context.Context, order domain.OrderID, who domain.AccountID) (domain.Balance, error)
	Total(ctx context.Context, order domain.OrderID) (domain.Balance, error)
	SetContribution(ctx context.Context, order domain.OrderID, who domain.AccountID, amount domain.Balance) error
	SetTotal(ctx context.Context, order domain.OrderID, amount domain.Balance) error
	List(ctx context.Context, order domain.OrderID) ([]models.Contribution, error)
	Clear(ctx context.Context, order domain.OrderID) error
}

func runContract(t *testing.T, s store, runner tx.Runner, reset func()) {
	ctx := context.Background()
	alice := domain.AccountID{1}
	bob := domain.AccountID{2}

	t.Run("absent entries read as zero", func(t *testing.T) {
		reset()
		amount, err := s.Contribution(ctx, 0, alice)
		require.NoError(t, err)
		assert.Zero(t, amount)
		total, err := s.Total(ctx, 0)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("contributions are listed by account and zero removes", func(t *testing.T) {
		reset()
		require.NoError(t, s.SetContribution(ctx, 1, bob, 30))
		require.NoError(t, s.SetContribution(ctx, 1, alice, 20))
		require.NoError(t, s.SetContribution(ctx, 2, alice, 5))
		require.NoError(t, s.SetTotal(ctx, 1, 50))

		list, err := s.List(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []models.Contribution{{Who: alice, Amount: 20}, {Who: bob, Amount: 30}}, list)

		require.NoError(t, s.SetContribution(ctx, 1, bob, 0))
		list, err = s.List(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("clear only touches one order", func(t *testing.T) {
		reset()
		require.NoError(t, s.SetContribution(ctx, 1, alice, 20))
		require.NoError(t, s.SetContribution(ctx, 2, alice, 5))
		require.NoError(t, s.SetTotal(ctx, 1, 20))
		require.NoError(t, s.SetTotal(ctx, 2, 5))

		require.NoError(t, s.Clear(ctx, 1))
		list, err := s.List(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, list)
		total, err := s.Total(ctx, 1)
		require.NoError(t, err)
		assert.Zero(t, total)
		total, err = s.Total(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, domain.Balance(5), total)
	})

	t.Run("rollback restores both ledgers", func(t *testing.T) {
		reset()
		require.NoError(t, s.SetContribution(ctx, 1, alice, 20))
		require.NoError(t, s.SetTotal(ctx, 1, 20))

		boom := errors.New("boom")
		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			require.NoError(t, s.SetContribution(ctx, 1, alice, 70))
			require.NoError(t, s.SetContribution(ctx, 1, bob, 10))
			require.NoError(t, s.SetTotal(ctx, 1, 80))
			require.NoError(t, s.Clear(ctx, 1))
			return boom
		})
		require.ErrorIs(t, err, boom)

		amount, err := s.Contribution(ctx, 1, alice)
		require.NoError(t, err)
		assert.Equal(t, domain.Balance(20), amount)
		amount, err = s.Contribution(ctx, 1, bob)
		require.NoError(t, err)
		assert.Zero(t, amount)
		total, err := s.Total(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.Balance(20), total)
	})
}
