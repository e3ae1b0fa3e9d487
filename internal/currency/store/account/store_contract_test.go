package account

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionx/internal/currency/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/tx"
)

type store interface {
	Find(ctx context.Context, who domain.AccountID) (models.Account, error)
	Save(ctx context.Context, who domain.AccountID, a models.Account) error
	Total(ctx context.Context) (domain.Balance, error)
}

func runContract(t *testing.T, s store, runner tx.Runner, reset func()) {
	ctx := context.Background()
	alice := domain.AccountID{1}
	bob := domain.AccountID{2}

	t.Run("unknown accounts read as zero", func(t *testing.T) {
		reset()
		a, err := s.Find(ctx, alice)
		require.NoError(t, err)
		assert.True(t, a.Dead())
	})

	t.Run("save overwrites and dead accounts are reaped", func(t *testing.T) {
		reset()
		require.NoError(t, s.Save(ctx, alice, models.Account{Free: 10, Reserved: 5}))
		require.NoError(t, s.Save(ctx, alice, models.Account{Free: 7, Reserved: 8}))
		a, err := s.Find(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, models.Account{Free: 7, Reserved: 8}, a)

		require.NoError(t, s.Save(ctx, alice, models.Account{}))
		total, err := s.Total(ctx)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("total spans accounts and saturates", func(t *testing.T) {
		reset()
		require.NoError(t, s.Save(ctx, alice, models.Account{Free: 10, Reserved: 5}))
		require.NoError(t, s.Save(ctx, bob, models.Account{Free: 1}))
		total, err := s.Total(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.Balance(16), total)

		require.NoError(t, s.Save(ctx, bob, models.Account{Free: math.MaxUint64}))
		total, err = s.Total(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.Balance(math.MaxUint64), total)
	})

	t.Run("rollback restores the previous balance", func(t *testing.T) {
		reset()
		require.NoError(t, s.Save(ctx, alice, models.Account{Free: 10}))
		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			require.NoError(t, s.Save(ctx, alice, models.Account{Free: 3, Reserved: 7}))
			require.NoError(t, s.Save(ctx, bob, models.Account{Free: 4}))
			return errors.New("abort")
		})
		require.Error(t, err)

		a, err := s.Find(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, models.Account{Free: 10}, a)
		b, err := s.Find(ctx, bob)
		require.NoError(t, err)
		assert.True(t, b.Dead())
	})
}
