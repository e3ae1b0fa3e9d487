//go:build integration

package tx_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionx/pkg/platform/tx"
	"regionx/pkg/testutil/containers"
)

func TestSQLRunnersExcludeEachOther(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	ctx := context.Background()

	// Separate runners stand in for separate server instances.
	first := tx.NewSQLRunner(pg.DB)
	second := tx.NewSQLRunner(pg.DB)

	holding := make(chan struct{})
	release := make(chan struct{})
	errs := make(chan error, 2)
	var entered atomic.Bool

	go func() {
		errs <- first.RunInTx(ctx, func(ctx context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding
	go func() {
		errs <- second.RunInTx(ctx, func(ctx context.Context) error {
			entered.Store(true)
			return nil
		})
	}()

	assert.Never(t, entered.Load, 300*time.Millisecond, 20*time.Millisecond)
	close(release)
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
	assert.True(t, entered.Load())

	t.Run("different lock keys do not block", func(t *testing.T) {
		other := tx.NewSQLRunner(pg.DB, tx.WithLockKey(tx.DefaultLockKey+1))
		holding := make(chan struct{})
		done := make(chan struct{})
		finished := make(chan error, 1)
		go func() {
			finished <- first.RunInTx(ctx, func(ctx context.Context) error {
				close(holding)
				<-done
				return nil
			})
		}()
		<-holding

		bounded, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		require.NoError(t, other.RunInTx(bounded, func(context.Context) error { return nil }))
		close(done)
		require.NoError(t, <-finished)
	})
}
