//go:build integration

package assignment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"regionx/pkg/platform/tx"
	"regionx/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	runContract(t, NewPostgres(pg.DB), tx.NewSQLRunner(pg.DB), func() {
		require.NoError(t, pg.TruncateTables(context.Background(), "region_assignments"))
	})
}
