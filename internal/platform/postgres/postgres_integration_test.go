//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionx/internal/platform/postgres"
	"regionx/pkg/testutil/containers"
)

func TestMigrateIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	pg := containers.GetManager().GetPostgres(t)

	var before int
	require.NoError(t, pg.DB.QueryRowContext(ctx, `SELECT count(*) FROM schema_migrations`).Scan(&before))
	assert.Positive(t, before)

	require.NoError(t, postgres.Migrate(ctx, pg.DB))

	var after int
	require.NoError(t, pg.DB.QueryRowContext(ctx, `SELECT count(*) FROM schema_migrations`).Scan(&after))
	assert.Equal(t, before, after)

	for _, table := range []string{"regions", "listings", "orders", "contributions", "region_assignments", "event_outbox", "accounts"} {
		var exists bool
		require.NoError(t, pg.DB.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists))
		assert.True(t, exists, table)
	}
}
