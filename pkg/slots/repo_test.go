package slots

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"piximint/pkg/testhelpers"
)

func setupSlotTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL_FOR_TEST")
	if dsn == "" {
		t.Skip("DATABASE_URL_FOR_TEST not set; skipping slot repository tests")
	}

	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresSlotRepository_UsedSlots(t *testing.T) {
	pool := setupSlotTestPool(t)

	repo := NewPostgresSlotRepository(pool)
	ctx := context.Background()
	owner := testhelpers.CreateTestProfile(t, pool, 0)
	nftID := testhelpers.CreateTestNFT(t, pool, owner)

	var slot int
	require.NoError(t, pool.QueryRow(ctx, "SELECT slot_number FROM nfts WHERE id = $1", nftID).Scan(&slot))

	used, err := repo.UsedSlots(ctx)
	require.NoError(t, err)
	require.Contains(t, used, slot)
}
