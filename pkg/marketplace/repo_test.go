package marketplace

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"piximint/pkg/testhelpers"
)

func setupListingTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL_FOR_TEST")
	if dsn == "" {
		t.Skip("DATABASE_URL_FOR_TEST not set; skipping listing repository tests")
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

func TestPostgresListingRepository_CreateAndGet(t *testing.T) {
	pool := setupListingTestPool(t)

	repo := NewPostgresListingRepository(pool)
	ctx := context.Background()
	seller := testhelpers.CreateTestProfile(t, pool, 0)
	nftID := testhelpers.CreateTestNFT(t, pool, seller)

	created, err := repo.CreateListing(ctx, Listing{
		NFTID:        nftID,
		SellerUUID:   seller,
		ListPriceSol: 2.0,
		FeeSol:       0.05,
	})
	require.NoError(t, err)
	require.True(t, created.IsListed)
	require.Nil(t, created.BuyerUUID)

	active, err := repo.GetActiveListingByNFT(ctx, nftID)
	require.NoError(t, err)
	require.Equal(t, created.ID, active.ID)
}

func TestPostgresListingRepository_SecondActiveListingRejected(t *testing.T) {
	pool := setupListingTestPool(t)

	repo := NewPostgresListingRepository(pool)
	ctx := context.Background()
	seller := testhelpers.CreateTestProfile(t, pool, 0)
	nftID := testhelpers.CreateTestNFT(t, pool, seller)

	listing := Listing{NFTID: nftID, SellerUUID: seller, ListPriceSol: 1.0, FeeSol: 0.025}

	_, err := repo.CreateListing(ctx, listing)
	require.NoError(t, err)

	_, err = repo.CreateListing(ctx, listing)
	require.ErrorIs(t, err, ErrAlreadyListed)
}

func TestPostgresListingRepository_CloseAndRelist(t *testing.T) {
	pool := setupListingTestPool(t)

	repo := NewPostgresListingRepository(pool)
	ctx := context.Background()
	seller := testhelpers.CreateTestProfile(t, pool, 0)
	buyer := testhelpers.CreateTestProfile(t, pool, 0)
	nftID := testhelpers.CreateTestNFT(t, pool, seller)
	listingID := testhelpers.CreateTestListing(t, pool, nftID, seller, 1.5)

	require.NoError(t, repo.CloseListing(ctx, listingID, &buyer))

	closed, err := repo.GetListingByID(ctx, listingID)
	require.NoError(t, err)
	require.False(t, closed.IsListed)
	require.NotNil(t, closed.BuyerUUID)
	require.Equal(t, buyer, *closed.BuyerUUID)
	require.NotNil(t, closed.ClosedAt)

	_, err = repo.GetActiveListingByNFT(ctx, nftID)
	require.ErrorIs(t, err, ErrNotListed)

	// Closing an already closed listing reports it as not listed.
	require.ErrorIs(t, repo.CloseListing(ctx, listingID, &buyer), ErrNotListed)

	// The partial unique index only covers active rows, so relisting works.
	_, err = repo.CreateListing(ctx, Listing{NFTID: nftID, SellerUUID: buyer, ListPriceSol: 3.0, FeeSol: 0.075})
	require.NoError(t, err)
}

func TestPostgresListingRepository_GetListingByID_NotFound(t *testing.T) {
	pool := setupListingTestPool(t)

	repo := NewPostgresListingRepository(pool)

	_, err := repo.GetListingByID(context.Background(), 999999999)

	require.ErrorIs(t, err, ErrListingNotFound)
}

func TestPostgresListingRepository_ListActiveListings(t *testing.T) {
	pool := setupListingTestPool(t)

	repo := NewPostgresListingRepository(pool)
	ctx := context.Background()
	seller := testhelpers.CreateTestProfile(t, pool, 0)
	nftID := testhelpers.CreateTestNFT(t, pool, seller)
	testhelpers.CreateTestListing(t, pool, nftID, seller, 0.4)

	items, total, err := repo.ListActiveListings(ctx, 100, 0)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	require.GreaterOrEqual(t, total, int64(1))
	for _, l := range items {
		require.True(t, l.IsListed)
	}
}
