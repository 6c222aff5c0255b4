package social

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"piximint/pkg/testhelpers"
)

func setupSocialTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL_FOR_TEST")
	if dsn == "" {
		t.Skip("DATABASE_URL_FOR_TEST not set; skipping social repository tests")
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

func TestPostgresSocialRepository_FollowLifecycle(t *testing.T) {
	pool := setupSocialTestPool(t)

	repo := NewPostgresSocialRepository(pool)
	ctx := context.Background()
	follower := testhelpers.CreateTestProfile(t, pool, 0)
	followed := testhelpers.CreateTestProfile(t, pool, 0)

	follow, err := repo.CreateFollow(ctx, follower, followed)
	require.NoError(t, err)
	require.Equal(t, follower, follow.FollowerUUID)

	_, err = repo.CreateFollow(ctx, follower, followed)
	require.ErrorIs(t, err, ErrAlreadyFollowing)

	following, err := repo.IsFollowing(ctx, follower, followed)
	require.NoError(t, err)
	require.True(t, following)

	stats, err := repo.FollowStats(ctx, followed)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.Followers)
	require.EqualValues(t, 0, stats.Following)

	require.NoError(t, repo.DeleteFollow(ctx, follower, followed))
	require.ErrorIs(t, repo.DeleteFollow(ctx, follower, followed), ErrNotFollowing)
}

func TestPostgresSocialRepository_LikesUpdateCounter(t *testing.T) {
	pool := setupSocialTestPool(t)

	repo := NewPostgresSocialRepository(pool)
	ctx := context.Background()
	owner := testhelpers.CreateTestProfile(t, pool, 0)
	liker := testhelpers.CreateTestProfile(t, pool, 0)
	nftID := testhelpers.CreateTestNFT(t, pool, owner)

	require.NoError(t, repo.LikeNFT(ctx, nftID, liker))
	require.ErrorIs(t, repo.LikeNFT(ctx, nftID, liker), ErrAlreadyLiked)

	liked, err := repo.HasLiked(ctx, nftID, liker)
	require.NoError(t, err)
	require.True(t, liked)

	var count int64
	require.NoError(t, pool.QueryRow(ctx, "SELECT likes_count FROM nfts WHERE id = $1", nftID).Scan(&count))
	require.EqualValues(t, 1, count)

	require.NoError(t, repo.UnlikeNFT(ctx, nftID, liker))
	require.ErrorIs(t, repo.UnlikeNFT(ctx, nftID, liker), ErrNotLiked)

	require.NoError(t, pool.QueryRow(ctx, "SELECT likes_count FROM nfts WHERE id = $1", nftID).Scan(&count))
	require.EqualValues(t, 0, count)
}

func TestPostgresSocialRepository_LikeMissingNFT(t *testing.T) {
	pool := setupSocialTestPool(t)

	repo := NewPostgresSocialRepository(pool)
	liker := testhelpers.CreateTestProfile(t, pool, 0)

	err := repo.LikeNFT(context.Background(), 999999999, liker)

	require.ErrorIs(t, err, ErrTargetNotFound)
}

func TestPostgresSocialRepository_Leaderboard(t *testing.T) {
	pool := setupSocialTestPool(t)

	repo := NewPostgresSocialRepository(pool)
	ctx := context.Background()
	collector := testhelpers.CreateTestProfile(t, pool, 0)
	testhelpers.CreateTestNFT(t, pool, collector)
	testhelpers.CreateTestNFT(t, pool, collector)

	entries, err := repo.Leaderboard(ctx, 100)
	require.NoError(t, err)

	var found bool
	for _, e := range entries {
		if e.ProfileUUID == collector {
			found = true
			require.GreaterOrEqual(t, e.NFTCount, int64(2))
		}
	}
	require.True(t, found, "collector with owned nfts should appear on the leaderboard")
}
