package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSocialRepository struct {
	mock.Mock
}

func (m *mockSocialRepository) CreateFollow(ctx context.Context, followerUUID, followedUUID string) (Follow, error) {
	args := m.Called(ctx, followerUUID, followedUUID)
	f, _ := args.Get(0).(Follow)
	return f, args.Error(1)
}

func (m *mockSocialRepository) DeleteFollow(ctx context.Context, followerUUID, followedUUID string) error {
	args := m.Called(ctx, followerUUID, followedUUID)
	return args.Error(0)
}

func (m *mockSocialRepository) IsFollowing(ctx context.Context, followerUUID, followedUUID string) (bool, error) {
	args := m.Called(ctx, followerUUID, followedUUID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSocialRepository) FollowStats(ctx context.Context, profileUUID string) (FollowStats, error) {
	args := m.Called(ctx, profileUUID)
	s, _ := args.Get(0).(FollowStats)
	return s, args.Error(1)
}

func (m *mockSocialRepository) LikeNFT(ctx context.Context, nftID int64, userUUID string) error {
	args := m.Called(ctx, nftID, userUUID)
	return args.Error(0)
}

func (m *mockSocialRepository) UnlikeNFT(ctx context.Context, nftID int64, userUUID string) error {
	args := m.Called(ctx, nftID, userUUID)
	return args.Error(0)
}

func (m *mockSocialRepository) HasLiked(ctx context.Context, nftID int64, userUUID string) (bool, error) {
	args := m.Called(ctx, nftID, userUUID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSocialRepository) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]LeaderboardEntry)
	return entries, args.Error(1)
}

func TestFollow_SelfFollowRejected(t *testing.T) {
	repo := new(mockSocialRepository)
	svc := NewSocialService(repo)

	_, err := svc.Follow(context.Background(), "same-uuid", "same-uuid")

	require.ErrorIs(t, err, ErrSelfFollow)
	repo.AssertNotCalled(t, "CreateFollow", mock.Anything, mock.Anything, mock.Anything)
}

func TestFollow_DuplicateSurfaced(t *testing.T) {
	repo := new(mockSocialRepository)
	svc := NewSocialService(repo)

	repo.On("CreateFollow", mock.Anything, "a", "b").Return(Follow{}, ErrAlreadyFollowing)

	_, err := svc.Follow(context.Background(), "a", "b")

	require.ErrorIs(t, err, ErrAlreadyFollowing)
}

func TestUnfollow_NotFollowing(t *testing.T) {
	repo := new(mockSocialRepository)
	svc := NewSocialService(repo)

	repo.On("DeleteFollow", mock.Anything, "a", "b").Return(ErrNotFollowing)

	require.ErrorIs(t, svc.Unfollow(context.Background(), "a", "b"), ErrNotFollowing)
}

func TestLike_DuplicateSurfaced(t *testing.T) {
	repo := new(mockSocialRepository)
	svc := NewSocialService(repo)

	repo.On("LikeNFT", mock.Anything, int64(7), "a").Return(ErrAlreadyLiked)

	require.ErrorIs(t, svc.Like(context.Background(), 7, "a"), ErrAlreadyLiked)
}

func TestLeaderboard_LimitClamped(t *testing.T) {
	repo := new(mockSocialRepository)
	svc := NewSocialService(repo)

	entries := []LeaderboardEntry{{ProfileUUID: "a", Username: "collector", NFTCount: 12, TotalLikes: 40}}
	repo.On("Leaderboard", mock.Anything, 10).Return(entries, nil)

	got, err := svc.Leaderboard(context.Background(), -5)
	require.NoError(t, err)
	require.Equal(t, entries, got)

	got, err = svc.Leaderboard(context.Background(), 500)
	require.NoError(t, err)
	require.Equal(t, entries, got)
	repo.AssertNumberOfCalls(t, "Leaderboard", 2)
}
