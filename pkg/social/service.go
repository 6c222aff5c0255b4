package social

import (
	"context"
	"errors"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

// defaultLeaderboardSize bounds the leaderboard when no limit is given.
const defaultLeaderboardSize = 10

type SocialService interface {
	Follow(ctx context.Context, followerUUID, followedUUID string) (Follow, error)
	Unfollow(ctx context.Context, followerUUID, followedUUID string) error
	IsFollowing(ctx context.Context, followerUUID, followedUUID string) (bool, error)
	FollowStats(ctx context.Context, profileUUID string) (FollowStats, error)
	Like(ctx context.Context, nftID int64, userUUID string) error
	Unlike(ctx context.Context, nftID int64, userUUID string) error
	HasLiked(ctx context.Context, nftID int64, userUUID string) (bool, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

type socialService struct {
	repo SocialRepository
}

func NewSocialService(repo SocialRepository) SocialService {
	return &socialService{repo: repo}
}

func (s *socialService) Follow(ctx context.Context, followerUUID, followedUUID string) (Follow, error) {
	if followerUUID == followedUUID {
		return Follow{}, ErrSelfFollow
	}
	return s.repo.CreateFollow(ctx, followerUUID, followedUUID)
}

func (s *socialService) Unfollow(ctx context.Context, followerUUID, followedUUID string) error {
	return s.repo.DeleteFollow(ctx, followerUUID, followedUUID)
}

func (s *socialService) IsFollowing(ctx context.Context, followerUUID, followedUUID string) (bool, error) {
	return s.repo.IsFollowing(ctx, followerUUID, followedUUID)
}

func (s *socialService) FollowStats(ctx context.Context, profileUUID string) (FollowStats, error) {
	return s.repo.FollowStats(ctx, profileUUID)
}

func (s *socialService) Like(ctx context.Context, nftID int64, userUUID string) error {
	return s.repo.LikeNFT(ctx, nftID, userUUID)
}

func (s *socialService) Unlike(ctx context.Context, nftID int64, userUUID string) error {
	return s.repo.UnlikeNFT(ctx, nftID, userUUID)
}

func (s *socialService) HasLiked(ctx context.Context, nftID int64, userUUID string) (bool, error) {
	return s.repo.HasLiked(ctx, nftID, userUUID)
}

func (s *socialService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultLeaderboardSize
	}
	return s.repo.Leaderboard(ctx, limit)
}
