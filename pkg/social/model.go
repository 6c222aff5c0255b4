package social

import "time"

type Follow struct {
	ID           int64     `json:"id"`
	FollowerUUID string    `json:"follower_uuid"`
	FollowedUUID string    `json:"followed_uuid"`
	CreatedAt    time.Time `json:"created_at"`
}

type FollowStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// LeaderboardEntry aggregates a profile's collection standing.
type LeaderboardEntry struct {
	ProfileUUID string `json:"profile_uuid"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatar_url"`
	NFTCount    int64  `json:"nft_count"`
	TotalLikes  int64  `json:"total_likes"`
}
