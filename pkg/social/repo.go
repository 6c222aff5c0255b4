package social

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAlreadyFollowing = errors.New("already following this profile")
	ErrNotFollowing     = errors.New("not following this profile")
	ErrAlreadyLiked     = errors.New("nft already liked")
	ErrNotLiked         = errors.New("nft not liked")
	ErrTargetNotFound   = errors.New("target not found")
)

type SocialRepository interface {
	CreateFollow(ctx context.Context, followerUUID, followedUUID string) (Follow, error)
	DeleteFollow(ctx context.Context, followerUUID, followedUUID string) error
	IsFollowing(ctx context.Context, followerUUID, followedUUID string) (bool, error)
	FollowStats(ctx context.Context, profileUUID string) (FollowStats, error)
	LikeNFT(ctx context.Context, nftID int64, userUUID string) error
	UnlikeNFT(ctx context.Context, nftID int64, userUUID string) error
	HasLiked(ctx context.Context, nftID int64, userUUID string) (bool, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

type postgresSocialRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSocialRepository(pool *pgxpool.Pool) SocialRepository {
	return &postgresSocialRepository{pool: pool}
}

func (r *postgresSocialRepository) CreateFollow(ctx context.Context, followerUUID, followedUUID string) (Follow, error) {
	query := `
		INSERT INTO follows (follower_uuid, followed_uuid)
		VALUES ($1, $2)
		RETURNING id, follower_uuid, followed_uuid, created_at`

	var f Follow
	err := r.pool.QueryRow(ctx, query, followerUUID, followedUUID).
		Scan(&f.ID, &f.FollowerUUID, &f.FollowedUUID, &f.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Follow{}, ErrAlreadyFollowing
			case "23503":
				return Follow{}, ErrTargetNotFound
			}
		}
		return Follow{}, err
	}
	return f, nil
}

func (r *postgresSocialRepository) DeleteFollow(ctx context.Context, followerUUID, followedUUID string) error {
	query := `DELETE FROM follows WHERE follower_uuid = $1 AND followed_uuid = $2`
	cmd, err := r.pool.Exec(ctx, query, followerUUID, followedUUID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFollowing
	}
	return nil
}

func (r *postgresSocialRepository) IsFollowing(ctx context.Context, followerUUID, followedUUID string) (bool, error) {
	query := `SELECT 1 FROM follows WHERE follower_uuid = $1 AND followed_uuid = $2`

	var one int
	err := r.pool.QueryRow(ctx, query, followerUUID, followedUUID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *postgresSocialRepository) FollowStats(ctx context.Context, profileUUID string) (FollowStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followed_uuid = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_uuid = $1)`

	var stats FollowStats
	if err := r.pool.QueryRow(ctx, query, profileUUID).Scan(&stats.Followers, &stats.Following); err != nil {
		return FollowStats{}, err
	}
	return stats, nil
}

func (r *postgresSocialRepository) LikeNFT(ctx context.Context, nftID int64, userUUID string) error {
	query := `INSERT INTO nft_likes (nft_id, user_uuid) VALUES ($1, $2)`
	if _, err := r.pool.Exec(ctx, query, nftID, userUUID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrAlreadyLiked
			case "23503":
				return ErrTargetNotFound
			}
		}
		return err
	}

	// Denormalized counter; drifts only if this update is lost, and a
	// periodic recount can repair it from nft_likes.
	_, err := r.pool.Exec(ctx, `UPDATE nfts SET likes_count = likes_count + 1 WHERE id = $1`, nftID)
	return err
}

func (r *postgresSocialRepository) UnlikeNFT(ctx context.Context, nftID int64, userUUID string) error {
	query := `DELETE FROM nft_likes WHERE nft_id = $1 AND user_uuid = $2`
	cmd, err := r.pool.Exec(ctx, query, nftID, userUUID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotLiked
	}

	_, err = r.pool.Exec(ctx, `UPDATE nfts SET likes_count = GREATEST(likes_count - 1, 0) WHERE id = $1`, nftID)
	return err
}

func (r *postgresSocialRepository) HasLiked(ctx context.Context, nftID int64, userUUID string) (bool, error) {
	query := `SELECT 1 FROM nft_likes WHERE nft_id = $1 AND user_uuid = $2`

	var one int
	err := r.pool.QueryRow(ctx, query, nftID, userUUID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *postgresSocialRepository) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	query := `
		SELECT p.uuid, p.username, p.avatar_url,
		       COUNT(n.id) AS nft_count,
		       COALESCE(SUM(n.likes_count), 0) AS total_likes
		FROM profiles p
		JOIN nfts n ON n.owner_uuid = p.uuid
		GROUP BY p.uuid, p.username, p.avatar_url
		ORDER BY nft_count DESC, total_likes DESC, p.username ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.ProfileUUID, &e.Username, &e.AvatarURL, &e.NFTCount, &e.TotalLikes); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
