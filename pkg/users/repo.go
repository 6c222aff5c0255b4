package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInsufficientTokens = errors.New("insufficient pixi tokens")
)

type ProfileRepository interface {
	CreateProfile(ctx context.Context, uuid, username, email, passwordHash, solanaPublicKey string) (Profile, error)
	UpdateProfile(ctx context.Context, p Profile) (Profile, error)
	GetProfileByUUID(ctx context.Context, uuid string) (Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (Profile, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]Profile, int64, error)
	// Auth helper: uuid and password hash for a login attempt.
	GetAuthByEmail(ctx context.Context, email string) (string, string, error)
	// Mint-credit ledger. DecrementPixiTokens refuses to go below zero.
	DecrementPixiTokens(ctx context.Context, uuid string) error
	AddPixiTokens(ctx context.Context, uuid string, amount int64) error
}

const profileColumns = `id, uuid, username, email, description, website_url, twitter_url,
              avatar_url, banner_url, is_verified, pixi_tokens, solana_public_key, created_at`

type postgresProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &postgresProfileRepository{pool: pool}
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.UUID, &p.Username, &p.Email, &p.Description, &p.WebsiteURL, &p.TwitterURL,
		&p.AvatarURL, &p.BannerURL, &p.IsVerified, &p.PixiTokens, &p.SolanaPublicKey, &p.CreatedAt)
	return p, err
}

func (r *postgresProfileRepository) CreateProfile(ctx context.Context, uuid, username, email, passwordHash, solanaPublicKey string) (Profile, error) {
	query := `INSERT INTO profiles (uuid, username, email, password_hash, solana_public_key, created_at)
              VALUES ($1, $2, $3, $4, $5, NOW())
              RETURNING ` + profileColumns

	return scanProfile(r.pool.QueryRow(ctx, query, uuid, username, email, passwordHash, solanaPublicKey))
}

func (r *postgresProfileRepository) UpdateProfile(ctx context.Context, p Profile) (Profile, error) {
	query := `UPDATE profiles
              SET username = $1, description = $2, website_url = $3, twitter_url = $4,
                  avatar_url = $5, banner_url = $6, solana_public_key = $7
              WHERE uuid = $8
              RETURNING ` + profileColumns

	updated, err := scanProfile(r.pool.QueryRow(ctx, query,
		p.Username, p.Description, p.WebsiteURL, p.TwitterURL, p.AvatarURL, p.BannerURL, p.SolanaPublicKey, p.UUID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}
	return updated, nil
}

func (r *postgresProfileRepository) GetProfileByUUID(ctx context.Context, uuid string) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE uuid = $1`

	p, err := scanProfile(r.pool.QueryRow(ctx, query, uuid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

func (r *postgresProfileRepository) GetProfileByUsername(ctx context.Context, username string) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = $1`

	p, err := scanProfile(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

func (r *postgresProfileRepository) ListProfiles(ctx context.Context, limit, offset int) ([]Profile, int64, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := make([]Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM profiles").Scan(&total); err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *postgresProfileRepository) GetAuthByEmail(ctx context.Context, email string) (string, string, error) {
	query := `SELECT uuid, password_hash FROM profiles WHERE email = $1`

	var uuid, hash string
	if err := r.pool.QueryRow(ctx, query, email).Scan(&uuid, &hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", ErrProfileNotFound
		}
		return "", "", err
	}
	return uuid, hash, nil
}

// DecrementPixiTokens burns exactly one mint credit. The balance guard
// lives in the WHERE clause so the counter can never go negative, even
// with concurrent mints racing on the same profile.
func (r *postgresProfileRepository) DecrementPixiTokens(ctx context.Context, uuid string) error {
	query := `UPDATE profiles SET pixi_tokens = pixi_tokens - 1 WHERE uuid = $1 AND pixi_tokens >= 1`
	cmd, err := r.pool.Exec(ctx, query, uuid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetProfileByUUID(ctx, uuid); err != nil {
			return err
		}
		return ErrInsufficientTokens
	}
	return nil
}

func (r *postgresProfileRepository) AddPixiTokens(ctx context.Context, uuid string, amount int64) error {
	query := `UPDATE profiles SET pixi_tokens = pixi_tokens + $1 WHERE uuid = $2`
	cmd, err := r.pool.Exec(ctx, query, amount, uuid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}
