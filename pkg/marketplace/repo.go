package marketplace

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrAlreadyListed   = errors.New("nft already has an active listing")
	ErrNotListed       = errors.New("nft is not listed")
)

type ListingRepository interface {
	// CreateListing inserts an active listing. The partial unique index on
	// (nft_id) WHERE is_listed is the final backstop against two
	// concurrent listings for the same NFT; a violation maps to
	// ErrAlreadyListed.
	CreateListing(ctx context.Context, input Listing) (Listing, error)
	GetListingByID(ctx context.Context, id int64) (Listing, error)
	GetActiveListingByNFT(ctx context.Context, nftID int64) (Listing, error)
	// CloseListing flips is_listed off exactly once. A second close
	// reports ErrNotListed rather than silently succeeding.
	CloseListing(ctx context.Context, id int64, buyerUUID *string) error
	ListActiveListings(ctx context.Context, limit, offset int) ([]Listing, int64, error)
}

const listingColumns = `id, nft_id, seller_uuid, buyer_uuid, list_price_sol, fee_sol, is_listed, listed_at, closed_at`

type postgresListingRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresListingRepository(pool *pgxpool.Pool) ListingRepository {
	return &postgresListingRepository{pool: pool}
}

func scanListing(row pgx.Row) (Listing, error) {
	var l Listing
	err := row.Scan(&l.ID, &l.NFTID, &l.SellerUUID, &l.BuyerUUID, &l.ListPriceSol, &l.FeeSol,
		&l.IsListed, &l.ListedAt, &l.ClosedAt)
	return l, err
}

func (r *postgresListingRepository) CreateListing(ctx context.Context, input Listing) (Listing, error) {
	query := `INSERT INTO listings (nft_id, seller_uuid, list_price_sol, fee_sol, is_listed, listed_at)
              VALUES ($1, $2, $3, $4, true, NOW())
              RETURNING ` + listingColumns

	created, err := scanListing(r.pool.QueryRow(ctx, query,
		input.NFTID, input.SellerUUID, input.ListPriceSol, input.FeeSol))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Listing{}, ErrAlreadyListed
		}
		return Listing{}, err
	}
	return created, nil
}

func (r *postgresListingRepository) GetListingByID(ctx context.Context, id int64) (Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrListingNotFound
		}
		return Listing{}, err
	}
	return l, nil
}

func (r *postgresListingRepository) GetActiveListingByNFT(ctx context.Context, nftID int64) (Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE nft_id = $1 AND is_listed = true`

	l, err := scanListing(r.pool.QueryRow(ctx, query, nftID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrNotListed
		}
		return Listing{}, err
	}
	return l, nil
}

func (r *postgresListingRepository) CloseListing(ctx context.Context, id int64, buyerUUID *string) error {
	query := `UPDATE listings SET is_listed = false, closed_at = NOW(), buyer_uuid = $1
              WHERE id = $2 AND is_listed = true`
	cmd, err := r.pool.Exec(ctx, query, buyerUUID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotListed
	}
	return nil
}

func (r *postgresListingRepository) ListActiveListings(ctx context.Context, limit, offset int) ([]Listing, int64, error) {
	query := `SELECT ` + listingColumns + ` FROM listings
              WHERE is_listed = true
              ORDER BY listed_at DESC
              LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	listings := make([]Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM listings WHERE is_listed = true").Scan(&total); err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}
