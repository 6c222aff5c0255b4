package nfts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNFTNotFound = errors.New("nft not found")
	// ErrSlotTaken means another mint won the race for this slot number
	// between our allocator read and our insert. The attempt is retryable
	// with a fresh allocation.
	ErrSlotTaken = errors.New("slot number already minted")
)

type NFTRepository interface {
	CreateNFT(ctx context.Context, input NFT) (NFT, error)
	GetNFTByID(ctx context.Context, id int64) (NFT, error)
	ListNFTs(ctx context.Context, filters NFTFilters, limit, offset int) ([]NFT, int64, error)
	UpdateOwner(ctx context.Context, id int64, ownerUUID string) error
	CountNFTs(ctx context.Context) (int64, error)
}

type NFTFilters struct {
	OwnerUUID   *string
	CreatorUUID *string
	Rarity      *string
}

const nftColumns = `id, slot_number, name, creator_uuid, owner_uuid, image_url, rarity, rarity_color, price_sol, likes_count, created_at`

type postgresNFTRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresNFTRepository(pool *pgxpool.Pool) NFTRepository {
	return &postgresNFTRepository{pool: pool}
}

func scanNFT(row pgx.Row) (NFT, error) {
	var n NFT
	err := row.Scan(&n.ID, &n.SlotNumber, &n.Name, &n.CreatorUUID, &n.OwnerUUID, &n.ImageURL,
		&n.Rarity, &n.RarityColor, &n.PriceSol, &n.LikesCount, &n.CreatedAt)
	return n, err
}

func (r *postgresNFTRepository) CreateNFT(ctx context.Context, input NFT) (NFT, error) {
	query := `INSERT INTO nfts (slot_number, name, creator_uuid, owner_uuid, image_url, rarity, rarity_color, price_sol, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
              RETURNING ` + nftColumns

	created, err := scanNFT(r.pool.QueryRow(ctx, query,
		input.SlotNumber, input.Name, input.CreatorUUID, input.OwnerUUID, input.ImageURL,
		input.Rarity, input.RarityColor, input.PriceSol))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return NFT{}, ErrSlotTaken
		}
		return NFT{}, err
	}
	return created, nil
}

func (r *postgresNFTRepository) GetNFTByID(ctx context.Context, id int64) (NFT, error) {
	query := `SELECT ` + nftColumns + ` FROM nfts WHERE id = $1`

	n, err := scanNFT(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NFT{}, ErrNFTNotFound
		}
		return NFT{}, err
	}
	return n, nil
}

func (r *postgresNFTRepository) ListNFTs(ctx context.Context, filters NFTFilters, limit, offset int) ([]NFT, int64, error) {
	whereClauses := []string{}
	args := []interface{}{}
	argPos := 1

	if filters.OwnerUUID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("owner_uuid = $%d", argPos))
		args = append(args, *filters.OwnerUUID)
		argPos++
	}
	if filters.CreatorUUID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("creator_uuid = $%d", argPos))
		args = append(args, *filters.CreatorUUID)
		argPos++
	}
	if filters.Rarity != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("rarity = $%d", argPos))
		args = append(args, *filters.Rarity)
		argPos++
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := fmt.Sprintf(`SELECT `+nftColumns+` FROM nfts %s ORDER BY slot_number LIMIT $%d OFFSET $%d`,
		whereSQL, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	nftList := make([]NFT, 0)
	for rows.Next() {
		n, err := scanNFT(rows)
		if err != nil {
			return nil, 0, err
		}
		nftList = append(nftList, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM nfts %s", whereSQL)
	countArgs := args[:len(args)-2]

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return nftList, total, nil
}

func (r *postgresNFTRepository) UpdateOwner(ctx context.Context, id int64, ownerUUID string) error {
	cmd, err := r.pool.Exec(ctx, "UPDATE nfts SET owner_uuid = $1 WHERE id = $2", ownerUUID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNFTNotFound
	}
	return nil
}

func (r *postgresNFTRepository) CountNFTs(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM nfts").Scan(&count)
	return count, err
}
