package slots

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresSlotRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSlotRepository(pool *pgxpool.Pool) SlotRepository {
	return &postgresSlotRepository{pool: pool}
}

func (r *postgresSlotRepository) UsedSlots(ctx context.Context) (map[int]struct{}, error) {
	rows, err := r.pool.Query(ctx, "SELECT slot_number FROM nfts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	used := make(map[int]struct{})
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		used[n] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return used, nil
}
