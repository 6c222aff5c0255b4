package testhelpers

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

var uniqueCounter int64

func nextSuffix() int64 {
	return atomic.AddInt64(&uniqueCounter, 1)
}

// CreateTestProfile inserts a minimal valid profile with the given token
// balance and returns its UUID.
func CreateTestProfile(t *testing.T, db *pgxpool.Pool, pixiTokens int64) string {
	t.Helper()

	ctx := context.Background()
	suffix := nextSuffix()
	profileUUID := uuid.NewString()
	username := fmt.Sprintf("test-collector-%d", suffix)
	email := fmt.Sprintf("%s@example.com", username)

	_, err := db.Exec(ctx,
		`INSERT INTO profiles (uuid, username, email, password_hash, pixi_tokens, solana_public_key)
		 VALUES ($1, $2, $3, 'hash', $4, $5)`,
		profileUUID, username, email, pixiTokens, fmt.Sprintf("TestWallet%d", suffix))
	require.NoError(t, err)
	return profileUUID
}

// CreateTestNFT inserts an NFT owned and created by the given profile and
// returns its ID. The slot number is picked past the current maximum so
// repeated runs against a persistent database never collide.
func CreateTestNFT(t *testing.T, db *pgxpool.Pool, ownerUUID string) int64 {
	t.Helper()

	ctx := context.Background()

	var id int64
	err := db.QueryRow(ctx,
		`INSERT INTO nfts (slot_number, name, creator_uuid, owner_uuid, image_url, rarity, rarity_color, price_sol)
		 SELECT COALESCE(MAX(slot_number), 0) + 1, '#' || (COALESCE(MAX(slot_number), 0) + 1), $1, $1,
		        'https://example.com/test.jpg', 'Common', 'Gray', 0.25
		 FROM nfts
		 RETURNING id`,
		ownerUUID).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTestListing inserts an active listing for the NFT and returns its ID.
func CreateTestListing(t *testing.T, db *pgxpool.Pool, nftID int64, sellerUUID string, priceSol float64) int64 {
	t.Helper()

	ctx := context.Background()

	var id int64
	err := db.QueryRow(ctx,
		`INSERT INTO listings (nft_id, seller_uuid, list_price_sol, fee_sol)
		 VALUES ($1, $2, $3, 0.01)
		 RETURNING id`,
		nftID, sellerUUID, priceSol).Scan(&id)
	require.NoError(t, err)
	return id
}
