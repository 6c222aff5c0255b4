package nfts

import "time"

type NFT struct {
	ID          int64     `json:"id"`
	SlotNumber  int       `json:"slot_number"`
	Name        string    `json:"name"` // display name, "#<slot>"
	CreatorUUID string    `json:"creator_uuid"`
	OwnerUUID   string    `json:"owner_uuid"`
	ImageURL    string    `json:"image_url"`
	Rarity      string    `json:"rarity"`
	RarityColor string    `json:"rarity_color"`
	PriceSol    float64   `json:"price_sol"`
	LikesCount  int64     `json:"likes_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type NFTList struct {
	Items []NFT `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
