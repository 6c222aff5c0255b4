package marketplace

import "time"

type Listing struct {
	ID           int64      `json:"id"`
	NFTID        int64      `json:"nft_id"`
	SellerUUID   string     `json:"seller_uuid"`
	BuyerUUID    *string    `json:"buyer_uuid,omitempty"`
	ListPriceSol float64    `json:"list_price_sol"`
	FeeSol       float64    `json:"fee_sol"`
	IsListed     bool       `json:"is_listed"`
	ListedAt     time.Time  `json:"listed_at"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
}

type ListingList struct {
	Items []Listing `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}
