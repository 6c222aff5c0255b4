package users

import "time"

type Profile struct {
	ID              int64     `json:"id"`
	UUID            string    `json:"uuid"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Description     string    `json:"description"`
	WebsiteURL      string    `json:"website_url"`
	TwitterURL      string    `json:"twitter_url"`
	AvatarURL       string    `json:"avatar_url"`
	BannerURL       string    `json:"banner_url"`
	IsVerified      bool      `json:"is_verified"`
	PixiTokens      int64     `json:"pixi_tokens"`
	SolanaPublicKey string    `json:"solana_public_key"`
	CreatedAt       time.Time `json:"created_at"`
}

type ProfileList struct {
	Items []Profile `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}
