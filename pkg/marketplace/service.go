package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"piximint/pkg/nfts"
	"piximint/pkg/notify"
	"piximint/pkg/payments"
	"piximint/pkg/users"
)

var (
	ErrNotOwner     = errors.New("only the current owner can list an nft")
	ErrNotSeller    = errors.New("only the seller can delist this nft")
	ErrSelfPurchase = errors.New("you cannot buy your own nft")
	// Post-payment failures. Funds have already moved when these are
	// returned, so they must never be collapsed into a generic error.
	ErrOwnershipUpdateFailed = errors.New("payment confirmed but ownership update failed")
	ErrListingCloseFailed    = errors.New("ownership transferred but listing close failed")
)

// NFTStore is the slice of the NFT repository the ledger needs.
type NFTStore interface {
	GetNFTByID(ctx context.Context, id int64) (nfts.NFT, error)
	UpdateOwner(ctx context.Context, id int64, ownerUUID string) error
}

// ProfileStore resolves wallet addresses and notification targets.
type ProfileStore interface {
	GetProfileByUUID(ctx context.Context, uuid string) (users.Profile, error)
}

type MarketplaceService interface {
	// List puts an NFT up for sale. The listing fee must already be paid
	// to the platform wallet; feeTxSignature references that payment.
	List(ctx context.Context, nftID int64, sellerUUID string, priceSol float64, feeTxSignature string) (Listing, error)
	// Delist closes the seller's active listing without a sale.
	Delist(ctx context.Context, listingID int64, sellerUUID string) error
	// Buy transfers ownership after verifying the buyer's payment of the
	// list price to the platform wallet.
	Buy(ctx context.Context, listingID int64, buyerUUID string, txSignature string) (Listing, error)
	GetListingByID(ctx context.Context, id int64) (Listing, error)
	GetActiveListingByNFT(ctx context.Context, nftID int64) (Listing, error)
	ListActiveListings(ctx context.Context, page, limit int) ([]Listing, int64, error)
}

type marketplaceService struct {
	repo           ListingRepository
	nfts           NFTStore
	profiles       ProfileStore
	verifier       payments.Verifier
	notifier       notify.Notifier
	platformWallet string
}

func NewMarketplaceService(repo ListingRepository, nftStore NFTStore, profiles ProfileStore,
	verifier payments.Verifier, notifier notify.Notifier, platformWallet string) MarketplaceService {
	return &marketplaceService{
		repo:           repo,
		nfts:           nftStore,
		profiles:       profiles,
		verifier:       verifier,
		notifier:       notifier,
		platformWallet: platformWallet,
	}
}

// ListingFeeSol computes the fee charged to list at the given price:
// a flat 0.01 SOL for prices up to 0.5 SOL, otherwise 2.5% of the price.
func ListingFeeSol(priceSol float64) float64 {
	price := decimal.NewFromFloat(priceSol)
	if price.LessThanOrEqual(decimal.NewFromFloat(0.5)) {
		return 0.01
	}
	fee, _ := price.Mul(decimal.NewFromFloat(0.025)).Float64()
	return fee
}

func (s *marketplaceService) List(ctx context.Context, nftID int64, sellerUUID string, priceSol float64, feeTxSignature string) (Listing, error) {
	if priceSol <= 0 {
		return Listing{}, errors.New("list price must be positive")
	}

	nft, err := s.nfts.GetNFTByID(ctx, nftID)
	if err != nil {
		return Listing{}, err
	}
	if nft.OwnerUUID != sellerUUID {
		return Listing{}, ErrNotOwner
	}

	// Precondition re-check; the partial unique index catches races that
	// slip between here and the insert.
	if _, err := s.repo.GetActiveListingByNFT(ctx, nftID); err == nil {
		return Listing{}, ErrAlreadyListed
	} else if !errors.Is(err, ErrNotListed) {
		return Listing{}, err
	}

	seller, err := s.profiles.GetProfileByUUID(ctx, sellerUUID)
	if err != nil {
		return Listing{}, err
	}
	if seller.SolanaPublicKey == "" {
		return Listing{}, errors.New("seller has no connected wallet")
	}

	fee := ListingFeeSol(priceSol)
	err = s.verifier.VerifyTransfer(ctx, payments.Transfer{
		Signature: feeTxSignature,
		From:      seller.SolanaPublicKey,
		To:        s.platformWallet,
		AmountSol: fee,
	})
	if err != nil {
		return Listing{}, err
	}

	return s.repo.CreateListing(ctx, Listing{
		NFTID:        nftID,
		SellerUUID:   sellerUUID,
		ListPriceSol: priceSol,
		FeeSol:       fee,
	})
}

func (s *marketplaceService) Delist(ctx context.Context, listingID int64, sellerUUID string) error {
	listing, err := s.repo.GetListingByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.SellerUUID != sellerUUID {
		return ErrNotSeller
	}
	if !listing.IsListed {
		return ErrNotListed
	}

	return s.repo.CloseListing(ctx, listingID, nil)
}

func (s *marketplaceService) Buy(ctx context.Context, listingID int64, buyerUUID string, txSignature string) (Listing, error) {
	listing, err := s.repo.GetListingByID(ctx, listingID)
	if err != nil {
		return Listing{}, err
	}
	if !listing.IsListed {
		return Listing{}, ErrNotListed
	}
	if buyerUUID == listing.SellerUUID {
		return Listing{}, ErrSelfPurchase
	}

	buyer, err := s.profiles.GetProfileByUUID(ctx, buyerUUID)
	if err != nil {
		return Listing{}, err
	}
	if buyer.SolanaPublicKey == "" {
		return Listing{}, errors.New("buyer has no connected wallet")
	}

	// Payment failures here abort with no state change; everything after
	// this point runs with the buyer's funds already moved.
	err = s.verifier.VerifyTransfer(ctx, payments.Transfer{
		Signature: txSignature,
		From:      buyer.SolanaPublicKey,
		To:        s.platformWallet,
		AmountSol: listing.ListPriceSol,
	})
	if err != nil {
		return Listing{}, err
	}

	if err := s.nfts.UpdateOwner(ctx, listing.NFTID, buyerUUID); err != nil {
		if retryErr := s.nfts.UpdateOwner(ctx, listing.NFTID, buyerUUID); retryErr != nil {
			return Listing{}, fmt.Errorf("%w: %v", ErrOwnershipUpdateFailed, retryErr)
		}
	}

	if err := s.repo.CloseListing(ctx, listing.ID, &buyerUUID); err != nil {
		// ErrNotListed on retry means the first close landed even though
		// its result was lost; anything else leaves the listing row stale
		// until a corrective close, so it is surfaced distinctly.
		retryErr := s.repo.CloseListing(ctx, listing.ID, &buyerUUID)
		if retryErr != nil && !errors.Is(retryErr, ErrNotListed) {
			return Listing{}, fmt.Errorf("%w: %v", ErrListingCloseFailed, retryErr)
		}
	}

	s.notifySale(ctx, listing)

	return s.repo.GetListingByID(ctx, listing.ID)
}

func (s *marketplaceService) notifySale(ctx context.Context, listing Listing) {
	if s.notifier == nil {
		return
	}
	seller, err := s.profiles.GetProfileByUUID(ctx, listing.SellerUUID)
	if err != nil || seller.Email == "" {
		return
	}
	nft, err := s.nfts.GetNFTByID(ctx, listing.NFTID)
	if err != nil {
		return
	}
	if err := s.notifier.NFTSold(seller.Email, nft.Name, listing.ListPriceSol); err != nil {
		log.Printf("sale notification for %s failed: %v", nft.Name, err)
	}
}

func (s *marketplaceService) GetListingByID(ctx context.Context, id int64) (Listing, error) {
	return s.repo.GetListingByID(ctx, id)
}

func (s *marketplaceService) GetActiveListingByNFT(ctx context.Context, nftID int64) (Listing, error) {
	return s.repo.GetActiveListingByNFT(ctx, nftID)
}

func (s *marketplaceService) ListActiveListings(ctx context.Context, page, limit int) ([]Listing, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.repo.ListActiveListings(ctx, limit, offset)
}
