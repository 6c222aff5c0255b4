package nfts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"piximint/pkg/notify"
	"piximint/pkg/pixelate"
	"piximint/pkg/rarity"
	"piximint/pkg/slots"
	"piximint/pkg/storage"
	"piximint/pkg/users"
)

var (
	ErrSlotsExhausted       = errors.New("minting is complete: the collection is full")
	ErrInsufficientBalance  = errors.New("at least 1 pixi token is required to mint")
	ErrImageTransformFailed = errors.New("image transform failed")
	ErrStorageFailed        = errors.New("image upload failed")
	// ErrPersistenceFailed covers the debit/insert window: the mint credit
	// may already be burned when this is returned. The service attempts a
	// compensating credit first and reports whether it stuck.
	ErrPersistenceFailed = errors.New("nft record could not be persisted")
)

// SlotAllocator picks an unused slot number or reports exhaustion.
type SlotAllocator interface {
	Allocate(ctx context.Context) (int, error)
}

// ProfileStore is the slice of the profile repository the mint flow
// needs: balance reads, the credit debit, and the compensating credit.
type ProfileStore interface {
	GetProfileByUUID(ctx context.Context, uuid string) (users.Profile, error)
	DecrementPixiTokens(ctx context.Context, uuid string) error
	AddPixiTokens(ctx context.Context, uuid string, amount int64) error
}

type NFTService interface {
	// Mint runs the full mint flow: balance precheck, slot allocation,
	// pixelation, image upload, rarity assignment, credit debit, record
	// insert. One successful call produces exactly one NFT and burns
	// exactly one pixi token.
	Mint(ctx context.Context, creatorUUID string, image []byte, fileExt string) (NFT, error)
	GetNFTByID(ctx context.Context, id int64) (NFT, error)
	ListNFTs(ctx context.Context, filters NFTFilters, page, limit int) ([]NFT, int64, error)
	MintedCount(ctx context.Context) (int64, int, error)
}

type nftService struct {
	repo        NFTRepository
	profiles    ProfileStore
	allocator   SlotAllocator
	transformer pixelate.Transformer
	uploader    storage.Uploader
	notifier    notify.Notifier
	assign      func() rarity.Assignment
}

func NewNFTService(repo NFTRepository, profiles ProfileStore, allocator SlotAllocator,
	transformer pixelate.Transformer, uploader storage.Uploader, notifier notify.Notifier) NFTService {
	return &nftService{
		repo:        repo,
		profiles:    profiles,
		allocator:   allocator,
		transformer: transformer,
		uploader:    uploader,
		notifier:    notifier,
		assign:      func() rarity.Assignment { return rarity.Assign(nil) },
	}
}

func (s *nftService) Mint(ctx context.Context, creatorUUID string, image []byte, fileExt string) (NFT, error) {
	profile, err := s.profiles.GetProfileByUUID(ctx, creatorUUID)
	if err != nil {
		return NFT{}, err
	}
	// Checked before any slot is consumed.
	if profile.PixiTokens < 1 {
		return NFT{}, ErrInsufficientBalance
	}

	slot, err := s.allocator.Allocate(ctx)
	if err != nil {
		if errors.Is(err, slots.ErrExhausted) {
			return NFT{}, ErrSlotsExhausted
		}
		return NFT{}, err
	}

	pixelated, err := s.transformer.Pixelate(image)
	if err != nil {
		return NFT{}, fmt.Errorf("%w: %v", ErrImageTransformFailed, err)
	}

	key := fmt.Sprintf("nfts/%s/%d%s", creatorUUID, time.Now().UnixNano(), normalizeExt(fileExt))
	imageURL, err := s.uploader.Upload(ctx, key, pixelated, "image/jpeg")
	if err != nil {
		return NFT{}, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	assignment := s.assign()

	if err := s.profiles.DecrementPixiTokens(ctx, creatorUUID); err != nil {
		if errors.Is(err, users.ErrInsufficientTokens) {
			return NFT{}, ErrInsufficientBalance
		}
		return NFT{}, err
	}

	created, err := s.repo.CreateNFT(ctx, NFT{
		SlotNumber:  slot,
		Name:        fmt.Sprintf("#%d", slot),
		CreatorUUID: creatorUUID,
		OwnerUUID:   creatorUUID,
		ImageURL:    imageURL,
		Rarity:      string(assignment.Tier),
		RarityColor: assignment.Color,
		PriceSol:    assignment.PriceSol,
	})
	if err != nil {
		// The credit is already burned. Hand it back before reporting so
		// the user is not left debited-but-unminted.
		if refundErr := s.profiles.AddPixiTokens(ctx, creatorUUID, 1); refundErr != nil {
			return NFT{}, fmt.Errorf("%w: %v (credit refund also failed: %v, contact support)", ErrPersistenceFailed, err, refundErr)
		}
		if errors.Is(err, ErrSlotTaken) {
			return NFT{}, ErrSlotTaken
		}
		return NFT{}, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	if s.notifier != nil && profile.Email != "" {
		if err := s.notifier.NFTMinted(profile.Email, created.Name, created.Rarity, created.PriceSol); err != nil {
			log.Printf("mint notification for %s failed: %v", created.Name, err)
		}
	}

	return created, nil
}

func (s *nftService) GetNFTByID(ctx context.Context, id int64) (NFT, error) {
	return s.repo.GetNFTByID(ctx, id)
}

func (s *nftService) ListNFTs(ctx context.Context, filters NFTFilters, page, limit int) ([]NFT, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.repo.ListNFTs(ctx, filters, limit, offset)
}

// MintedCount reports how many NFTs exist and the collection ceiling.
func (s *nftService) MintedCount(ctx context.Context) (int64, int, error) {
	count, err := s.repo.CountNFTs(ctx)
	return count, slots.MaxSlots, err
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ".jpg"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
