package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"piximint/pkg/payments"
)

// CreditPriceSol is the marketplace price of one pixi token (mint credit).
const CreditPriceSol = 0.1

var (
	ErrEmailTaken         = errors.New("profile exists with that email")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type ProfileService interface {
	Register(ctx context.Context, username, email, password, solanaPublicKey string) (Profile, error)
	Login(ctx context.Context, email, password string) (Profile, error)
	GetProfileByUUID(ctx context.Context, uuid string) (Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (Profile, error)
	UpdateProfile(ctx context.Context, p Profile) (Profile, error)
	ListProfiles(ctx context.Context, page, limit int) ([]Profile, int64, error)
	// BuyCredits verifies a payment of quantity * CreditPriceSol to the
	// platform wallet, then credits the profile's pixi-token balance.
	BuyCredits(ctx context.Context, uuid string, quantity int64, txSignature string) (Profile, error)
}

type profileService struct {
	repo           ProfileRepository
	verifier       payments.Verifier
	platformWallet string
}

func NewProfileService(repo ProfileRepository, verifier payments.Verifier, platformWallet string) ProfileService {
	return &profileService{repo: repo, verifier: verifier, platformWallet: platformWallet}
}

func (s *profileService) Register(ctx context.Context, username, email, password, solanaPublicKey string) (Profile, error) {
	if username == "" || email == "" {
		return Profile{}, errors.New("username and email are required")
	}
	if len(password) < 8 {
		return Profile{}, errors.New("password must be at least 8 characters")
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Profile{}, err
	}

	p, err := s.repo.CreateProfile(ctx, uuid.NewString(), username, email, string(hashBytes), solanaPublicKey)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "profiles_username_key" {
				return Profile{}, ErrUsernameTaken
			}
			return Profile{}, ErrEmailTaken
		}
		return Profile{}, err
	}
	return p, nil
}

func (s *profileService) Login(ctx context.Context, email, password string) (Profile, error) {
	uuid, hash, err := s.repo.GetAuthByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return Profile{}, ErrInvalidCredentials
		}
		return Profile{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Profile{}, ErrInvalidCredentials
	}

	return s.repo.GetProfileByUUID(ctx, uuid)
}

func (s *profileService) GetProfileByUUID(ctx context.Context, uuid string) (Profile, error) {
	return s.repo.GetProfileByUUID(ctx, uuid)
}

func (s *profileService) GetProfileByUsername(ctx context.Context, username string) (Profile, error) {
	return s.repo.GetProfileByUsername(ctx, username)
}

func (s *profileService) UpdateProfile(ctx context.Context, p Profile) (Profile, error) {
	updated, err := s.repo.UpdateProfile(ctx, p)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Profile{}, ErrUsernameTaken
		}
		return Profile{}, err
	}
	return updated, nil
}

func (s *profileService) ListProfiles(ctx context.Context, page, limit int) ([]Profile, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.repo.ListProfiles(ctx, limit, offset)
}

func (s *profileService) BuyCredits(ctx context.Context, uuid string, quantity int64, txSignature string) (Profile, error) {
	if quantity < 1 {
		return Profile{}, errors.New("quantity must be at least 1")
	}

	p, err := s.repo.GetProfileByUUID(ctx, uuid)
	if err != nil {
		return Profile{}, err
	}
	if p.SolanaPublicKey == "" {
		return Profile{}, errors.New("profile has no connected wallet")
	}

	err = s.verifier.VerifyTransfer(ctx, payments.Transfer{
		Signature: txSignature,
		From:      p.SolanaPublicKey,
		To:        s.platformWallet,
		AmountSol: float64(quantity) * CreditPriceSol,
	})
	if err != nil {
		return Profile{}, err
	}

	if err := s.repo.AddPixiTokens(ctx, uuid, quantity); err != nil {
		// Payment already confirmed; this window needs support follow-up,
		// not a silent retry that could double-credit.
		return Profile{}, fmt.Errorf("payment confirmed but credit update failed: %w", err)
	}

	return s.repo.GetProfileByUUID(ctx, uuid)
}
