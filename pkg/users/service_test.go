package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"piximint/pkg/payments"
)

type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) CreateProfile(ctx context.Context, uuid, username, email, passwordHash, solanaPublicKey string) (Profile, error) {
	args := m.Called(ctx, uuid, username, email, passwordHash, solanaPublicKey)
	p, _ := args.Get(0).(Profile)
	return p, args.Error(1)
}

func (m *mockProfileRepository) UpdateProfile(ctx context.Context, p Profile) (Profile, error) {
	args := m.Called(ctx, p)
	updated, _ := args.Get(0).(Profile)
	return updated, args.Error(1)
}

func (m *mockProfileRepository) GetProfileByUUID(ctx context.Context, uuid string) (Profile, error) {
	args := m.Called(ctx, uuid)
	p, _ := args.Get(0).(Profile)
	return p, args.Error(1)
}

func (m *mockProfileRepository) GetProfileByUsername(ctx context.Context, username string) (Profile, error) {
	args := m.Called(ctx, username)
	p, _ := args.Get(0).(Profile)
	return p, args.Error(1)
}

func (m *mockProfileRepository) ListProfiles(ctx context.Context, limit, offset int) ([]Profile, int64, error) {
	args := m.Called(ctx, limit, offset)
	list, _ := args.Get(0).([]Profile)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *mockProfileRepository) GetAuthByEmail(ctx context.Context, email string) (string, string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockProfileRepository) DecrementPixiTokens(ctx context.Context, uuid string) error {
	args := m.Called(ctx, uuid)
	return args.Error(0)
}

func (m *mockProfileRepository) AddPixiTokens(ctx context.Context, uuid string, amount int64) error {
	args := m.Called(ctx, uuid, amount)
	return args.Error(0)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) VerifyTransfer(ctx context.Context, t payments.Transfer) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

const testPlatformWallet = "VCvpAXWgKF3YgK9MCAcZEFQ1uTCc7ekYUWAnFYxhKFx"

func TestRegister_HashesPassword(t *testing.T) {
	repo := new(mockProfileRepository)
	svc := NewProfileService(repo, new(mockVerifier), testPlatformWallet)

	repo.On("CreateProfile", mock.Anything, mock.Anything, "collector", "c@example.com",
		mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cretpass")) == nil
		}), "Wallet111").
		Return(Profile{UUID: "u1", Username: "collector"}, nil)

	p, err := svc.Register(context.Background(), "collector", "c@example.com", "s3cretpass", "Wallet111")

	require.NoError(t, err)
	require.Equal(t, "collector", p.Username)
	repo.AssertExpectations(t)
}

func TestRegister_ShortPasswordRejected(t *testing.T) {
	repo := new(mockProfileRepository)
	svc := NewProfileService(repo, new(mockVerifier), testPlatformWallet)

	_, err := svc.Register(context.Background(), "collector", "c@example.com", "short", "")

	require.Error(t, err)
	repo.AssertNotCalled(t, "CreateProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(mockProfileRepository)
	svc := NewProfileService(repo, new(mockVerifier), testPlatformWallet)

	hash, err := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.On("GetAuthByEmail", mock.Anything, "c@example.com").Return("u1", string(hash), nil)

	_, err = svc.Login(context.Background(), "c@example.com", "wrongpass")

	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmailMapsToInvalidCredentials(t *testing.T) {
	repo := new(mockProfileRepository)
	svc := NewProfileService(repo, new(mockVerifier), testPlatformWallet)

	repo.On("GetAuthByEmail", mock.Anything, "nobody@example.com").Return("", "", ErrProfileNotFound)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever1")

	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_Success(t *testing.T) {
	repo := new(mockProfileRepository)
	svc := NewProfileService(repo, new(mockVerifier), testPlatformWallet)

	hash, err := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.On("GetAuthByEmail", mock.Anything, "c@example.com").Return("u1", string(hash), nil)
	repo.On("GetProfileByUUID", mock.Anything, "u1").Return(Profile{UUID: "u1", Email: "c@example.com"}, nil)

	p, err := svc.Login(context.Background(), "c@example.com", "rightpass")

	require.NoError(t, err)
	require.Equal(t, "u1", p.UUID)
}

func TestBuyCredits_VerifiesExactAmount(t *testing.T) {
	repo := new(mockProfileRepository)
	verifier := new(mockVerifier)
	svc := NewProfileService(repo, verifier, testPlatformWallet)

	repo.On("GetProfileByUUID", mock.Anything, "u1").
		Return(Profile{UUID: "u1", SolanaPublicKey: "Wallet111", PixiTokens: 0}, nil).Once()
	verifier.On("VerifyTransfer", mock.Anything, payments.Transfer{
		Signature: "sig",
		From:      "Wallet111",
		To:        testPlatformWallet,
		AmountSol: 0.5,
	}).Return(nil)
	repo.On("AddPixiTokens", mock.Anything, "u1", int64(5)).Return(nil)
	repo.On("GetProfileByUUID", mock.Anything, "u1").
		Return(Profile{UUID: "u1", SolanaPublicKey: "Wallet111", PixiTokens: 5}, nil).Once()

	p, err := svc.BuyCredits(context.Background(), "u1", 5, "sig")

	require.NoError(t, err)
	require.EqualValues(t, 5, p.PixiTokens)
	verifier.AssertExpectations(t)
}

func TestBuyCredits_PaymentFailureCreditsNothing(t *testing.T) {
	repo := new(mockProfileRepository)
	verifier := new(mockVerifier)
	svc := NewProfileService(repo, verifier, testPlatformWallet)

	repo.On("GetProfileByUUID", mock.Anything, "u1").
		Return(Profile{UUID: "u1", SolanaPublicKey: "Wallet111"}, nil)
	verifier.On("VerifyTransfer", mock.Anything, mock.Anything).Return(payments.ErrPaymentFailed)

	_, err := svc.BuyCredits(context.Background(), "u1", 5, "sig")

	require.ErrorIs(t, err, payments.ErrPaymentFailed)
	repo.AssertNotCalled(t, "AddPixiTokens", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuyCredits_CreditFailureAfterPayment(t *testing.T) {
	repo := new(mockProfileRepository)
	verifier := new(mockVerifier)
	svc := NewProfileService(repo, verifier, testPlatformWallet)

	repo.On("GetProfileByUUID", mock.Anything, "u1").
		Return(Profile{UUID: "u1", SolanaPublicKey: "Wallet111"}, nil)
	verifier.On("VerifyTransfer", mock.Anything, mock.Anything).Return(nil)
	repo.On("AddPixiTokens", mock.Anything, "u1", int64(2)).Return(errors.New("connection reset"))

	_, err := svc.BuyCredits(context.Background(), "u1", 2, "sig")

	require.Error(t, err)
	require.Contains(t, err.Error(), "payment confirmed")
}

func TestBuyCredits_WalletRequired(t *testing.T) {
	repo := new(mockProfileRepository)
	verifier := new(mockVerifier)
	svc := NewProfileService(repo, verifier, testPlatformWallet)

	repo.On("GetProfileByUUID", mock.Anything, "u1").Return(Profile{UUID: "u1"}, nil)

	_, err := svc.BuyCredits(context.Background(), "u1", 1, "sig")

	require.Error(t, err)
	verifier.AssertNotCalled(t, "VerifyTransfer", mock.Anything, mock.Anything)
}
