package service

import (
	"context"
	"testing"
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/domain"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports/mocks"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc          *AuthServiceImpl
	merchantRepo *mocks.MockMerchantRepository
	hashSvc      *mocks.MockHashService
	tokenSvc     *mocks.MockTokenService
	ctrl         *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		merchantRepo: mocks.NewMockMerchantRepository(ctrl),
		hashSvc:      mocks.NewMockHashService(ctrl),
		tokenSvc:     mocks.NewMockTokenService(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewAuthService(d.merchantRepo, d.hashSvc, d.tokenSvc)
	return d
}

func TestAuthService_Register_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	paypal := "payouts@shop.io"
	req := ports.RegisterRequest{
		Name:        "Shop",
		Email:       "owner@shop.io",
		Password:    "s3cret-pass",
		PaypalEmail: &paypal,
	}

	d.merchantRepo.EXPECT().GetByEmail(ctx, req.Email).Return(nil, nil)
	d.hashSvc.EXPECT().Hash(req.Password).Return("$argon2id$hash", nil)
	d.merchantRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, m *domain.Merchant) error {
			assert.Equal(t, req.Email, m.Email)
			assert.Equal(t, "$argon2id$hash", m.PasswordHash)
			require.NotNil(t, m.PaypalEmail)
			assert.Equal(t, paypal, *m.PaypalEmail)
			assert.NotEqual(t, uuid.Nil, m.ID)
			return nil
		})

	merchant, err := d.svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, req.Name, merchant.Name)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.merchantRepo.EXPECT().GetByEmail(ctx, "owner@shop.io").
		Return(&domain.Merchant{ID: uuid.New()}, nil)

	_, err := d.svc.Register(ctx, ports.RegisterRequest{Email: "owner@shop.io", Password: "x"})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestAuthService_Login_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	merchant := &domain.Merchant{ID: merchantID, Email: "owner@shop.io", PasswordHash: "hash"}
	expiry := time.Now().Add(time.Hour)

	d.merchantRepo.EXPECT().GetByEmail(ctx, merchant.Email).Return(merchant, nil)
	d.hashSvc.EXPECT().Verify("s3cret-pass", "hash").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(merchantID, merchant.Email).Return("token-123", expiry, nil)

	token, expiresAt, err := d.svc.Login(ctx, merchant.Email, "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "token-123", token)
	assert.Equal(t, expiry, expiresAt)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchant := &domain.Merchant{ID: uuid.New(), Email: "owner@shop.io", PasswordHash: "hash"}

	d.merchantRepo.EXPECT().GetByEmail(ctx, merchant.Email).Return(merchant, nil)
	d.hashSvc.EXPECT().Verify("wrong", "hash").Return(false, nil)

	_, _, err := d.svc.Login(ctx, merchant.Email, "wrong")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.HTTPStatus)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.merchantRepo.EXPECT().GetByEmail(ctx, "ghost@shop.io").Return(nil, nil)

	_, _, err := d.svc.Login(ctx, "ghost@shop.io", "whatever")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.HTTPStatus, "unknown email answers the same as a wrong password")
}

func TestArgon2HashService_HashAndVerify(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := svc.Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2HashService_UniqueSalts(t *testing.T) {
	svc := NewArgon2HashService()

	h1, err := svc.Hash("same-password")
	require.NoError(t, err)
	h2, err := svc.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "each hash gets a fresh salt")
}

func TestArgon2HashService_MalformedHash(t *testing.T) {
	svc := NewArgon2HashService()

	_, err := svc.Verify("password", "not-a-valid-hash")
	assert.Error(t, err)
}

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "crypto-pos-api")
	merchantID := uuid.New()

	token, expiresAt, err := svc.Generate(merchantID, "owner@shop.io")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, merchantID, claims.MerchantID)
	assert.Equal(t, "owner@shop.io", claims.Email)
}

func TestJWTTokenService_WrongSecret(t *testing.T) {
	svc := NewJWTTokenService("secret-a", time.Hour, "crypto-pos-api")
	other := NewJWTTokenService("secret-b", time.Hour, "crypto-pos-api")

	token, _, err := svc.Generate(uuid.New(), "owner@shop.io")
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_ExpiredToken(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", -time.Minute, "crypto-pos-api")

	token, _, err := svc.Generate(uuid.New(), "owner@shop.io")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Garbage(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "crypto-pos-api")

	_, err := svc.Validate("not.a.token")
	assert.Error(t, err)
}
