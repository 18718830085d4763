package service

import (
	"context"
	"errors"
	"testing"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/domain"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports/mocks"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type merchantTestDeps struct {
	svc          *MerchantServiceImpl
	merchantRepo *mocks.MockMerchantRepository
	txRepo       *mocks.MockTransactionRepository
	chargeClient *mocks.MockChargeClient
	ctrl         *gomock.Controller
}

func setupMerchantService(t *testing.T) *merchantTestDeps {
	ctrl := gomock.NewController(t)
	d := &merchantTestDeps{
		merchantRepo: mocks.NewMockMerchantRepository(ctrl),
		txRepo:       mocks.NewMockTransactionRepository(ctrl),
		chargeClient: mocks.NewMockChargeClient(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewMerchantService(d.merchantRepo, d.txRepo, d.chargeClient, zerolog.Nop())
	return d
}

func TestMerchantService_GetProfile_NotFound(t *testing.T) {
	d := setupMerchantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	d.merchantRepo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := d.svc.GetProfile(ctx, id)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestMerchantService_UpdateProfile(t *testing.T) {
	d := setupMerchantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	merchant := &domain.Merchant{ID: id, Name: "Old Name", Email: "old@shop.io"}

	newName := "New Name"
	paypal := "payouts@shop.io"

	d.merchantRepo.EXPECT().GetByID(ctx, id).Return(merchant, nil)
	d.merchantRepo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, m *domain.Merchant) error {
			assert.Equal(t, "New Name", m.Name)
			assert.Equal(t, "old@shop.io", m.Email, "email unchanged when not provided")
			require.NotNil(t, m.PaypalEmail)
			assert.Equal(t, paypal, *m.PaypalEmail)
			return nil
		})

	updated, err := d.svc.UpdateProfile(ctx, id, ports.UpdateMerchantRequest{
		Name:        &newName,
		PaypalEmail: &paypal,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
}

func TestMerchantService_UpdateProfile_EmailTaken(t *testing.T) {
	d := setupMerchantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	merchant := &domain.Merchant{ID: id, Email: "old@shop.io"}
	newEmail := "taken@shop.io"

	d.merchantRepo.EXPECT().GetByID(ctx, id).Return(merchant, nil)
	d.merchantRepo.EXPECT().GetByEmail(ctx, newEmail).Return(&domain.Merchant{ID: uuid.New()}, nil)

	_, err := d.svc.UpdateProfile(ctx, id, ports.UpdateMerchantRequest{Email: &newEmail})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestMerchantService_DeleteAccount_HasTransactions(t *testing.T) {
	d := setupMerchantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()

	d.merchantRepo.EXPECT().GetByID(ctx, id).Return(&domain.Merchant{ID: id}, nil)
	d.txRepo.EXPECT().CountByMerchant(ctx, id).Return(int64(4), nil)
	// No Delete call: the ledger keeps the account alive.

	err := d.svc.DeleteAccount(ctx, id)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestMerchantService_DeleteAccount_Clean(t *testing.T) {
	d := setupMerchantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()

	d.merchantRepo.EXPECT().GetByID(ctx, id).Return(&domain.Merchant{ID: id}, nil)
	d.txRepo.EXPECT().CountByMerchant(ctx, id).Return(int64(0), nil)
	d.merchantRepo.EXPECT().Delete(ctx, id).Return(nil)

	assert.NoError(t, d.svc.DeleteAccount(ctx, id))
}

func TestMerchantService_Balance(t *testing.T) {
	d := setupMerchantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()

	d.merchantRepo.EXPECT().GetByID(ctx, id).Return(&domain.Merchant{ID: id}, nil)
	d.merchantRepo.EXPECT().Balance(ctx, id).Return(int64(2500), nil)

	minor, formatted, err := d.svc.Balance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), minor)
	assert.Equal(t, "25.00", formatted)
}

func TestMerchantService_ListDepositsAndPayouts(t *testing.T) {
	d := setupMerchantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	merchant := &domain.Merchant{ID: id}

	d.merchantRepo.EXPECT().GetByID(ctx, id).Return(merchant, nil).Times(2)
	d.txRepo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
			require.NotNil(t, params.Type)
			assert.Equal(t, domain.TransactionTypePayIn, *params.Type)
			return []domain.Transaction{{ID: uuid.New()}}, nil
		})
	d.txRepo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
			require.NotNil(t, params.Type)
			assert.Equal(t, domain.TransactionTypePayOut, *params.Type)
			return nil, nil
		})

	deposits, err := d.svc.ListDeposits(ctx, id)
	require.NoError(t, err)
	assert.Len(t, deposits, 1)

	payouts, err := d.svc.ListPayouts(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, payouts)
}

func TestMerchantService_CreateCharge(t *testing.T) {
	d := setupMerchantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	paypal := "payouts@shop.io"
	merchant := &domain.Merchant{ID: id, Name: "Shop", Email: "owner@shop.io", PaypalEmail: &paypal}

	d.merchantRepo.EXPECT().GetByID(ctx, id).Return(merchant, nil)
	d.chargeClient.EXPECT().CreateCharge(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CreateChargeRequest) (*ports.Charge, error) {
			assert.Equal(t, id, req.MerchantID)
			assert.Equal(t, "25.00", req.Amount)
			assert.Equal(t, "USD", req.Currency)
			assert.Equal(t, paypal, req.PayoutEmail)
			return &ports.Charge{Code: "66BEOV2A", HostedURL: "https://commerce.coinbase.com/charges/66BEOV2A"}, nil
		})

	charge, err := d.svc.CreateCharge(ctx, id, "25.00", "USD")
	require.NoError(t, err)
	assert.Equal(t, "66BEOV2A", charge.Code)
}

func TestMerchantService_CreateCharge_InvalidAmount(t *testing.T) {
	d := setupMerchantService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.CreateCharge(context.Background(), uuid.New(), "-1.00", "USD")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestMerchantService_CreateCharge_ProviderDown(t *testing.T) {
	d := setupMerchantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()

	d.merchantRepo.EXPECT().GetByID(ctx, id).Return(&domain.Merchant{ID: id, Email: "o@s.io"}, nil)
	d.chargeClient.EXPECT().CreateCharge(ctx, gomock.Any()).Return(nil, errors.New("coinbase 503"))

	_, err := d.svc.CreateCharge(ctx, id, "25.00", "USD")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 502, appErr.HTTPStatus)
}
