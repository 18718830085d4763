package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports/mocks"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const rateTTL = 5 * time.Minute

func setupRateService(t *testing.T) (*RateServiceImpl, *mocks.MockRateClient, *mocks.MockCache, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	rateClient := mocks.NewMockRateClient(ctrl)
	cache := mocks.NewMockCache(ctrl)
	svc := NewRateService(rateClient, cache, rateTTL, zerolog.Nop())
	return svc, rateClient, cache, ctrl
}

func TestRateService_CacheMiss(t *testing.T) {
	svc, rateClient, cache, ctrl := setupRateService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	quote := &ports.ExchangeRate{Asset: "BTC", Name: "Bitcoin", PriceUSD: 65000.25}

	cache.EXPECT().Get(ctx, "BTC").Return(nil, nil)
	rateClient.EXPECT().GetRate(ctx, "BTC").Return(quote, nil)
	cache.EXPECT().Set(ctx, "BTC", gomock.Any(), rateTTL).Return(nil)

	rate, err := svc.GetExchangeRate(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, 65000.25, rate.PriceUSD)
}

func TestRateService_CacheHit(t *testing.T) {
	svc, _, cache, ctrl := setupRateService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	payload, _ := json.Marshal(ports.ExchangeRate{Asset: "ETH", Name: "Ethereum", PriceUSD: 3200.5})

	cache.EXPECT().Get(ctx, "ETH").Return(payload, nil)
	// No API call.

	rate, err := svc.GetExchangeRate(ctx, "ETH")
	require.NoError(t, err)
	assert.Equal(t, "Ethereum", rate.Name)
}

func TestRateService_ProviderFailure(t *testing.T) {
	svc, rateClient, cache, ctrl := setupRateService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	cache.EXPECT().Get(ctx, "BTC").Return(nil, nil)
	rateClient.EXPECT().GetRate(ctx, "BTC").Return(nil, errors.New("coinapi down"))

	_, err := svc.GetExchangeRate(ctx, "BTC")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 502, appErr.HTTPStatus)
}

func TestRateService_EmptyAsset(t *testing.T) {
	svc, _, _, ctrl := setupRateService(t)
	defer ctrl.Finish()

	_, err := svc.GetExchangeRate(context.Background(), "")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestRateService_CacheFailureFallsThrough(t *testing.T) {
	svc, rateClient, cache, ctrl := setupRateService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	quote := &ports.ExchangeRate{Asset: "BTC", PriceUSD: 65000}

	cache.EXPECT().Get(ctx, "BTC").Return(nil, errors.New("redis down"))
	rateClient.EXPECT().GetRate(ctx, "BTC").Return(quote, nil)
	cache.EXPECT().Set(ctx, "BTC", gomock.Any(), rateTTL).Return(errors.New("redis down"))

	rate, err := svc.GetExchangeRate(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, float64(65000), rate.PriceUSD)
}
