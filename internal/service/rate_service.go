package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/apperror"

	"github.com/rs/zerolog"
)

// RateServiceImpl implements ports.RateService with a read-through cache in
// front of the pricing API.
type RateServiceImpl struct {
	rateClient ports.RateClient
	cache      ports.Cache
	ttl        time.Duration
	log        zerolog.Logger
}

// NewRateService creates a new RateServiceImpl.
func NewRateService(rateClient ports.RateClient, cache ports.Cache, ttl time.Duration, log zerolog.Logger) *RateServiceImpl {
	return &RateServiceImpl{
		rateClient: rateClient,
		cache:      cache,
		ttl:        ttl,
		log:        log,
	}
}

// GetExchangeRate returns the USD quote for a crypto asset, serving from
// cache when a fresh quote is present.
func (s *RateServiceImpl) GetExchangeRate(ctx context.Context, asset string) (*ports.ExchangeRate, error) {
	if asset == "" {
		return nil, apperror.Validation("asset is required")
	}

	cached, err := s.cache.Get(ctx, asset)
	if err != nil {
		s.log.Warn().Err(err).Str("asset", asset).Msg("rate cache check failed, falling through to API")
	}
	if cached != nil {
		var rate ports.ExchangeRate
		if err := json.Unmarshal(cached, &rate); err == nil {
			return &rate, nil
		}
	}

	rate, err := s.rateClient.GetRate(ctx, asset)
	if err != nil {
		return nil, apperror.ErrProvider("exchange rate lookup failed", err)
	}

	if payload, err := json.Marshal(rate); err == nil {
		if err := s.cache.Set(ctx, asset, payload, s.ttl); err != nil {
			s.log.Warn().Err(err).Str("asset", asset).Msg("failed to cache exchange rate")
		}
	}

	return rate, nil
}
