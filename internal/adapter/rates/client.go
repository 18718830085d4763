// Package rates looks up crypto exchange rates from the CoinAPI assets
// endpoint.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/CactusTune/Cryptocurrency-POS-API/config"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"

	"github.com/rs/zerolog"
)

// Client implements ports.RateClient.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a CoinAPI client.
func NewClient(cfg config.RatesConfig, log zerolog.Logger) *Client {
	return &Client{
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

type asset struct {
	AssetID  string  `json:"asset_id"`
	Name     string  `json:"name"`
	PriceUSD float64 `json:"price_usd"`
}

// GetRate fetches the current USD quote for a crypto asset.
func (c *Client) GetRate(ctx context.Context, assetID string) (*ports.ExchangeRate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/"+assetID, nil)
	if err != nil {
		return nil, fmt.Errorf("build rate request: %w", err)
	}
	req.Header.Set("X-CoinAPI-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch rate: status %d: %s", resp.StatusCode, raw)
	}

	var assets []asset
	if err := json.NewDecoder(resp.Body).Decode(&assets); err != nil {
		return nil, fmt.Errorf("decode rate response: %w", err)
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("no rate data for asset %q", assetID)
	}

	return &ports.ExchangeRate{
		Asset:    assets[0].AssetID,
		Name:     assets[0].Name,
		PriceUSD: assets[0].PriceUSD,
	}, nil
}
