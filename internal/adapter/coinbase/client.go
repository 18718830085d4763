// Package coinbase talks to the Coinbase Commerce API: charge creation for
// the payment flow and HMAC verification for the confirmation webhooks.
package coinbase

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/config"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"

	"github.com/rs/zerolog"
)

// SignatureHeader carries the provider's HMAC of the raw webhook body.
const SignatureHeader = "X-CC-Webhook-Signature"

// Client implements ports.ChargeClient and ports.ChargeWebhookVerifier.
type Client struct {
	apiURL        string
	apiKey        string
	webhookSecret string
	httpClient    *http.Client
	log           zerolog.Logger
}

// NewClient creates a Coinbase Commerce client.
func NewClient(cfg config.CoinbaseConfig, log zerolog.Logger) *Client {
	return &Client{
		apiURL:        cfg.APIURL,
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		log:           log,
	}
}

type localPrice struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type chargeMetadata struct {
	MerchantID string `json:"merchant_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

type createChargeRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	PricingType string         `json:"pricing_type"`
	LocalPrice  localPrice     `json:"local_price"`
	Metadata    chargeMetadata `json:"metadata"`
}

type chargeData struct {
	Code      string    `json:"code"`
	HostedURL string    `json:"hosted_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type createChargeResponse struct {
	Data chargeData `json:"data"`
}

// CreateCharge creates a fixed-price charge. The merchant id and payout
// email ride in the charge metadata and come back in the charge:confirmed
// webhook, which is how settlement finds its way back to the merchant.
func (c *Client) CreateCharge(ctx context.Context, req ports.CreateChargeRequest) (*ports.Charge, error) {
	body := createChargeRequest{
		Name:        req.Name,
		Description: fmt.Sprintf("Crypto payment to %s", req.Name),
		PricingType: "fixed_price",
		LocalPrice: localPrice{
			Amount:   req.Amount,
			Currency: req.Currency,
		},
		Metadata: chargeMetadata{
			MerchantID: req.MerchantID.String(),
			Name:       req.Name,
			Email:      req.PayoutEmail,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/charges", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-CC-Api-Key", c.apiKey)
	httpReq.Header.Set("X-CC-Version", "2018-03-22")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("create charge: status %d: %s", resp.StatusCode, raw)
	}

	var out createChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode charge response: %w", err)
	}

	c.log.Info().
		Str("charge_code", out.Data.Code).
		Str("merchant_id", req.MerchantID.String()).
		Msg("Coinbase charge created")

	return &ports.Charge{
		Code:      out.Data.Code,
		HostedURL: out.Data.HostedURL,
		ExpiresAt: out.Data.ExpiresAt,
	}, nil
}

// VerifySignature checks the provider HMAC-SHA256 over the raw body against
// the signature header, in constant time. An empty header never verifies.
func (c *Client) VerifySignature(rawBody []byte, signatureHeader string) bool {
	if signatureHeader == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}
