// Package paypal talks to the PayPal REST API: payout batch submission and
// webhook signature verification via the verify-webhook-signature endpoint.
package paypal

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/config"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"

	"github.com/rs/zerolog"
)

// tokenSkew is shaved off the reported token lifetime so a token is never
// used right at its expiry boundary.
const tokenSkew = 60 * time.Second

// Client implements ports.PayoutClient and ports.PayoutWebhookVerifier.
type Client struct {
	apiURL       string
	clientID     string
	clientSecret string
	webhookID    string
	httpClient   *http.Client
	log          zerolog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a PayPal API client.
func NewClient(cfg config.PayPalConfig, log zerolog.Logger) *Client {
	return &Client{
		apiURL:       cfg.APIURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		webhookID:    cfg.WebhookID,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		log:          log,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// getAccessToken returns a cached OAuth token, fetching a fresh one via the
// client-credentials grant when the cache is empty or near expiry.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch oauth token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("fetch oauth token: status %d: %s", resp.StatusCode, raw)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("decode oauth token: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("oauth token response missing access_token")
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenSkew)
	return c.accessToken, nil
}

type payoutAmount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type payoutItem struct {
	Note         string       `json:"note"`
	Amount       payoutAmount `json:"amount"`
	Receiver     string       `json:"receiver"`
	SenderItemID string       `json:"sender_item_id"`
}

type senderBatchHeader struct {
	RecipientType string `json:"recipient_type"`
	EmailMessage  string `json:"email_message"`
	Note          string `json:"note"`
	SenderBatchID string `json:"sender_batch_id"`
	EmailSubject  string `json:"email_subject"`
}

type createPayoutRequest struct {
	SenderBatchHeader senderBatchHeader `json:"sender_batch_header"`
	Items             []payoutItem      `json:"items"`
}

type payoutBatchHeader struct {
	PayoutBatchID string `json:"payout_batch_id"`
	BatchStatus   string `json:"batch_status"`
}

type createPayoutResponse struct {
	BatchHeader payoutBatchHeader `json:"batch_header"`
}

// SubmitPayout submits a single-item payout batch. correlationID travels as
// the item's sender_item_id; the payout-completed webhook echoes it back so
// the settlement can be tied to the merchant.
func (c *Client) SubmitPayout(ctx context.Context, currency, amount, destinationEmail, correlationID string) (*ports.PayoutResult, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	batchID, err := randomHex(8)
	if err != nil {
		return nil, fmt.Errorf("generate batch id: %w", err)
	}

	body := createPayoutRequest{
		SenderBatchHeader: senderBatchHeader{
			RecipientType: "EMAIL",
			EmailMessage:  "Your crypto payment has been settled",
			Note:          "Merchant settlement payout",
			SenderBatchID: batchID,
			EmailSubject:  "You have received a payout",
		},
		Items: []payoutItem{{
			Note:         fmt.Sprintf("Your %s %s payout", currency, amount),
			Amount:       payoutAmount{Currency: currency, Value: amount},
			Receiver:     destinationEmail,
			SenderItemID: correlationID,
		}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal payout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiURL+"/v1/payments/payouts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build payout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit payout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("submit payout: status %d: %s", resp.StatusCode, raw)
	}

	var out createPayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode payout response: %w", err)
	}

	c.log.Info().
		Str("batch_id", out.BatchHeader.PayoutBatchID).
		Str("batch_status", out.BatchHeader.BatchStatus).
		Str("correlation_id", correlationID).
		Msg("PayPal payout submitted")

	return &ports.PayoutResult{
		BatchID:     out.BatchHeader.PayoutBatchID,
		BatchStatus: out.BatchHeader.BatchStatus,
	}, nil
}

type verifySignatureRequest struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type verifySignatureResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// VerifyWebhookSignature asks the provider whether a webhook delivery is
// genuine. Only verification_status == "SUCCESS" authenticates; any other
// answer means the delivery must be rejected.
func (c *Client) VerifyWebhookSignature(ctx context.Context, sig ports.PayoutSignature, rawBody []byte) (bool, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return false, err
	}

	body := verifySignatureRequest{
		AuthAlgo:         sig.AuthAlgo,
		CertURL:          sig.CertURL,
		TransmissionID:   sig.TransmissionID,
		TransmissionSig:  sig.TransmissionSig,
		TransmissionTime: sig.TransmissionTime,
		WebhookID:        c.webhookID,
		WebhookEvent:     json.RawMessage(rawBody),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiURL+"/v1/notifications/verify-webhook-signature", bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify webhook signature: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, fmt.Errorf("verify webhook signature: status %d: %s", resp.StatusCode, raw)
	}

	var out verifySignatureResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode verify response: %w", err)
	}

	return out.VerificationStatus == "SUCCESS", nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
