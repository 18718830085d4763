package ports

import (
	"context"
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/domain"

	"github.com/google/uuid"
)

// --- Payment-rail clients ---

// PayoutClient submits fiat payouts to the payout provider.
type PayoutClient interface {
	// SubmitPayout builds a single-item payout batch with a fresh random
	// batch id and submits it. correlationID is attached as the line item's
	// sender_item_id so the payout-completed webhook can be matched back to
	// the merchant. amount is a decimal string in major units ("25.00").
	SubmitPayout(ctx context.Context, currency, amount, destinationEmail, correlationID string) (*PayoutResult, error)
}

// PayoutResult is the provider's acknowledgement of a submitted batch.
type PayoutResult struct {
	BatchID     string
	BatchStatus string
}

// PayoutSignature carries the transmission headers of a payout webhook.
type PayoutSignature struct {
	AuthAlgo         string
	CertURL          string
	TransmissionID   string
	TransmissionSig  string
	TransmissionTime string
}

// PayoutWebhookVerifier authenticates payout-provider webhooks via the
// provider's verify-webhook-signature endpoint.
type PayoutWebhookVerifier interface {
	VerifyWebhookSignature(ctx context.Context, sig PayoutSignature, rawBody []byte) (bool, error)
}

// ChargeClient creates crypto charges with the crypto-payment provider.
type ChargeClient interface {
	CreateCharge(ctx context.Context, req CreateChargeRequest) (*Charge, error)
}

// CreateChargeRequest holds the inputs for a fixed-price charge. MerchantID
// and PayoutEmail travel in the charge metadata and come back in the
// confirmation webhook.
type CreateChargeRequest struct {
	MerchantID  uuid.UUID
	Name        string
	PayoutEmail string
	Amount      string
	Currency    string
}

// Charge is the provider's view of a created charge.
type Charge struct {
	Code      string
	HostedURL string
	ExpiresAt time.Time
}

// ChargeWebhookVerifier authenticates crypto-confirmation webhooks by
// checking the provider's HMAC signature over the raw body.
type ChargeWebhookVerifier interface {
	VerifySignature(rawBody []byte, signatureHeader string) bool
}

// RateClient looks up crypto exchange rates from the pricing API.
type RateClient interface {
	GetRate(ctx context.Context, asset string) (*ExchangeRate, error)
}

// ExchangeRate is a point-in-time USD quote for a crypto asset.
type ExchangeRate struct {
	Asset    string  `json:"asset"`
	Name     string  `json:"name"`
	PriceUSD float64 `json:"price_usd"`
}

// --- Caching ---

// Cache is a byte-value cache with TTL (Redis-backed in production).
// Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// --- Core services ---

// ChargeConfirmation is the validated shape of a crypto charge-confirmed
// event, decoded once at the boundary.
type ChargeConfirmation struct {
	MerchantID        uuid.UUID
	Amount            string // Decimal major units, e.g. "25.00"
	Currency          string
	SenderAddress     string
	PayoutEmail       string
	ExternalReference string
	OccurredAt        time.Time
}

// PayoutConfirmation is the validated shape of a payout-completed event.
// CorrelationID is the raw sender_item_id, set at payout submission.
type PayoutConfirmation struct {
	CorrelationID     string
	Amount            string
	Currency          string
	ExternalReference string
	OccurredAt        time.Time
}

// SettlementService is the orchestrator shared by both webhook channels:
// resolve merchant, idempotent ledger write, and (for the inbound leg) the
// follow-on payout submission. Authenticity verification happens before
// either method is invoked.
type SettlementService interface {
	ProcessChargeConfirmed(ctx context.Context, event ChargeConfirmation) (*domain.Transaction, error)
	ProcessPayoutCompleted(ctx context.Context, event PayoutConfirmation) (*domain.Transaction, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(merchantID uuid.UUID, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	MerchantID uuid.UUID
	Email      string
}

// AuthService defines registration and login.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Merchant, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error)
}

// RegisterRequest holds validated registration input.
type RegisterRequest struct {
	Name        string
	Email       string
	Password    string
	PaypalEmail *string
}

// MerchantService defines merchant profile and history operations.
type MerchantService interface {
	GetProfile(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error)
	UpdateProfile(ctx context.Context, merchantID uuid.UUID, req UpdateMerchantRequest) (*domain.Merchant, error)
	// DeleteAccount refuses to delete a merchant with recorded transactions
	// so ledger rows are never orphaned.
	DeleteAccount(ctx context.Context, merchantID uuid.UUID) error
	Balance(ctx context.Context, merchantID uuid.UUID) (int64, string, error)
	ListDeposits(ctx context.Context, merchantID uuid.UUID) ([]domain.Transaction, error)
	ListPayouts(ctx context.Context, merchantID uuid.UUID) ([]domain.Transaction, error)
	CreateCharge(ctx context.Context, merchantID uuid.UUID, amount, currency string) (*Charge, error)
}

// UpdateMerchantRequest holds the mutable merchant profile fields.
type UpdateMerchantRequest struct {
	Name        *string
	Email       *string
	PaypalEmail *string
}

// RateService exposes the cached exchange-rate lookup.
type RateService interface {
	GetExchangeRate(ctx context.Context, asset string) (*ExchangeRate, error)
}
