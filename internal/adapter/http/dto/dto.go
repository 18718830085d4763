package dto

import (
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/domain"
)

// RegisterRequest is the request body for merchant registration.
type RegisterRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Email       string  `json:"email" binding:"required,email,max=255"`
	Password    string  `json:"password" binding:"required,min=8,max=128"`
	PaypalEmail *string `json:"paypal_email,omitempty" binding:"omitempty,email"`
}

// LoginRequest is the request body for merchant login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// UpdateMerchantRequest is the request body for profile updates. All fields
// are optional; absent fields stay untouched.
type UpdateMerchantRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email,max=255"`
	PaypalEmail *string `json:"paypal_email,omitempty" binding:"omitempty,email"`
}

// MerchantResponse is the public view of a merchant.
type MerchantResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	PaypalEmail *string `json:"paypal_email,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// FromMerchant maps a domain merchant onto the response shape.
func FromMerchant(m *domain.Merchant) MerchantResponse {
	return MerchantResponse{
		ID:          m.ID.String(),
		Name:        m.Name,
		Email:       m.Email,
		PaypalEmail: m.PaypalEmail,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}

// ChargeRequest is the request body for opening a crypto charge.
type ChargeRequest struct {
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency" binding:"required,currency_code"`
}

// ChargeResponse is the response body for a created charge.
type ChargeResponse struct {
	Code      string `json:"code"`
	HostedURL string `json:"hosted_url"`
	ExpiresAt string `json:"expires_at"`
}

// BalanceResponse is the response for the derived merchant balance.
type BalanceResponse struct {
	Balance   int64  `json:"balance"` // Minor units
	Formatted string `json:"formatted"`
}

// ExchangeRateResponse is the response for an exchange-rate lookup.
type ExchangeRateResponse struct {
	Asset    string  `json:"asset"`
	CoinName string  `json:"coin_name"`
	USDValue float64 `json:"usd_value"`
}

// TransactionResponse is the public view of a ledger entry.
type TransactionResponse struct {
	ID                string  `json:"id"`
	Amount            int64   `json:"amount"`
	Currency          string  `json:"currency"`
	Type              string  `json:"type"`
	Status            string  `json:"status"`
	SenderAddress     *string `json:"sender_address,omitempty"`
	ExternalReference string  `json:"external_reference"`
	OccurredAt        string  `json:"occurred_at"`
}

// FromTransaction maps a domain transaction onto the response shape.
func FromTransaction(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                t.ID.String(),
		Amount:            t.Amount,
		Currency:          t.Currency,
		Type:              string(t.Type),
		Status:            string(t.Status),
		SenderAddress:     t.SenderAddress,
		ExternalReference: t.ExternalReference,
		OccurredAt:        t.OccurredAt.Format(time.RFC3339),
	}
}

// FromTransactions maps a slice of ledger entries.
func FromTransactions(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, FromTransaction(&txns[i]))
	}
	return out
}
