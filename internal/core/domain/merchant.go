package domain

import (
	"time"

	"github.com/google/uuid"
)

// Merchant represents a registered merchant in the system. PaypalEmail is the
// fiat payout destination; it stays unset until the merchant configures it.
// The account balance is not stored here; it is derived from the transaction
// log, which is the authoritative record.
type Merchant struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose
	PaypalEmail  *string   `json:"paypal_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPayoutDestination reports whether a payout destination is configured.
func (m *Merchant) HasPayoutDestination() bool {
	return m.PaypalEmail != nil && *m.PaypalEmail != ""
}
