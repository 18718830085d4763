package coinbase

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"

	"github.com/google/uuid"
)

// EventTypeChargeConfirmed is the only event type that settles funds.
const EventTypeChargeConfirmed = "charge:confirmed"

// Envelope is the outer webhook body.
type Envelope struct {
	Event Event `json:"event"`
}

// Event is a Coinbase Commerce webhook event.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData holds the charge details of an event.
type EventData struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	Pricing   Pricing   `json:"pricing"`
	Metadata  Metadata  `json:"metadata"`
	Web3Data  Web3Data  `json:"web3_data"`
}

// Pricing holds the charge pricing block. Settlement is the amount the
// merchant is actually credited with.
type Pricing struct {
	Settlement Money `json:"settlement"`
}

// Money is a provider decimal amount.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Metadata echoes what CreateCharge attached.
type Metadata struct {
	MerchantID string `json:"merchant_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// Web3Data carries on-chain settlement details.
type Web3Data struct {
	SuccessEvents []SuccessEvent `json:"success_events"`
}

// SuccessEvent is one confirmed on-chain transfer.
type SuccessEvent struct {
	Sender string `json:"sender"`
}

// ParseEnvelope decodes a raw webhook body.
func ParseEnvelope(rawBody []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return nil, fmt.Errorf("decode coinbase event: %w", err)
	}
	if env.Event.Type == "" {
		return nil, fmt.Errorf("coinbase event missing type")
	}
	return &env, nil
}

// Confirmation maps a charge:confirmed event onto the settlement input.
// The event id becomes the external reference, so redelivery of the same
// event always carries the same idempotency key.
func (e *Event) Confirmation() (ports.ChargeConfirmation, error) {
	var conf ports.ChargeConfirmation

	if e.Type != EventTypeChargeConfirmed {
		return conf, fmt.Errorf("event type %q is not %s", e.Type, EventTypeChargeConfirmed)
	}
	if e.ID == "" {
		return conf, fmt.Errorf("coinbase event missing id")
	}

	merchantID, err := uuid.Parse(e.Data.Metadata.MerchantID)
	if err != nil {
		return conf, fmt.Errorf("invalid merchant_id in event metadata: %w", err)
	}

	conf = ports.ChargeConfirmation{
		MerchantID:        merchantID,
		Amount:            e.Data.Pricing.Settlement.Amount,
		Currency:          e.Data.Pricing.Settlement.Currency,
		PayoutEmail:       e.Data.Metadata.Email,
		ExternalReference: e.ID,
		OccurredAt:        e.Data.CreatedAt,
	}
	if len(e.Data.Web3Data.SuccessEvents) > 0 {
		conf.SenderAddress = e.Data.Web3Data.SuccessEvents[0].Sender
	}
	return conf, nil
}
