package paypal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"
)

// Transmission headers attached to every PayPal webhook delivery.
const (
	HeaderAuthAlgo         = "Paypal-Auth-Algo"
	HeaderCertURL          = "Paypal-Cert-Url"
	HeaderTransmissionID   = "Paypal-Transmission-Id"
	HeaderTransmissionSig  = "Paypal-Transmission-Sig"
	HeaderTransmissionTime = "Paypal-Transmission-Time"
)

// SignatureFromHeaders extracts the transmission signature headers.
func SignatureFromHeaders(h http.Header) ports.PayoutSignature {
	return ports.PayoutSignature{
		AuthAlgo:         h.Get(HeaderAuthAlgo),
		CertURL:          h.Get(HeaderCertURL),
		TransmissionID:   h.Get(HeaderTransmissionID),
		TransmissionSig:  h.Get(HeaderTransmissionSig),
		TransmissionTime: h.Get(HeaderTransmissionTime),
	}
}

// Event is a PayPal webhook event body.
type Event struct {
	ID         string    `json:"id"`
	EventType  string    `json:"event_type"`
	CreateTime time.Time `json:"create_time"`
	Resource   Resource  `json:"resource"`
}

// Resource holds the payout item of a payout event.
type Resource struct {
	PayoutItem *PayoutItem `json:"payout_item"`
}

// PayoutItem is the settled payout line item.
type PayoutItem struct {
	Amount       *Amount `json:"amount"`
	SenderItemID string  `json:"sender_item_id"`
}

// Amount is a provider decimal amount.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// ParseEvent decodes a raw webhook body.
func ParseEvent(rawBody []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return nil, fmt.Errorf("decode paypal event: %w", err)
	}
	return &ev, nil
}

// IsPayoutCompletion reports whether the event carries a settled payout
// item. Authentic events of any other shape are acknowledged and ignored.
func (e *Event) IsPayoutCompletion() bool {
	return e.Resource.PayoutItem != nil && e.Resource.PayoutItem.Amount != nil
}

// Confirmation maps a payout event onto the settlement input. The event id
// becomes the external reference; sender_item_id is the correlation id set
// at payout submission.
func (e *Event) Confirmation() (ports.PayoutConfirmation, error) {
	var conf ports.PayoutConfirmation

	if !e.IsPayoutCompletion() {
		return conf, fmt.Errorf("event %q carries no payout item", e.ID)
	}
	if e.ID == "" {
		return conf, fmt.Errorf("paypal event missing id")
	}

	return ports.PayoutConfirmation{
		CorrelationID:     e.Resource.PayoutItem.SenderItemID,
		Amount:            e.Resource.PayoutItem.Amount.Value,
		Currency:          e.Resource.PayoutItem.Amount.Currency,
		ExternalReference: e.ID,
		OccurredAt:        e.CreateTime,
	}, nil
}
