package handler

import (
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/coinbase"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/http/dto"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/paypal"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/apperror"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WebhookHandler receives the two settlement channels: crypto charge
// confirmations and PayPal payout completions. Both verify authenticity
// before any ledger write.
type WebhookHandler struct {
	settlementSvc  ports.SettlementService
	chargeVerifier ports.ChargeWebhookVerifier
	payoutVerifier ports.PayoutWebhookVerifier
	log            zerolog.Logger
}

func NewWebhookHandler(
	settlementSvc ports.SettlementService,
	chargeVerifier ports.ChargeWebhookVerifier,
	payoutVerifier ports.PayoutWebhookVerifier,
	log zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		settlementSvc:  settlementSvc,
		chargeVerifier: chargeVerifier,
		payoutVerifier: payoutVerifier,
		log:            log,
	}
}

// HandleChargeEvent processes POST /webhooks/crypto.
func (h *WebhookHandler) HandleChargeEvent(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		response.Error(c, apperror.Validation("unable to read request body"))
		return
	}

	signature := c.GetHeader(coinbase.SignatureHeader)
	if !h.chargeVerifier.VerifySignature(rawBody, signature) {
		h.log.Warn().Str("remote", c.ClientIP()).Msg("crypto webhook signature rejected")
		response.Error(c, apperror.ErrWebhookSignature())
		return
	}

	envelope, err := coinbase.ParseEnvelope(rawBody)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if envelope.Event.Type != coinbase.EventTypeChargeConfirmed {
		h.log.Debug().Str("event_type", envelope.Event.Type).Msg("ignoring crypto event")
		response.OK(c, gin.H{"status": "ignored"})
		return
	}

	conf, err := envelope.Event.Confirmation()
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.settlementSvc.ProcessChargeConfirmed(c.Request.Context(), conf)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromTransaction(txn))
}

// HandlePayoutEvent processes POST /webhooks/payout.
func (h *WebhookHandler) HandlePayoutEvent(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		response.Error(c, apperror.Validation("unable to read request body"))
		return
	}

	sig := paypal.SignatureFromHeaders(c.Request.Header)
	verified, err := h.payoutVerifier.VerifyWebhookSignature(c.Request.Context(), sig, rawBody)
	if err != nil {
		response.Error(c, apperror.ErrProvider("payout webhook verification unavailable", err))
		return
	}
	if !verified {
		h.log.Warn().Str("transmission_id", sig.TransmissionID).Msg("payout webhook signature rejected")
		response.Error(c, apperror.ErrWebhookSignature())
		return
	}

	event, err := paypal.ParseEvent(rawBody)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if !event.IsPayoutCompletion() {
		h.log.Debug().Str("event_type", event.EventType).Msg("ignoring payout event")
		response.OK(c, gin.H{"status": "ignored"})
		return
	}

	conf, err := event.Confirmation()
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.settlementSvc.ProcessPayoutCompleted(c.Request.Context(), conf)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransaction(txn))
}
