package handler

import (
	"strings"
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/http/dto"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/apperror"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PaymentHandler handles charge creation and exchange-rate lookups.
type PaymentHandler struct {
	merchantSvc ports.MerchantService
	rateSvc     ports.RateService
	log         zerolog.Logger
}

func NewPaymentHandler(merchantSvc ports.MerchantService, rateSvc ports.RateService, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{merchantSvc: merchantSvc, rateSvc: rateSvc, log: log}
}

// CreateCharge processes POST /api/v1/payments/charges.
func (h *PaymentHandler) CreateCharge(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}

	var req dto.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	charge, err := h.merchantSvc.CreateCharge(c.Request.Context(), id, req.Amount, req.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ChargeResponse{
		Code:      charge.Code,
		HostedURL: charge.HostedURL,
		ExpiresAt: charge.ExpiresAt.Format(time.RFC3339),
	})
}

// GetExchangeRate processes GET /api/v1/payments/exchange-rate/:asset.
func (h *PaymentHandler) GetExchangeRate(c *gin.Context) {
	asset := strings.ToUpper(strings.TrimSpace(c.Param("asset")))
	if asset == "" {
		response.Error(c, apperror.Validation("asset is required"))
		return
	}

	rate, err := h.rateSvc.GetExchangeRate(c.Request.Context(), asset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ExchangeRateResponse{
		Asset:    rate.Asset,
		CoinName: rate.Name,
		USDValue: rate.PriceUSD,
	})
}
