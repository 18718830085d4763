package handler

import (
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/http/dto"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/http/middleware"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/apperror"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MerchantHandler handles the authenticated merchant surface: profile,
// balance, and transaction history.
type MerchantHandler struct {
	merchantSvc ports.MerchantService
	log         zerolog.Logger
}

func NewMerchantHandler(merchantSvc ports.MerchantService, log zerolog.Logger) *MerchantHandler {
	return &MerchantHandler{merchantSvc: merchantSvc, log: log}
}

// merchantID extracts the authenticated merchant id set by the JWT middleware.
func merchantID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(middleware.CtxMerchantID)
	if !exists {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	return id, true
}

// GetProfile processes GET /api/v1/merchants/me.
func (h *MerchantHandler) GetProfile(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}

	merchant, err := h.merchantSvc.GetProfile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromMerchant(merchant))
}

// UpdateProfile processes PATCH /api/v1/merchants/me.
func (h *MerchantHandler) UpdateProfile(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}

	var req dto.UpdateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	merchant, err := h.merchantSvc.UpdateProfile(c.Request.Context(), id, ports.UpdateMerchantRequest{
		Name:        req.Name,
		Email:       req.Email,
		PaypalEmail: req.PaypalEmail,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromMerchant(merchant))
}

// DeleteAccount processes DELETE /api/v1/merchants/me.
func (h *MerchantHandler) DeleteAccount(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}

	if err := h.merchantSvc.DeleteAccount(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"status": "deleted"})
}

// GetBalance processes GET /api/v1/merchants/me/balance.
func (h *MerchantHandler) GetBalance(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}

	balance, formatted, err := h.merchantSvc.Balance(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: balance, Formatted: formatted})
}

// ListDeposits processes GET /api/v1/merchants/me/deposits.
func (h *MerchantHandler) ListDeposits(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}

	txns, err := h.merchantSvc.ListDeposits(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransactions(txns))
}

// ListPayouts processes GET /api/v1/merchants/me/payouts.
func (h *MerchantHandler) ListPayouts(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}

	txns, err := h.merchantSvc.ListPayouts(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransactions(txns))
}
