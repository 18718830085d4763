package handler

import (
	"net/http"
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/http/dto"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/apperror"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles merchant registration and login.
type AuthHandler struct {
	authSvc ports.AuthService
	log     zerolog.Logger
}

func NewAuthHandler(authSvc ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, log: log}
}

// Register processes POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	merchant, err := h.authSvc.Register(c.Request.Context(), ports.RegisterRequest{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PaypalEmail: req.PaypalEmail,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromMerchant(merchant))
}

// Login processes POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	token, expiry, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{Token: token, Expiry: expiry.Unix()})
}

// HealthCheck returns service health, checking each dependency.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		status := http.StatusOK
		deps := make(map[string]string, len(checkers))

		for _, checker := range checkers {
			if err := checker.Ping(ctx); err != nil {
				deps[checker.Name()] = "unreachable"
				status = http.StatusServiceUnavailable
			} else {
				deps[checker.Name()] = "ok"
			}
		}

		body := gin.H{
			"status":       "healthy",
			"time":         time.Now().UTC().Format(time.RFC3339),
			"dependencies": deps,
		}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		c.JSON(status, body)
	}
}
