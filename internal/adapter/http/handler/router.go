package handler

import (
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/http/middleware"
	redisStore "github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/storage/redis"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxRequestBody = 1 << 20 // 1 MiB

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	MerchantSvc    ports.MerchantService
	RateSvc        ports.RateService
	SettlementSvc  ports.SettlementService
	TokenSvc       ports.TokenService
	ChargeVerifier ports.ChargeWebhookVerifier
	PayoutVerifier ports.PayoutWebhookVerifier
	RateLimitStore *redisStore.RateLimitStore
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter wires all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.MaxBodySize(maxRequestBody))

	authHandler := NewAuthHandler(deps.AuthSvc, deps.Logger)
	merchantHandler := NewMerchantHandler(deps.MerchantSvc, deps.Logger)
	paymentHandler := NewPaymentHandler(deps.MerchantSvc, deps.RateSvc, deps.Logger)
	webhookHandler := NewWebhookHandler(deps.SettlementSvc, deps.ChargeVerifier, deps.PayoutVerifier, deps.Logger)

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	router.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Provider callbacks stay outside JWT auth and rate limiting. They are
	// authenticated by signature verification inside the handlers.
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/crypto", webhookHandler.HandleChargeEvent)
		webhooks.POST("/payout", webhookHandler.HandlePayoutEvent)
	}

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", rl("auth_register"), authHandler.Register)
			auth.POST("/login", rl("auth_login"), authHandler.Login)
		}

		merchants := v1.Group("/merchants", middleware.JWTAuth(deps.TokenSvc, deps.Logger), rl("merchant"))
		{
			merchants.GET("/me", merchantHandler.GetProfile)
			merchants.PATCH("/me", merchantHandler.UpdateProfile)
			merchants.DELETE("/me", merchantHandler.DeleteAccount)
			merchants.GET("/me/balance", merchantHandler.GetBalance)
			merchants.GET("/me/deposits", merchantHandler.ListDeposits)
			merchants.GET("/me/payouts", merchantHandler.ListPayouts)
		}

		payments := v1.Group("/payments", middleware.JWTAuth(deps.TokenSvc, deps.Logger), rl("payments"))
		{
			payments.POST("/charges", paymentHandler.CreateCharge)
			payments.GET("/exchange-rate/:asset", paymentHandler.GetExchangeRate)
		}
	}

	return router
}
