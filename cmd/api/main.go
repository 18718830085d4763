package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/config"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/coinbase"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/http/handler"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/paypal"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/rates"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/storage/postgres"
	redisStore "github.com/CactusTune/Cryptocurrency-POS-API/internal/adapter/storage/redis"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/service"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/logger"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Str("mode", cfg.Server.Mode).Msg("starting crypto pos api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres
	pool, err := postgres.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(pool); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	// Redis
	redisClient, err := redisStore.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer redisClient.Close()

	// Repositories and caches
	merchantRepo := postgres.NewMerchantRepo(pool)
	txRepo := postgres.NewTransactionRepo(pool)
	settlementCache := redisStore.NewSettlementCache(redisClient)
	rateCache := redisStore.NewRateCache(redisClient)
	rateLimitStore := redisStore.NewRateLimitStore(redisClient)

	// Provider clients
	coinbaseClient := coinbase.NewClient(cfg.Coinbase, log)
	paypalClient := paypal.NewClient(cfg.PayPal, log)
	rateClient := rates.NewClient(cfg.Rates, log)

	// Services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	authSvc := service.NewAuthService(merchantRepo, hashSvc, tokenSvc)
	merchantSvc := service.NewMerchantService(merchantRepo, txRepo, coinbaseClient, log)
	rateSvc := service.NewRateService(rateClient, rateCache, cfg.Rates.CacheTTL, log)
	settlementSvc := service.NewSettlementService(merchantRepo, txRepo, settlementCache, paypalClient, log)

	router := handler.SetupRouter(handler.RouterDeps{
		AuthSvc:        authSvc,
		MerchantSvc:    merchantSvc,
		RateSvc:        rateSvc,
		SettlementSvc:  settlementSvc,
		TokenSvc:       tokenSvc,
		ChargeVerifier: coinbaseClient,
		PayoutVerifier: paypalClient,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{
			postgres.NewHealthCheck(pool),
			redisStore.NewHealthCheck(redisClient),
		},
		Logger: log,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
