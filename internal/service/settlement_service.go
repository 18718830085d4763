package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/domain"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const settlementTTL = 24 * time.Hour

// Merchants are paid out in USD regardless of the crypto asset that funded
// the charge; the provider settles the charge into USD before we see it.
const payoutCurrency = "USD"

// SettlementServiceImpl implements ports.SettlementService. Both webhook
// channels run the same sequence: validate the event, resolve the merchant,
// append the ledger entry idempotently, then (for the inbound leg only)
// submit the fiat payout. The Redis cache is a fast path for redeliveries;
// the database unique constraint is what actually guarantees at-most-one
// ledger entry per event.
type SettlementServiceImpl struct {
	merchantRepo ports.MerchantRepository
	txRepo       ports.TransactionRepository
	cache        ports.Cache
	payoutClient ports.PayoutClient
	log          zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	merchantRepo ports.MerchantRepository,
	txRepo ports.TransactionRepository,
	cache ports.Cache,
	payoutClient ports.PayoutClient,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		merchantRepo: merchantRepo,
		txRepo:       txRepo,
		cache:        cache,
		payoutClient: payoutClient,
		log:          log,
	}
}

// ProcessChargeConfirmed records a confirmed crypto payment as a PAY_IN and
// submits the fiat payout to the merchant. The payout is submitted only on
// the delivery that actually inserted the ledger row, so redelivered events
// can never trigger a second payout.
func (s *SettlementServiceImpl) ProcessChargeConfirmed(ctx context.Context, event ports.ChargeConfirmation) (*domain.Transaction, error) {
	if event.ExternalReference == "" {
		return nil, apperror.Validation("event missing external reference")
	}
	if event.Currency == "" {
		return nil, apperror.Validation("event missing currency")
	}

	amount, err := domain.ParseMinorUnits(event.Amount)
	if err != nil {
		return nil, apperror.ErrInvalidAmount()
	}

	merchant, err := s.merchantRepo.GetByID(ctx, event.MerchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}

	key := domain.BuildSettlementKey(event.MerchantID, domain.TransactionTypePayIn, event.ExternalReference)

	// Fast path: already settled, skip the ledger round-trip.
	if cached := s.cachedSettlement(ctx, key); cached != nil {
		return cached, nil
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:                uuid.New(),
		MerchantID:        merchant.ID,
		Amount:            amount,
		Currency:          event.Currency,
		Type:              domain.TransactionTypePayIn,
		Status:            domain.TransactionStatusCompleted,
		ExternalReference: event.ExternalReference,
		OccurredAt:        event.OccurredAt,
		CreatedAt:         now,
	}
	if event.SenderAddress != "" {
		txn.SenderAddress = &event.SenderAddress
	}

	stored, created, err := s.txRepo.Record(ctx, txn)
	if err != nil {
		return nil, apperror.ErrPersistence(err)
	}
	s.cacheSettlement(ctx, key, stored)

	if !created {
		s.log.Info().
			Str("external_reference", event.ExternalReference).
			Str("merchant_id", merchant.ID.String()).
			Msg("duplicate charge confirmation, ledger entry already recorded")
		return stored, nil
	}

	destination := event.PayoutEmail
	if merchant.HasPayoutDestination() {
		destination = *merchant.PaypalEmail
	}
	if destination == "" {
		s.log.Warn().
			Str("merchant_id", merchant.ID.String()).
			Str("tx_id", stored.ID.String()).
			Msg("no payout destination configured, funds recorded without payout")
		return stored, nil
	}

	result, err := s.payoutClient.SubmitPayout(ctx, payoutCurrency, domain.FormatMinorUnits(stored.Amount), destination, merchant.ID.String())
	if err != nil {
		// The PAY_IN is already committed; surface the provider failure so
		// the source retries delivery, and answer the retry from the ledger.
		return nil, apperror.ErrProvider("payout submission failed", err)
	}

	s.log.Info().
		Str("tx_id", stored.ID.String()).
		Str("merchant_id", merchant.ID.String()).
		Int64("amount", stored.Amount).
		Str("payout_batch_id", result.BatchID).
		Msg("crypto payment settled and payout submitted")

	return stored, nil
}

// ProcessPayoutCompleted records a provider-confirmed payout as a PAY_OUT.
// The correlation id set at payout submission identifies the merchant.
func (s *SettlementServiceImpl) ProcessPayoutCompleted(ctx context.Context, event ports.PayoutConfirmation) (*domain.Transaction, error) {
	if event.ExternalReference == "" {
		return nil, apperror.Validation("event missing external reference")
	}

	merchantID, err := uuid.Parse(event.CorrelationID)
	if err != nil {
		return nil, apperror.Validation("event carries no recognizable merchant correlation id")
	}

	amount, err := domain.ParseMinorUnits(event.Amount)
	if err != nil {
		return nil, apperror.ErrInvalidAmount()
	}

	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}

	key := domain.BuildSettlementKey(merchantID, domain.TransactionTypePayOut, event.ExternalReference)

	if cached := s.cachedSettlement(ctx, key); cached != nil {
		return cached, nil
	}

	txn := &domain.Transaction{
		ID:                uuid.New(),
		MerchantID:        merchant.ID,
		Amount:            amount,
		Currency:          event.Currency,
		Type:              domain.TransactionTypePayOut,
		Status:            domain.TransactionStatusCompleted,
		ExternalReference: event.ExternalReference,
		OccurredAt:        event.OccurredAt,
		CreatedAt:         time.Now().UTC(),
	}

	stored, created, err := s.txRepo.Record(ctx, txn)
	if err != nil {
		return nil, apperror.ErrPersistence(err)
	}
	s.cacheSettlement(ctx, key, stored)

	if !created {
		s.log.Info().
			Str("external_reference", event.ExternalReference).
			Str("merchant_id", merchant.ID.String()).
			Msg("duplicate payout confirmation, ledger entry already recorded")
	} else {
		s.log.Info().
			Str("tx_id", stored.ID.String()).
			Str("merchant_id", merchant.ID.String()).
			Int64("amount", stored.Amount).
			Msg("payout completion recorded")
	}

	return stored, nil
}

// cachedSettlement returns the cached transaction for a settlement key, or
// nil. Cache failures degrade to the database path.
func (s *SettlementServiceImpl) cachedSettlement(ctx context.Context, key string) *domain.Transaction {
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("settlement cache check failed, falling through to DB")
		return nil
	}
	if cached == nil {
		return nil
	}

	var txn domain.Transaction
	if err := json.Unmarshal(cached, &txn); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("corrupt settlement cache entry, falling through to DB")
		return nil
	}
	return &txn
}

// cacheSettlement stores a settled transaction, best-effort.
func (s *SettlementServiceImpl) cacheSettlement(ctx context.Context, key string, txn *domain.Transaction) {
	payload, err := json.Marshal(txn)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, settlementTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache settlement")
	}
}
