package service

import (
	"context"
	"fmt"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/domain"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"
	"github.com/CactusTune/Cryptocurrency-POS-API/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MerchantServiceImpl implements ports.MerchantService.
type MerchantServiceImpl struct {
	merchantRepo ports.MerchantRepository
	txRepo       ports.TransactionRepository
	chargeClient ports.ChargeClient
	log          zerolog.Logger
}

// NewMerchantService creates a new MerchantServiceImpl.
func NewMerchantService(
	merchantRepo ports.MerchantRepository,
	txRepo ports.TransactionRepository,
	chargeClient ports.ChargeClient,
	log zerolog.Logger,
) *MerchantServiceImpl {
	return &MerchantServiceImpl{
		merchantRepo: merchantRepo,
		txRepo:       txRepo,
		chargeClient: chargeClient,
		log:          log,
	}
}

// GetProfile fetches the merchant profile.
func (s *MerchantServiceImpl) GetProfile(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}
	return merchant, nil
}

// UpdateProfile applies the provided profile fields.
func (s *MerchantServiceImpl) UpdateProfile(ctx context.Context, merchantID uuid.UUID, req ports.UpdateMerchantRequest) (*domain.Merchant, error) {
	merchant, err := s.GetProfile(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != merchant.Email {
		existing, err := s.merchantRepo.GetByEmail(ctx, *req.Email)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
		}
		if existing != nil {
			return nil, apperror.ErrMerchantExists()
		}
		merchant.Email = *req.Email
	}
	if req.Name != nil {
		merchant.Name = *req.Name
	}
	if req.PaypalEmail != nil {
		merchant.PaypalEmail = req.PaypalEmail
	}

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update merchant: %w", err))
	}
	return merchant, nil
}

// DeleteAccount removes a merchant. Deletion is refused while the ledger
// holds transactions for the merchant, so history is never orphaned.
func (s *MerchantServiceImpl) DeleteAccount(ctx context.Context, merchantID uuid.UUID) error {
	merchant, err := s.GetProfile(ctx, merchantID)
	if err != nil {
		return err
	}

	count, err := s.txRepo.CountByMerchant(ctx, merchant.ID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("count transactions: %w", err))
	}
	if count > 0 {
		return apperror.ErrMerchantHasTransactions()
	}

	if err := s.merchantRepo.Delete(ctx, merchant.ID); err != nil {
		return apperror.InternalError(fmt.Errorf("delete merchant: %w", err))
	}

	s.log.Info().Str("merchant_id", merchant.ID.String()).Msg("merchant account deleted")
	return nil
}

// Balance derives the merchant balance from the ledger, in minor units.
func (s *MerchantServiceImpl) Balance(ctx context.Context, merchantID uuid.UUID) (int64, string, error) {
	if _, err := s.GetProfile(ctx, merchantID); err != nil {
		return 0, "", err
	}

	balance, err := s.merchantRepo.Balance(ctx, merchantID)
	if err != nil {
		return 0, "", apperror.InternalError(fmt.Errorf("merchant balance: %w", err))
	}
	return balance, domain.FormatMinorUnits(balance), nil
}

// ListDeposits returns the merchant's PAY_IN history in insertion order.
func (s *MerchantServiceImpl) ListDeposits(ctx context.Context, merchantID uuid.UUID) ([]domain.Transaction, error) {
	return s.listByType(ctx, merchantID, domain.TransactionTypePayIn)
}

// ListPayouts returns the merchant's PAY_OUT history in insertion order.
func (s *MerchantServiceImpl) ListPayouts(ctx context.Context, merchantID uuid.UUID) ([]domain.Transaction, error) {
	return s.listByType(ctx, merchantID, domain.TransactionTypePayOut)
}

func (s *MerchantServiceImpl) listByType(ctx context.Context, merchantID uuid.UUID, txType domain.TransactionType) ([]domain.Transaction, error) {
	if _, err := s.GetProfile(ctx, merchantID); err != nil {
		return nil, err
	}

	txns, err := s.txRepo.List(ctx, ports.TransactionListParams{
		MerchantID: merchantID,
		Type:       &txType,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// CreateCharge opens a crypto charge for the merchant. The merchant id and
// payout email travel in the charge metadata so the confirmation webhook can
// settle without any extra lookups.
func (s *MerchantServiceImpl) CreateCharge(ctx context.Context, merchantID uuid.UUID, amount, currency string) (*ports.Charge, error) {
	if _, err := domain.ParseMinorUnits(amount); err != nil {
		return nil, apperror.ErrInvalidAmount()
	}
	if currency == "" {
		return nil, apperror.Validation("currency is required")
	}

	merchant, err := s.GetProfile(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	payoutEmail := merchant.Email
	if merchant.HasPayoutDestination() {
		payoutEmail = *merchant.PaypalEmail
	}

	charge, err := s.chargeClient.CreateCharge(ctx, ports.CreateChargeRequest{
		MerchantID:  merchant.ID,
		Name:        merchant.Name,
		PayoutEmail: payoutEmail,
		Amount:      amount,
		Currency:    currency,
	})
	if err != nil {
		return nil, apperror.ErrProvider("charge creation failed", err)
	}

	s.log.Info().
		Str("merchant_id", merchant.ID.String()).
		Str("charge_code", charge.Code).
		Msg("crypto charge created")

	return charge, nil
}
