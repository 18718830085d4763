package ports

import (
	"context"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/domain"

	"github.com/google/uuid"
)

// MerchantRepository defines persistence operations for merchants.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *domain.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	GetByEmail(ctx context.Context, email string) (*domain.Merchant, error)
	Update(ctx context.Context, merchant *domain.Merchant) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Balance derives the cached account balance from the transaction log:
	// completed PAY_IN minus completed PAY_OUT, in minor units.
	Balance(ctx context.Context, merchantID uuid.UUID) (int64, error)
}

// TransactionRepository defines persistence operations for the ledger.
type TransactionRepository interface {
	// Record appends a transaction. The write is idempotent on
	// (merchant_id, type, external_reference): when an entry already exists
	// the stored row is returned with created=false and nothing is written.
	// Uniqueness is enforced by the store, atomically under concurrent
	// delivery of the same event.
	Record(ctx context.Context, transaction *domain.Transaction) (stored *domain.Transaction, created bool, err error)
	GetByExternalReference(ctx context.Context, merchantID uuid.UUID, txType domain.TransactionType, externalReference string) (*domain.Transaction, error)
	// List returns transactions in insertion order.
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, error)
	CountByMerchant(ctx context.Context, merchantID uuid.UUID) (int64, error)
}

// TransactionListParams holds optional filters for listing ledger entries.
type TransactionListParams struct {
	MerchantID uuid.UUID
	Type       *domain.TransactionType
	Status     *domain.TransactionStatus
}
