package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/domain"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Record appends a ledger entry, idempotently on (merchant_id, type,
// external_reference). The unique index makes the insert-or-skip atomic
// under concurrent redelivery of the same event: exactly one delivery
// inserts, the rest hit the conflict and read back the stored row.
func (r *TransactionRepo) Record(ctx context.Context, t *domain.Transaction) (*domain.Transaction, bool, error) {
	query := `INSERT INTO transactions (id, merchant_id, amount, currency, transaction_type, status,
		sender_address, external_reference, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (merchant_id, transaction_type, external_reference) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		t.ID, t.MerchantID, t.Amount, t.Currency, t.Type, t.Status,
		t.SenderAddress, t.ExternalReference, t.OccurredAt, t.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert transaction: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return t, true, nil
	}

	existing, err := r.GetByExternalReference(ctx, t.MerchantID, t.Type, t.ExternalReference)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		// The conflicting row vanished between insert and read. Treat as a
		// store failure so the caller surfaces it and the event is redelivered.
		return nil, false, fmt.Errorf("transaction conflict row not found: %s", t.ExternalReference)
	}
	return existing, false, nil
}

// GetByExternalReference fetches a ledger entry by its idempotency key.
func (r *TransactionRepo) GetByExternalReference(ctx context.Context, merchantID uuid.UUID, txType domain.TransactionType, externalReference string) (*domain.Transaction, error) {
	query := `SELECT id, merchant_id, amount, currency, transaction_type, status,
		sender_address, external_reference, occurred_at, created_at
		FROM transactions
		WHERE merchant_id = $1 AND transaction_type = $2 AND external_reference = $3`

	return r.scanTransaction(r.pool.QueryRow(ctx, query, merchantID, txType, externalReference))
}

// List fetches ledger entries in insertion order with optional filters.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("merchant_id = $%d", argIdx))
	args = append(args, params.MerchantID)
	argIdx++

	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("transaction_type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	query := fmt.Sprintf(`SELECT id, merchant_id, amount, currency, transaction_type, status,
		sender_address, external_reference, occurred_at, created_at
		FROM transactions WHERE %s ORDER BY created_at ASC, id ASC`, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.MerchantID, &t.Amount, &t.Currency, &t.Type, &t.Status,
			&t.SenderAddress, &t.ExternalReference, &t.OccurredAt, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// CountByMerchant counts all ledger entries recorded for a merchant.
func (r *TransactionRepo) CountByMerchant(ctx context.Context, merchantID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE merchant_id = $1`, merchantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.MerchantID, &t.Amount, &t.Currency, &t.Type, &t.Status,
		&t.SenderAddress, &t.ExternalReference, &t.OccurredAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
