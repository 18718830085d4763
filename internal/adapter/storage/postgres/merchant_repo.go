package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

// Create inserts a new merchant into the database.
func (r *MerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	query := `INSERT INTO merchants (id, name, email, password_hash, paypal_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.Name, m.Email, m.PasswordHash,
		m.PaypalEmail, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

// GetByID fetches a merchant by its UUID.
func (r *MerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	query := `SELECT id, name, email, password_hash, paypal_email, created_at, updated_at
		FROM merchants WHERE id = $1`

	return r.scanMerchant(r.pool.QueryRow(ctx, query, id), "get merchant by id")
}

// GetByEmail fetches a merchant by email.
func (r *MerchantRepo) GetByEmail(ctx context.Context, email string) (*domain.Merchant, error) {
	query := `SELECT id, name, email, password_hash, paypal_email, created_at, updated_at
		FROM merchants WHERE email = $1`

	return r.scanMerchant(r.pool.QueryRow(ctx, query, email), "get merchant by email")
}

// Update updates a merchant record.
func (r *MerchantRepo) Update(ctx context.Context, m *domain.Merchant) error {
	query := `UPDATE merchants
		SET name=$1, email=$2, paypal_email=$3, updated_at=NOW()
		WHERE id=$4`
	_, err := r.pool.Exec(ctx, query, m.Name, m.Email, m.PaypalEmail, m.ID)
	if err != nil {
		return fmt.Errorf("update merchant: %w", err)
	}
	return nil
}

// Delete removes a merchant. The transactions FK is ON DELETE RESTRICT, so
// the database refuses deletion while ledger rows reference the merchant;
// the service layer checks first and maps the failure to a conflict.
func (r *MerchantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM merchants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete merchant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("merchant not found: %s", id)
	}
	return nil
}

// Balance derives the merchant balance from the ledger: completed PAY_IN
// minus completed PAY_OUT, in minor units.
func (r *MerchantRepo) Balance(ctx context.Context, merchantID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(
			CASE WHEN transaction_type = 'PAY_IN' THEN amount ELSE -amount END
		), 0)
		FROM transactions
		WHERE merchant_id = $1 AND status = 'COMPLETED'`

	var balance int64
	if err := r.pool.QueryRow(ctx, query, merchantID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("merchant balance: %w", err)
	}
	return balance, nil
}

func (r *MerchantRepo) scanMerchant(row pgx.Row, op string) (*domain.Merchant, error) {
	m := &domain.Merchant{}
	err := row.Scan(
		&m.ID, &m.Name, &m.Email, &m.PasswordHash,
		&m.PaypalEmail, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}
