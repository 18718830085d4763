package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/domain"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction() *domain.Transaction {
	return &domain.Transaction{
		ID:                uuid.New(),
		MerchantID:        uuid.New(),
		Amount:            2500,
		Currency:          "USD",
		Type:              domain.TransactionTypePayIn,
		Status:            domain.TransactionStatusCompleted,
		SenderAddress:     strPtr("0xabc123"),
		ExternalReference: "evt_" + uuid.New().String()[:8],
		OccurredAt:        time.Now().UTC().Truncate(time.Microsecond),
		CreatedAt:         time.Now().UTC().Truncate(time.Microsecond),
	}
}

func transactionColumns() []string {
	return []string{"id", "merchant_id", "amount", "currency", "transaction_type", "status",
		"sender_address", "external_reference", "occurred_at", "created_at"}
}

func transactionRow(t *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(transactionColumns()).AddRow(
		t.ID, t.MerchantID, t.Amount, t.Currency, t.Type, t.Status,
		t.SenderAddress, t.ExternalReference, t.OccurredAt, t.CreatedAt,
	)
}

func TestTransactionRepo_Record_Created(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tx := newTestTransaction()

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(tx.ID, tx.MerchantID, tx.Amount, tx.Currency, tx.Type, tx.Status,
			tx.SenderAddress, tx.ExternalReference, tx.OccurredAt, tx.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	stored, created, err := repo.Record(context.Background(), tx)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, tx.ID, stored.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Record_Duplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	existing := newTestTransaction()
	duplicate := &domain.Transaction{
		ID:                uuid.New(), // Fresh id, but same idempotency key
		MerchantID:        existing.MerchantID,
		Amount:            existing.Amount,
		Currency:          existing.Currency,
		Type:              existing.Type,
		Status:            existing.Status,
		ExternalReference: existing.ExternalReference,
		OccurredAt:        existing.OccurredAt,
		CreatedAt:         time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(duplicate.ID, duplicate.MerchantID, duplicate.Amount, duplicate.Currency,
			duplicate.Type, duplicate.Status, duplicate.SenderAddress,
			duplicate.ExternalReference, duplicate.OccurredAt, duplicate.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT .+ FROM transactions").
		WithArgs(duplicate.MerchantID, duplicate.Type, duplicate.ExternalReference).
		WillReturnRows(transactionRow(existing))

	stored, created, err := repo.Record(context.Background(), duplicate)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, stored.ID, "duplicate delivery must return the originally stored row")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByExternalReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tx := newTestTransaction()

	mock.ExpectQuery("SELECT .+ FROM transactions").
		WithArgs(tx.MerchantID, tx.Type, tx.ExternalReference).
		WillReturnRows(transactionRow(tx))

	result, err := repo.GetByExternalReference(context.Background(), tx.MerchantID, tx.Type, tx.ExternalReference)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, tx.ID, result.ID)
	assert.Equal(t, tx.Amount, result.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByExternalReference_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM transactions").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(transactionColumns()))

	result, err := repo.GetByExternalReference(context.Background(), uuid.New(), domain.TransactionTypePayIn, "evt_missing")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_FilterByType(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	merchantID := uuid.New()
	first := newTestTransaction()
	first.MerchantID = merchantID
	second := newTestTransaction()
	second.MerchantID = merchantID

	payIn := domain.TransactionTypePayIn
	rows := pgxmock.NewRows(transactionColumns()).
		AddRow(first.ID, first.MerchantID, first.Amount, first.Currency, first.Type, first.Status,
			first.SenderAddress, first.ExternalReference, first.OccurredAt, first.CreatedAt).
		AddRow(second.ID, second.MerchantID, second.Amount, second.Currency, second.Type, second.Status,
			second.SenderAddress, second.ExternalReference, second.OccurredAt, second.CreatedAt)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE merchant_id").
		WithArgs(merchantID, payIn).
		WillReturnRows(rows)

	result, err := repo.List(context.Background(), ports.TransactionListParams{
		MerchantID: merchantID,
		Type:       &payIn,
	})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, first.ID, result[0].ID)
	assert.Equal(t, second.ID, result[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_CountByMerchant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.CountByMerchant(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
