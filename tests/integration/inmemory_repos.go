package integration

import (
	"context"
	"fmt"
	"sync"

	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/domain"
	"github.com/CactusTune/Cryptocurrency-POS-API/internal/core/ports"

	"github.com/google/uuid"
)

// --- In-Memory Merchant Repo ---

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	merchants map[uuid.UUID]*domain.Merchant
	txRepo    *inMemoryTransactionRepo
}

func newInMemoryMerchantRepo(txRepo *inMemoryTransactionRepo) *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{
		merchants: make(map[uuid.UUID]*domain.Merchant),
		txRepo:    txRepo,
	}
}

func (r *inMemoryMerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.merchants {
		if existing.Email == m.Email {
			return fmt.Errorf("email already exists")
		}
	}
	cp := *m
	r.merchants[m.ID] = &cp
	return nil
}

func (r *inMemoryMerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *inMemoryMerchantRepo) GetByEmail(ctx context.Context, email string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.merchants {
		if m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMerchantRepo) Update(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.merchants[m.ID]; !ok {
		return fmt.Errorf("merchant not found")
	}
	cp := *m
	r.merchants[m.ID] = &cp
	return nil
}

func (r *inMemoryMerchantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.merchants[id]; !ok {
		return fmt.Errorf("merchant not found")
	}
	delete(r.merchants, id)
	return nil
}

func (r *inMemoryMerchantRepo) Balance(ctx context.Context, merchantID uuid.UUID) (int64, error) {
	return r.txRepo.balance(merchantID), nil
}

// --- In-Memory Transaction Repo ---

// inMemoryTransactionRepo enforces the same (merchant, type, external
// reference) uniqueness as the unique index in postgres, atomically under
// a single mutex.
type inMemoryTransactionRepo struct {
	mu      sync.RWMutex
	byKey   map[string]*domain.Transaction
	ordered []*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{byKey: make(map[string]*domain.Transaction)}
}

func idempotencyKey(merchantID uuid.UUID, txType domain.TransactionType, ref string) string {
	return fmt.Sprintf("%s|%s|%s", merchantID, txType, ref)
}

func (r *inMemoryTransactionRepo) Record(ctx context.Context, t *domain.Transaction) (*domain.Transaction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := idempotencyKey(t.MerchantID, t.Type, t.ExternalReference)
	if existing, ok := r.byKey[key]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *t
	r.byKey[key] = &cp
	r.ordered = append(r.ordered, &cp)
	out := cp
	return &out, true, nil
}

func (r *inMemoryTransactionRepo) GetByExternalReference(ctx context.Context, merchantID uuid.UUID, txType domain.TransactionType, ref string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byKey[idempotencyKey(merchantID, txType, ref)]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Transaction, 0)
	for _, t := range r.ordered {
		if t.MerchantID != params.MerchantID {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

func (r *inMemoryTransactionRepo) CountByMerchant(ctx context.Context, merchantID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, t := range r.ordered {
		if t.MerchantID == merchantID {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryTransactionRepo) balance(merchantID uuid.UUID) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var balance int64
	for _, t := range r.ordered {
		if t.MerchantID != merchantID || t.Status != domain.TransactionStatusCompleted {
			continue
		}
		if t.Type == domain.TransactionTypePayIn {
			balance += t.Amount
		} else {
			balance -= t.Amount
		}
	}
	return balance
}

// --- Recording Payout Client ---

type payoutSubmission struct {
	Currency      string
	Amount        string
	Destination   string
	CorrelationID string
}

// recordingPayoutClient accepts every payout and remembers what was
// submitted, so tests can assert exactly-once submission.
type recordingPayoutClient struct {
	mu          sync.Mutex
	submissions []payoutSubmission
}

func (c *recordingPayoutClient) SubmitPayout(ctx context.Context, currency, amount, destinationEmail, correlationID string) (*ports.PayoutResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submissions = append(c.submissions, payoutSubmission{
		Currency:      currency,
		Amount:        amount,
		Destination:   destinationEmail,
		CorrelationID: correlationID,
	})
	return &ports.PayoutResult{
		BatchID:     fmt.Sprintf("BATCH-%d", len(c.submissions)),
		BatchStatus: "PENDING",
	}, nil
}

func (c *recordingPayoutClient) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.submissions)
}

func (c *recordingPayoutClient) last() payoutSubmission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submissions[len(c.submissions)-1]
}

// --- Static Rate Client ---

type staticRateClient struct {
	mu    sync.Mutex
	calls int
}

func (c *staticRateClient) GetRate(ctx context.Context, asset string) (*ports.ExchangeRate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return &ports.ExchangeRate{Asset: asset, Name: "Bitcoin", PriceUSD: 64210.55}, nil
}

// --- Stub payout webhook verifier ---

// stubPayoutVerifier answers signature checks locally so tests never call
// the provider verification endpoint.
type stubPayoutVerifier struct {
	verified bool
}

func (v *stubPayoutVerifier) VerifyWebhookSignature(ctx context.Context, sig ports.PayoutSignature, rawBody []byte) (bool, error) {
	return v.verified, nil
}
