package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the direction of a money movement.
type TransactionType string

const (
	TransactionTypePayIn  TransactionType = "PAY_IN"
	TransactionTypePayOut TransactionType = "PAY_OUT"
)

// TransactionStatus represents the lifecycle state of a transaction.
// The only allowed mutations are PENDING -> COMPLETED and PENDING -> FAILED.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is one ledger entry for one money movement. Rows are appended,
// never rewritten. ExternalReference carries the provider event id and is the
// idempotent-matching key: the ledger holds at most one transaction per
// (merchant, type, external_reference).
type Transaction struct {
	ID                uuid.UUID         `json:"id"`
	MerchantID        uuid.UUID         `json:"merchant_id"`
	Amount            int64             `json:"amount"` // In currency minor units
	Currency          string            `json:"currency"`
	Type              TransactionType   `json:"type"`
	Status            TransactionStatus `json:"status"`
	SenderAddress     *string           `json:"sender_address,omitempty"` // Crypto source, PAY_IN only
	ExternalReference string            `json:"external_reference"`
	OccurredAt        time.Time         `json:"occurred_at"` // Provider-supplied, not local clock
	CreatedAt         time.Time         `json:"created_at"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted ||
		t.Status == TransactionStatusFailed
}

// BuildSettlementKey constructs the deduplication key used by the settlement
// cache. Format: "merchant_id:type:external_reference".
func BuildSettlementKey(merchantID uuid.UUID, txType TransactionType, externalReference string) string {
	return merchantID.String() + ":" + string(txType) + ":" + externalReference
}
