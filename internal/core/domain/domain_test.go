package domain

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status TransactionStatus
		want   bool
	}{
		{"pending", TransactionStatusPending, false},
		{"completed", TransactionStatusCompleted, true},
		{"failed", TransactionStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Status: tt.status}
			assert.Equal(t, tt.want, tx.IsTerminal())
		})
	}
}

func TestMerchant_HasPayoutDestination(t *testing.T) {
	email := "m@example.com"
	empty := ""

	assert.True(t, (&Merchant{PaypalEmail: &email}).HasPayoutDestination())
	assert.False(t, (&Merchant{PaypalEmail: &empty}).HasPayoutDestination())
	assert.False(t, (&Merchant{}).HasPayoutDestination())
}

func TestBuildSettlementKey(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	key := BuildSettlementKey(id, TransactionTypePayIn, "EVT-001")
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000:PAY_IN:EVT-001", key)
}

func TestTransactionType_Constants(t *testing.T) {
	assert.Equal(t, TransactionType("PAY_IN"), TransactionTypePayIn)
	assert.Equal(t, TransactionType("PAY_OUT"), TransactionTypePayOut)
}

func TestTransactionStatus_Constants(t *testing.T) {
	assert.Equal(t, TransactionStatus("PENDING"), TransactionStatusPending)
	assert.Equal(t, TransactionStatus("COMPLETED"), TransactionStatusCompleted)
	assert.Equal(t, TransactionStatus("FAILED"), TransactionStatusFailed)
}

func TestParseMinorUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"25.00", 2500, false},
		{"25.5", 2550, false},
		{"25", 2500, false},
		{"0.01", 1, false},
		{"1000000.99", 100000099, false},
		{" 10.00 ", 1000, false},
		{"", 0, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"-5.00", 0, true},
		{"25.001", 0, true},
		{"abc", 0, true},
		{"25.x0", 0, true},
		// Largest representable amount in minor units parses exactly; one
		// cent more must be rejected, not silently wrapped.
		{"92233720368547758.07", math.MaxInt64, false},
		{"92233720368547758.08", 0, true},
		{"368934881474191033.00", 0, true},
		{"9223372036854775807.00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMinorUnits(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMinorUnits(t *testing.T) {
	assert.Equal(t, "25.00", FormatMinorUnits(2500))
	assert.Equal(t, "0.01", FormatMinorUnits(1))
	assert.Equal(t, "1.20", FormatMinorUnits(120))
	// A balance goes negative when payouts outpace recorded deposits; the
	// sign must appear once, in front of the whole amount.
	assert.Equal(t, "-25.50", FormatMinorUnits(-2550))
	assert.Equal(t, "-0.01", FormatMinorUnits(-1))
	assert.Equal(t, "0.00", FormatMinorUnits(0))
}
