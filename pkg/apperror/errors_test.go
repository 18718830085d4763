package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("LED_001", "merchant not found", http.StatusNotFound),
			expected: "[LED_001] merchant not found",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("VAL_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"Validation", Validation("bad payload"), "VAL_001", 400},
		{"InvalidAmount", ErrInvalidAmount(), "VAL_002", 400},
		{"InvalidCredentials", ErrInvalidCredentials(), "SEC_001", 401},
		{"InvalidToken", ErrInvalidToken(), "SEC_002", 401},
		{"WebhookSignature", ErrWebhookSignature(), "SEC_003", 403},
		{"NotFound", ErrNotFound("Merchant"), "LED_001", 404},
		{"MerchantExists", ErrMerchantExists(), "LED_002", 409},
		{"MerchantHasTransactions", ErrMerchantHasTransactions(), "LED_003", 409},
		{"RateLimitExceeded", ErrRateLimitExceeded(), "RATE_001", 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestWrappedKinds(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")

	persistErr := ErrPersistence(inner)
	assert.Equal(t, "LED_004", persistErr.Code)
	assert.Equal(t, 500, persistErr.HTTPStatus)
	assert.True(t, errors.Is(persistErr, inner))

	provErr := ErrProvider("payout submission failed", inner)
	assert.Equal(t, "PROV_001", provErr.Code)
	assert.Equal(t, 502, provErr.HTTPStatus)
	assert.True(t, errors.Is(provErr, inner))

	sysErr := InternalError(inner)
	assert.Equal(t, "SYS_001", sysErr.Code)
	assert.Equal(t, 500, sysErr.HTTPStatus)
}

func TestNotFoundEntity(t *testing.T) {
	err := ErrNotFound("Merchant")
	assert.Contains(t, err.Message, "Merchant")
	assert.Equal(t, "LED_001", err.Code)
}
