package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation returns a 400 for malformed input or event payloads.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_002", "Invalid amount", http.StatusBadRequest)
}

// ---- Authentication & authenticity (SEC) ----

func ErrInvalidCredentials() *AppError {
	return New("SEC_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("SEC_002", "Invalid or expired token", http.StatusUnauthorized)
}

// ErrWebhookSignature marks a webhook whose authenticity check failed.
// Distinguishable from validation errors so the channel can answer 403
// without writing anything to the ledger.
func ErrWebhookSignature() *AppError {
	return New("SEC_003", "Webhook signature verification failed", http.StatusForbidden)
}

// ---- Ledger (LED) ----

func ErrNotFound(entity string) *AppError {
	return New("LED_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrMerchantExists() *AppError {
	return New("LED_002", "Merchant already exists", http.StatusConflict)
}

// ErrMerchantHasTransactions rejects deletion that would orphan ledger rows.
func ErrMerchantHasTransactions() *AppError {
	return New("LED_003", "Merchant has recorded transactions", http.StatusConflict)
}

// ErrPersistence wraps a failed ledger write. Never swallowed: losing it
// would silently lose funds-received or funds-paid information.
func ErrPersistence(err error) *AppError {
	return Wrap("LED_004", "Ledger write failed", http.StatusInternalServerError, err)
}

// ---- Payment providers (PROV) ----

// ErrProvider wraps a transient provider failure (timeout, 5xx from the
// OAuth/verify/payout/charge calls). Surfaced as 502 so the webhook source
// redelivers; nothing is retried internally.
func ErrProvider(message string, err error) *AppError {
	return Wrap("PROV_001", message, http.StatusBadGateway, err)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System (SYS) ----

// InternalError wraps an unexpected error as a generic 500.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
