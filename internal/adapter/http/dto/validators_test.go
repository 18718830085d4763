package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStruct(t *testing.T) {
	paypal := "  payouts@shop.io  "
	req := RegisterRequest{
		Name:        "  <script>Shop</script>  ",
		Email:       " owner@shop.io ",
		Password:    "unchanged-pass",
		PaypalEmail: &paypal,
	}

	SanitizeStruct(&req)

	assert.Equal(t, "&lt;script&gt;Shop&lt;/script&gt;", req.Name)
	assert.Equal(t, "owner@shop.io", req.Email)
	assert.Equal(t, "unchanged-pass", req.Password)
	assert.Equal(t, "payouts@shop.io", *req.PaypalEmail)
}

func TestSanitizeStruct_NonStruct(t *testing.T) {
	s := "plain"
	SanitizeStruct(&s) // Must not panic
	SanitizeStruct(nil)
}

func TestValidateCurrencyCode(t *testing.T) {
	for code, want := range map[string]bool{
		"USD":    true,
		"USDC":   true,
		"EUR":    true,
		"usd":    false,
		"US":     false,
		"TOOLONG": false,
		"U$D":    false,
		"":       false,
	} {
		assert.Equal(t, want, currencyCodeRe.MatchString(code), "code %q", code)
	}
}
