package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Settlement amounts arrive from providers as decimal strings ("25.00").
// They are stored in minor units (2500) so ledger arithmetic stays exact.
const minorUnitDigits = 2

// ParseMinorUnits converts a provider decimal amount string into minor units.
// Accepts at most minorUnitDigits fractional digits; shorter fractions are
// right-padded ("25.5" -> 2550, "25" -> 2500). Zero and negative amounts are
// rejected: a ledger entry always moves a positive amount.
func ParseMinorUnits(amount string) (int64, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative amount %q", amount)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > minorUnitDigits {
		return 0, fmt.Errorf("amount %q exceeds %d fractional digits", amount, minorUnitDigits)
	}
	for len(frac) < minorUnitDigits {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", amount, err)
	}

	// units*100 must not wrap back into the positive range.
	if units > (math.MaxInt64-cents)/100 {
		return 0, fmt.Errorf("amount %q exceeds the representable range", amount)
	}

	total := units*100 + cents
	if total <= 0 {
		return 0, fmt.Errorf("amount %q must be positive", amount)
	}
	return total, nil
}

// FormatMinorUnits renders minor units back into a provider decimal string
// ("2500" -> "25.00"). Negative values keep a single leading sign; a derived
// balance can go negative when payouts outpace recorded deposits.
func FormatMinorUnits(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
