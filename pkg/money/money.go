package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the fixed-point precision of on-chain USDC amounts.
const Decimals = 6

// MinimumUnits is the smallest acceptable amount: one cent.
const MinimumUnits int64 = 10_000

// ErrInvalidAmount flags input that does not parse as a payable USD amount.
var ErrInvalidAmount = errors.New("invalid amount")

var maxUnits = decimal.New(1, 18) // sanity cap, far above any real request

// Encode converts a decimal USD string into integer base units at 6-decimal
// precision, rounding half up. Inputs below one cent are rejected.
func Encode(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}
	parsed, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, value)
	}
	if parsed.IsNegative() {
		return 0, fmt.Errorf("%w: amount must not be negative", ErrInvalidAmount)
	}
	// Round ties away from zero, which is half-up for non-negative input.
	units := parsed.Shift(Decimals).Round(0)
	if units.Cmp(maxUnits) > 0 {
		return 0, fmt.Errorf("%w: amount too large", ErrInvalidAmount)
	}
	if units.IntPart() < MinimumUnits {
		return 0, fmt.Errorf("%w: minimum amount is 0.01", ErrInvalidAmount)
	}
	return units.IntPart(), nil
}

// Decode formats integer base units as a USD string with two fractional digits.
func Decode(units int64) string {
	return decimal.New(units, -Decimals).StringFixed(2)
}
