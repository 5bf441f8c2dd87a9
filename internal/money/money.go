// Package money holds the decimal conventions used for prices: amounts are
// currency-agnostic decimals, rounded half-up to two places when derived, and
// encoded in JSON as bare numbers.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for derived amounts.
const Places = 2

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Round rounds d half away from zero to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// InCents reports whether d has at most two fractional digits, the precision
// prices are stored with.
func InCents(d decimal.Decimal) bool {
	return d.Equal(Round(d))
}

// Parse parses a decimal amount, rejecting empty input.
func Parse(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d, nil
}

// MustParse is Parse for constants; it panics on bad input.
func MustParse(raw string) decimal.Decimal {
	d, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return d
}

// Format renders d with two fractional digits and an optional currency code,
// e.g. "226.80 USD".
func Format(d decimal.Decimal, currency string) string {
	s := Round(d).StringFixed(Places)
	if currency == "" {
		return s
	}
	return s + " " + currency
}
