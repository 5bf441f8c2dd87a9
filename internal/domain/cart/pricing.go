package cart

import (
	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/money"
)

// Pricing holds the shipping and tax rules applied to a subtotal. The amounts
// are in Currency units.
type Pricing struct {
	Currency              string
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPricing is free shipping above 35, a flat 5.99 fee otherwise and 8% tax.
func DefaultPricing() Pricing {
	return Pricing{
		Currency:              "USD",
		FreeShippingThreshold: decimal.NewFromInt(35),
		ShippingFee:           decimal.RequireFromString("5.99"),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

// Totals is the breakdown derived from a subtotal.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
}

// Shipping returns the fee for subtotal: zero strictly above the threshold.
func (p Pricing) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.ShippingFee
}

// Tax returns subtotal times the tax rate, rounded to cents.
func (p Pricing) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return money.Round(subtotal.Mul(p.TaxRate))
}

// Quote computes every derived amount for subtotal.
func (p Pricing) Quote(subtotal decimal.Decimal) Totals {
	shipping := p.Shipping(subtotal)
	tax := p.Tax(subtotal)
	return Totals{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Tax:         tax,
		Total:       subtotal.Add(shipping).Add(tax),
		Currency:    p.Currency,
	}
}
