package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/money"
)

func testProduct(id, price string) *product.Product {
	return &product.Product{
		ID:         id,
		Name:       "Product " + id,
		Price:      money.MustParse(price),
		Category:   "misc",
		StockCount: 50,
		InStock:    true,
	}
}

// ============================================
// Pricing Tests
// ============================================

func TestPricing_Quote(t *testing.T) {
	pricing := DefaultPricing()

	tests := []struct {
		name     string
		subtotal string
		shipping string
		tax      string
		total    string
	}{
		{"scenario A", "210", "0", "16.80", "226.80"},
		{"scenario B", "20", "5.99", "1.60", "27.59"},
		{"exactly at threshold pays shipping", "35", "5.99", "2.80", "43.79"},
		{"just above threshold ships free", "35.01", "0", "2.80", "37.81"},
		{"empty cart", "0", "5.99", "0", "5.99"},
		{"tax rounds half up", "0.0625", "5.99", "0.01", "6.0625"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := pricing.Quote(money.MustParse(tt.subtotal))

			assert.True(t, money.MustParse(tt.shipping).Equal(totals.ShippingFee), "shipping %s", totals.ShippingFee)
			assert.True(t, money.MustParse(tt.tax).Equal(totals.Tax), "tax %s", totals.Tax)
			assert.True(t, money.MustParse(tt.total).Equal(totals.Total), "total %s", totals.Total)
			assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.ShippingFee).Add(totals.Tax)))
			assert.Equal(t, "USD", totals.Currency)
		})
	}
}

func TestPricing_CurrencyIsConfigurable(t *testing.T) {
	pricing := DefaultPricing()
	pricing.Currency = "INR"

	assert.Equal(t, "INR", pricing.Quote(money.MustParse("10")).Currency)
}

// ============================================
// Aggregate Tests
// ============================================

func TestCart_ScenarioA(t *testing.T) {
	c := New("cart-1", DefaultPricing())

	require.NoError(t, c.AddItem(testProduct("p", "100"), 2))
	require.NoError(t, c.AddItem(testProduct("q", "10"), 1))

	assert.Equal(t, "210", c.Subtotal().String())
	assert.True(t, c.ShippingFee().IsZero())
	assert.Equal(t, "16.8", c.Tax().String())
	assert.Equal(t, "226.8", c.Total().String())
	assert.Equal(t, 3, c.ItemCount())
}

func TestCart_ScenarioB(t *testing.T) {
	c := New("cart-1", DefaultPricing())

	require.NoError(t, c.AddItem(testProduct("p", "5"), 4))

	assert.Equal(t, "20", c.Subtotal().String())
	assert.Equal(t, "5.99", c.ShippingFee().String())
	assert.Equal(t, "1.6", c.Tax().String())
	assert.Equal(t, "27.59", c.Total().String())
}

func TestCart_AddItem_MergesAndClamps(t *testing.T) {
	tests := []struct {
		name     string
		first    int
		second   int
		expected int
	}{
		{"summed", 2, 3, 5},
		{"clamped at max", 6, 7, 10},
		{"already at max", 10, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("cart-1", DefaultPricing())
			p := testProduct("p", "1")

			require.NoError(t, c.AddItem(p, tt.first))
			require.NoError(t, c.AddItem(p, tt.second))

			require.Len(t, c.Items, 1)
			assert.Equal(t, tt.expected, c.Items[0].Quantity)
		})
	}
}

func TestCart_AddItem_NewLineClamped(t *testing.T) {
	c := New("cart-1", DefaultPricing())

	require.NoError(t, c.AddItem(testProduct("p", "1"), 25))

	assert.Equal(t, MaxQuantity, c.Items[0].Quantity)
}

func TestCart_AddItem_InvalidQuantity(t *testing.T) {
	c := New("cart-1", DefaultPricing())

	for _, q := range []int{0, -3} {
		err := c.AddItem(testProduct("p", "1"), q)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	}
	assert.True(t, c.IsEmpty())
}

func TestCart_AddItem_KeepsFirstSnapshot(t *testing.T) {
	c := New("cart-1", DefaultPricing())
	p := testProduct("p", "10")
	require.NoError(t, c.AddItem(p, 1))

	repriced := testProduct("p", "12")
	require.NoError(t, c.AddItem(repriced, 1))

	assert.Equal(t, "10", c.Items[0].Price.String())
	assert.Equal(t, "20", c.Subtotal().String())
}

func TestCart_SetQuantityZeroEqualsRemove(t *testing.T) {
	build := func() *Cart {
		c := New("cart-1", DefaultPricing())
		require.NoError(t, c.AddItem(testProduct("p", "3"), 2))
		require.NoError(t, c.AddItem(testProduct("q", "4"), 1))
		return c
	}

	viaSet := build()
	viaSet.SetQuantity("p", 0)

	viaRemove := build()
	viaRemove.RemoveItem("p")

	assert.Equal(t, viaRemove.Items, viaSet.Items)
	assert.Equal(t, viaRemove.Summary(), viaSet.Summary())

	negative := build()
	negative.SetQuantity("p", -1)
	assert.Equal(t, viaRemove.Items, negative.Items)
}

func TestCart_SetQuantity(t *testing.T) {
	c := New("cart-1", DefaultPricing())
	require.NoError(t, c.AddItem(testProduct("p", "3"), 2))

	c.SetQuantity("p", 7)
	assert.Equal(t, 7, c.Items[0].Quantity)

	c.SetQuantity("p", 99)
	assert.Equal(t, MaxQuantity, c.Items[0].Quantity)

	c.SetQuantity("missing", 4)
	assert.Len(t, c.Items, 1)
}

func TestCart_RemoveItem_Idempotent(t *testing.T) {
	c := New("cart-1", DefaultPricing())
	require.NoError(t, c.AddItem(testProduct("p", "3"), 2))
	before := c.Summary()

	c.RemoveItem("absent")

	assert.Equal(t, before, c.Summary())

	c.RemoveItem("p")
	c.RemoveItem("p")
	assert.True(t, c.IsEmpty())
}

func TestCart_Clear(t *testing.T) {
	c := New("cart-1", DefaultPricing())
	require.NoError(t, c.AddItem(testProduct("p", "3"), 2))

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.ItemCount())
	assert.True(t, c.Subtotal().IsZero())
}

func TestCart_TotalMatchesParts(t *testing.T) {
	prices := []string{"0.99", "12.49", "35", "7.33", "100.01"}
	c := New("cart-1", DefaultPricing())

	for i, price := range prices {
		require.NoError(t, c.AddItem(testProduct(price, price), i+1))

		expectedTax := money.Round(c.Subtotal().Mul(money.MustParse("0.08")))
		assert.True(t, expectedTax.Equal(c.Tax()))
		assert.True(t, c.Total().Equal(c.Subtotal().Add(c.ShippingFee()).Add(c.Tax())))
	}
}

func TestCartIDForUser(t *testing.T) {
	assert.Equal(t, "cart-user-123", CartIDForUser("user-123"))
}
