package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/infrastructure/store/memory"
	"github.com/example/storefront/internal/money"
)

var address = order.ShippingAddress{
	FullName: "Alice Doe",
	Address:  "1 Main St",
	City:     "Springfield",
	ZipCode:  "12345",
	Country:  "United States",
}

func newTestCheckout(t *testing.T) (*Service, *cart.Service, *memory.OrderStore, *memory.ProductStore) {
	t.Helper()
	ctx := context.Background()
	products := memory.NewProductStore()
	orders := memory.NewOrderStore()
	users := memory.NewUserStore()

	for _, p := range []product.Product{
		{ID: "p", Name: "Speaker", Price: money.MustParse("100"), Category: "audio", StockCount: 4},
		{ID: "q", Name: "Cable", Price: money.MustParse("10"), Category: "audio", StockCount: 4},
	} {
		_, err := products.Insert(ctx, &p)
		require.NoError(t, err)
	}
	require.NoError(t, users.Insert(ctx, &user.User{ID: "user-1", Username: "alice", Email: "alice@example.com", Role: "user"}))

	carts := cart.NewService(memory.NewCartStore(), products, cart.DefaultPricing())
	orderService := order.NewService(orders, products, users, nil, cart.DefaultPricing())
	return NewService(carts, orderService), carts, orders, products
}

func TestCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	service, carts, orders, products := newTestCheckout(t)
	ctx := context.Background()
	cartID := cart.CartIDForUser("user-1")
	_, err := carts.AddItem(ctx, cartID, "p", 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, cartID, "q", 1)
	require.NoError(t, err)

	o, err := service.Checkout(ctx, cartID, "user-1", address)

	require.NoError(t, err)
	assert.Equal(t, "226.8", o.Total.String())
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, 1, orders.Len())

	c, err := carts.Get(ctx, cartID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	p, err := products.FindByID(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 2, p.StockCount)
}

func TestCheckout_EmptyCart(t *testing.T) {
	service, _, orders, _ := newTestCheckout(t)

	_, err := service.Checkout(context.Background(), "cart-empty", "user-1", address)

	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Zero(t, orders.Len())
}

func TestCheckout_FailureKeepsCart(t *testing.T) {
	service, carts, orders, _ := newTestCheckout(t)
	ctx := context.Background()
	cartID := cart.CartIDForUser("user-1")
	_, err := carts.AddItem(ctx, cartID, "p", 1)
	require.NoError(t, err)

	_, err = service.Checkout(ctx, cartID, "user-1", order.ShippingAddress{})

	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Zero(t, orders.Len())
	c, err := carts.Get(ctx, cartID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ItemCount())
}

func TestCheckout_PriceChangedSinceQuote(t *testing.T) {
	service, carts, orders, products := newTestCheckout(t)
	ctx := context.Background()
	cartID := cart.CartIDForUser("user-1")
	c, err := carts.AddItem(ctx, cartID, "p", 1)
	require.NoError(t, err)
	require.Equal(t, "108", c.Total().String())

	price := money.MustParse("500")
	_, err = products.UpdateByID(ctx, "p", product.Patch{Price: &price})
	require.NoError(t, err)

	_, err = service.Checkout(ctx, cartID, "user-1", address)

	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Zero(t, orders.Len())
	p, err := products.FindByID(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 4, p.StockCount)

	repriced, err := carts.Get(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, repriced.Items, 1)
	assert.Equal(t, "500", repriced.Items[0].Price.String())

	o, err := service.Checkout(ctx, cartID, "user-1", address)
	require.NoError(t, err)
	assert.Equal(t, "540", o.Total.String())
}
