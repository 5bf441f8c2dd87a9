package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/money"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCartStore_RoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewCartStore(client, "test:cart", time.Hour)
	ctx := context.Background()

	c := cart.New("cart-1", cart.DefaultPricing())
	require.NoError(t, c.AddItem(&product.Product{ID: "p", Name: "Speaker", Price: money.MustParse("19.99")}, 2))
	require.NoError(t, store.Save(ctx, c))

	assert.True(t, mr.Exists("test:cart:cart-1"))
	assert.Equal(t, time.Hour, mr.TTL("test:cart:cart-1"))

	loaded, err := store.Load(ctx, "cart-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "Speaker", loaded.Items[0].Name)
	assert.Equal(t, "19.99", loaded.Items[0].Price.String())
	assert.Equal(t, 2, loaded.Items[0].Quantity)
}

func TestCartStore_LoadMissing(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewCartStore(client, "", 0)

	c, err := store.Load(context.Background(), "nope")

	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCartStore_Delete(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewCartStore(client, "", 0)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, cart.New("cart-1", cart.DefaultPricing())))

	require.NoError(t, store.Delete(ctx, "cart-1"))
	require.NoError(t, store.Delete(ctx, "cart-1"))

	assert.False(t, mr.Exists(DefaultKeyPrefix+":cart-1"))
}

func TestCartStore_Expires(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewCartStore(client, "", time.Minute)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, cart.New("cart-1", cart.DefaultPricing())))

	mr.FastForward(2 * time.Minute)

	c, err := store.Load(ctx, "cart-1")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCartStore_WorksWithService(t *testing.T) {
	_, client := setupTestRedis(t)
	catalog := catalogFunc(func(_ context.Context, id string) (*product.Product, error) {
		return &product.Product{ID: id, Name: "Item " + id, Price: money.MustParse("5"), StockCount: 1, InStock: true}, nil
	})
	service := cart.NewService(NewCartStore(client, "", 0), catalog, cart.DefaultPricing())
	ctx := context.Background()

	_, err := service.AddItem(ctx, "cart-1", "a", 4)
	require.NoError(t, err)

	c, err := service.Get(ctx, "cart-1")
	require.NoError(t, err)
	assert.Equal(t, "27.59", c.Total().String())
}

type catalogFunc func(ctx context.Context, id string) (*product.Product, error)

func (f catalogFunc) FindByID(ctx context.Context, id string) (*product.Product, error) {
	return f(ctx, id)
}
