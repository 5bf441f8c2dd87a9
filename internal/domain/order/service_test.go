package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/infrastructure/store/memory"
	"github.com/example/storefront/internal/infrastructure/store/mocks"
	"github.com/example/storefront/internal/money"
)

type fixture struct {
	service   *order.Service
	orders    *memory.OrderStore
	products  *memory.ProductStore
	users     *memory.UserStore
	publisher *mocks.MockPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		orders:    memory.NewOrderStore(),
		products:  memory.NewProductStore(),
		users:     memory.NewUserStore(),
		publisher: mocks.NewMockPublisher(),
	}
	f.service = order.NewService(f.orders, f.products, f.users, f.publisher, cart.DefaultPricing())

	ctx := context.Background()
	require.NoError(t, f.users.Insert(ctx, &user.User{ID: "user-1", Username: "alice", Email: "alice@example.com", Role: "user"}))
	f.addProduct(t, "p", "100", 5)
	f.addProduct(t, "q", "10", 5)
	return f
}

func (f *fixture) addProduct(t *testing.T, id, price string, stock int) {
	t.Helper()
	_, err := f.products.Insert(context.Background(), &product.Product{
		ID:         id,
		Name:       "Product " + id,
		Price:      money.MustParse(price),
		Category:   "misc",
		StockCount: stock,
	})
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.StockCount
}

var address = order.ShippingAddress{
	FullName: "Alice Doe",
	Address:  "1 Main St",
	City:     "Springfield",
	ZipCode:  "12345",
	Country:  "United States",
}

func placeInput(lines ...order.Line) order.PlaceInput {
	return order.PlaceInput{UserID: "user-1", Items: lines, ShippingAddress: address}
}

// ============================================
// Place Tests
// ============================================

func TestService_Place_ScenarioA(t *testing.T) {
	f := newFixture(t)

	o, err := f.service.Place(context.Background(), placeInput(
		order.Line{ProductID: "p", Quantity: 2},
		order.Line{ProductID: "q", Quantity: 1},
	))

	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "210", o.Subtotal.String())
	assert.True(t, o.ShippingFee.IsZero())
	assert.Equal(t, "16.8", o.Tax.String())
	assert.Equal(t, "226.8", o.Total.String())
	assert.Equal(t, "USD", o.Currency)
	require.NotNil(t, o.User)
	assert.Equal(t, "alice", o.User.Username)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Product p", o.Items[0].Name)
	assert.NotNil(t, o.Items[0].Product)

	assert.Equal(t, 3, f.stock(t, "p"))
	assert.Equal(t, 4, f.stock(t, "q"))
	assert.Equal(t, 1, f.orders.Len())
}

func TestService_Place_PublishesOrderPlaced(t *testing.T) {
	f := newFixture(t)

	o, err := f.service.Place(context.Background(), placeInput(order.Line{ProductID: "q", Quantity: 2}))
	require.NoError(t, err)

	calls := f.publisher.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, o.ID, calls[0].Key)
	event := calls[0].Event.(order.Event)
	assert.Equal(t, order.EventOrderPlaced, event.Type)
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, "27.59", event.Total.String())
	require.Len(t, event.Items, 1)
	assert.Nil(t, event.Items[0].Product)
}

func TestService_Place_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input order.PlaceInput
	}{
		{"empty lines", placeInput()},
		{"zero quantity", placeInput(order.Line{ProductID: "p", Quantity: 0})},
		{"negative quantity", placeInput(order.Line{ProductID: "p", Quantity: -1})},
		{"quantity above max", placeInput(order.Line{ProductID: "p", Quantity: 11})},
		{"missing product id", placeInput(order.Line{Quantity: 1})},
		{"duplicate product", placeInput(order.Line{ProductID: "p", Quantity: 1}, order.Line{ProductID: "p", Quantity: 1})},
		{"unknown product", placeInput(order.Line{ProductID: "nope", Quantity: 1})},
		{"insufficient stock", placeInput(order.Line{ProductID: "p", Quantity: 6})},
		{"missing user", order.PlaceInput{Items: []order.Line{{ProductID: "p", Quantity: 1}}, ShippingAddress: address}},
		{"unknown user", order.PlaceInput{UserID: "ghost", Items: []order.Line{{ProductID: "p", Quantity: 1}}, ShippingAddress: address}},
		{"missing address", order.PlaceInput{UserID: "user-1", Items: []order.Line{{ProductID: "p", Quantity: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			o, err := f.service.Place(context.Background(), tt.input)

			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Nil(t, o)
			assert.Zero(t, f.orders.Len())
			assert.Equal(t, 5, f.stock(t, "p"))
			assert.Empty(t, f.publisher.Calls())
		})
	}
}

func TestService_Place_EmptyLinesIsEmptyOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Place(context.Background(), placeInput())

	assert.ErrorIs(t, err, order.ErrEmptyOrder)
}

func TestService_Place_RestoresStockWhenALineFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Race: stock for q drops between validation and reservation.
	inventory := &drainingInventory{ProductStore: f.products, drain: "q"}
	service := order.NewService(f.orders, inventory, f.users, f.publisher, cart.DefaultPricing())

	_, err := service.Place(ctx, placeInput(
		order.Line{ProductID: "p", Quantity: 2},
		order.Line{ProductID: "q", Quantity: 1},
	))

	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, 5, f.stock(t, "p"))
	assert.Zero(t, f.orders.Len())
}

// drainingInventory empties the stock of one product right before it is
// decremented.
type drainingInventory struct {
	*memory.ProductStore
	drain string
}

func (d *drainingInventory) AdjustStock(ctx context.Context, id string, delta int) (*product.Product, error) {
	if id == d.drain && delta < 0 {
		zero := 0
		if _, err := d.ProductStore.UpdateByID(ctx, id, product.Patch{StockCount: &zero}); err != nil {
			return nil, err
		}
	}
	return d.ProductStore.AdjustStock(ctx, id, delta)
}

func TestService_Place_FreezesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placed, err := f.service.Place(ctx, placeInput(order.Line{ProductID: "p", Quantity: 1}))
	require.NoError(t, err)

	newPrice := money.MustParse("250")
	_, err = f.products.UpdateByID(ctx, "p", product.Patch{Price: &newPrice})
	require.NoError(t, err)

	got, err := f.service.Get(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.Total.String(), got.Total.String())
	assert.Equal(t, "100", got.Items[0].Price.String())
	assert.Equal(t, "250", got.Items[0].Product.Price.String())
}

func TestService_Place_QuotedPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	current := money.MustParse("100")
	stale := money.MustParse("90")

	_, err := f.service.Place(ctx, placeInput(
		order.Line{ProductID: "q", Quantity: 1},
		order.Line{ProductID: "p", Quantity: 1, QuotedPrice: &stale},
	))
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Contains(t, err.Error(), "changed from 90 to 100")
	assert.Zero(t, f.orders.Len())
	assert.Equal(t, 5, f.stock(t, "p"))
	assert.Equal(t, 5, f.stock(t, "q"))

	o, err := f.service.Place(ctx, placeInput(order.Line{ProductID: "p", Quantity: 1, QuotedPrice: &current}))
	require.NoError(t, err)
	assert.Equal(t, "108", o.Total.String())
}

// ============================================
// UpdateStatus Tests
// ============================================

func TestService_UpdateStatus_AnyToAny(t *testing.T) {
	for _, from := range order.Statuses {
		for _, to := range order.Statuses {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				f := newFixture(t)
				ctx := context.Background()
				placed, err := f.service.Place(ctx, placeInput(order.Line{ProductID: "q", Quantity: 1}))
				require.NoError(t, err)
				_, err = f.service.UpdateStatus(ctx, placed.ID, string(from))
				require.NoError(t, err)

				updated, err := f.service.UpdateStatus(ctx, placed.ID, string(to))

				require.NoError(t, err)
				assert.Equal(t, to, updated.Status)
				assert.Equal(t, placed.Total.String(), updated.Total.String())
			})
		}
	}
}

func TestService_UpdateStatus_PublishesChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	placed, err := f.service.Place(ctx, placeInput(order.Line{ProductID: "q", Quantity: 1}))
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, placed.ID, "shipped")
	require.NoError(t, err)

	calls := f.publisher.Calls()
	require.Len(t, calls, 2)
	event := calls[1].Event.(order.Event)
	assert.Equal(t, order.EventOrderStatusChanged, event.Type)
	assert.Equal(t, order.StatusPending, event.PreviousStatus)
	assert.Equal(t, order.StatusShipped, event.Status)
}

func TestService_UpdateStatus_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	placed, err := f.service.Place(ctx, placeInput(order.Line{ProductID: "q", Quantity: 1}))
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, placed.ID, "refunded")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.service.UpdateStatus(ctx, "missing", "shipped")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestService_UpdateStatus_StrictPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.service.WithPolicy(order.StrictTransitions)
	placed, err := f.service.Place(ctx, placeInput(order.Line{ProductID: "q", Quantity: 1}))
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, placed.ID, "delivered")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.service.UpdateStatus(ctx, placed.ID, "processing")
	require.NoError(t, err)
}

// ============================================
// Get / List / Delete Tests
// ============================================

func TestService_Get_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestService_Get_DeletedProductStaysNil(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	placed, err := f.service.Place(ctx, placeInput(order.Line{ProductID: "q", Quantity: 1}))
	require.NoError(t, err)
	require.NoError(t, f.products.DeleteByID(ctx, "q"))

	got, err := f.service.Get(ctx, placed.ID)

	require.NoError(t, err)
	assert.Nil(t, got.Items[0].Product)
	assert.Equal(t, "Product q", got.Items[0].Name)
}

func TestService_List_FilterByStatusAndUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.Insert(ctx, &user.User{ID: "user-2", Username: "bob", Email: "bob@example.com", Role: "user"}))

	first, err := f.service.Place(ctx, placeInput(order.Line{ProductID: "q", Quantity: 1}))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	bobs := placeInput(order.Line{ProductID: "p", Quantity: 1})
	bobs.UserID = "user-2"
	second, err := f.service.Place(ctx, bobs)
	require.NoError(t, err)
	_, err = f.service.UpdateStatus(ctx, first.ID, "shipped")
	require.NoError(t, err)

	all, err := f.service.List(ctx, order.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, "bob", all[0].User.Username)

	mine, err := f.service.List(ctx, order.Filter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	shipped, err := f.service.List(ctx, order.Filter{Status: order.StatusShipped})
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	assert.Equal(t, first.ID, shipped[0].ID)
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	placed, err := f.service.Place(ctx, placeInput(order.Line{ProductID: "q", Quantity: 1}))
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, placed.ID))

	assert.Zero(t, f.orders.Len())
	calls := f.publisher.Calls()
	assert.Equal(t, order.EventOrderDeleted, calls[len(calls)-1].Event.(order.Event).Type)

	err = f.service.Delete(ctx, placed.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
