package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/product"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

var (
	ErrOrderNotFound = apperror.NotFound("order")
	ErrEmptyOrder    = apperror.New(apperror.KindValidation, "order must have at least one item")
)

// ParseStatus validates a status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Statuses {
		if s == known {
			return s, nil
		}
	}
	return "", apperror.Validation("invalid status %q", raw)
}

// ShippingAddress is where the order is delivered.
type ShippingAddress struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state,omitempty"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
}

func (a ShippingAddress) Validate() error {
	required := []struct{ field, value string }{
		{"fullName", a.FullName},
		{"address", a.Address},
		{"city", a.City},
		{"zipCode", a.ZipCode},
		{"country", a.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperror.Validation("shippingAddress.%s is required", r.field)
		}
	}
	return nil
}

// Line is a requested (product, quantity) pair. QuotedPrice, when set, is
// the unit price the shopper was shown; placement fails if the catalog price
// no longer matches it.
type Line struct {
	ProductID   string           `json:"productId"`
	Quantity    int              `json:"quantity"`
	QuotedPrice *decimal.Decimal `json:"-"`
}

// Item is an ordered line with the name and unit price frozen at purchase.
type Item struct {
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Product   *product.Product `json:"product,omitempty"`
}

// Purchaser is the populated user reference of an order.
type Purchaser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Order is a placed order. The amounts are computed once at creation; only
// Status and UpdatedAt change afterwards.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	User            *Purchaser      `json:"user,omitempty"`
	Items           []Item          `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	cart.Totals
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemCount is the total quantity ordered.
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// Filter narrows an order listing. Zero values match everything.
type Filter struct {
	Status Status
	UserID string
}

func (f Filter) Matches(o *Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	return true
}

// Repository is the order store. FindAll returns orders newest first.
type Repository interface {
	Insert(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindAll(ctx context.Context, filter Filter) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) (*Order, error)
	DeleteByID(ctx context.Context, id string) error
}
