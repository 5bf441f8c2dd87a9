package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/product"
)

const (
	MinQuantity = 1
	MaxQuantity = 10
)

var ErrInvalidQuantity = apperror.New(apperror.KindValidation, "quantity must be positive")

// Item is a cart line. The line is identified by its product ID; name, price
// and image are copied from the catalog when the product is first added.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is a shopper's in-progress selection. Every amount is derived from the
// lines on read.
type Cart struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`

	pricing Pricing
}

// New returns an empty cart priced with pricing.
func New(id string, pricing Pricing) *Cart {
	return &Cart{ID: id, Items: []Item{}, pricing: pricing}
}

// CartIDForUser is the cart key of an authenticated shopper.
func CartIDForUser(userID string) string {
	return "cart-" + userID
}

func clamp(quantity int) int {
	if quantity < MinQuantity {
		return MinQuantity
	}
	if quantity > MaxQuantity {
		return MaxQuantity
	}
	return quantity
}

func (c *Cart) indexOf(lineID string) int {
	for i, item := range c.Items {
		if item.ProductID == lineID {
			return i
		}
	}
	return -1
}

// AddItem merges quantity into the line for p, or appends a new line. The
// resulting quantity is clamped to MaxQuantity.
func (c *Cart) AddItem(p *product.Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i := c.indexOf(p.ID); i >= 0 {
		c.Items[i].Quantity = clamp(c.Items[i].Quantity + quantity)
		return nil
	}
	c.Items = append(c.Items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  clamp(quantity),
	})
	return nil
}

// SetQuantity sets a line's quantity. Zero or less removes the line. An
// unknown line is ignored.
func (c *Cart) SetQuantity(lineID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(lineID)
		return
	}
	if i := c.indexOf(lineID); i >= 0 {
		c.Items[i].Quantity = clamp(quantity)
	}
}

// RemoveItem drops a line. Removing an absent line is a no-op.
func (c *Cart) RemoveItem(lineID string) {
	if i := c.indexOf(lineID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.Items = []Item{}
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.Items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

func (c *Cart) ShippingFee() decimal.Decimal {
	return c.pricing.Shipping(c.Subtotal())
}

func (c *Cart) Tax() decimal.Decimal {
	return c.pricing.Tax(c.Subtotal())
}

func (c *Cart) Total() decimal.Decimal {
	return c.pricing.Quote(c.Subtotal()).Total
}

// ItemCount is the sum of line quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Summary is the response shape of a cart: its lines plus every derived amount.
type Summary struct {
	ID        string `json:"id"`
	Items     []Item `json:"items"`
	ItemCount int    `json:"itemCount"`
	Totals
}

func (c *Cart) Summary() Summary {
	items := c.Items
	if items == nil {
		items = []Item{}
	}
	return Summary{
		ID:        c.ID,
		Items:     items,
		ItemCount: c.ItemCount(),
		Totals:    c.pricing.Quote(c.Subtotal()),
	}
}
