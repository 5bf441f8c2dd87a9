package product

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/money"
)

var (
	ErrProductNotFound   = apperror.NotFound("product")
	ErrInsufficientStock = apperror.New(apperror.KindValidation, "insufficient stock")
)

const maxRating = 5

// Product is a catalog record. InStock is derived from StockCount and is
// never accepted from input.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Category      string           `json:"category"`
	StockCount    int              `json:"stockCount"`
	InStock       bool             `json:"inStock"`
	Rating        float64          `json:"rating"`
	Reviews       int              `json:"reviews"`
	Image         string           `json:"image,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Validate checks the product invariants.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.Validation("name is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		return apperror.Validation("category is required")
	}
	if p.Price.IsNegative() {
		return apperror.Validation("price must not be negative")
	}
	if !money.InCents(p.Price) {
		return apperror.Validation("price must have at most 2 decimal places")
	}
	if p.OriginalPrice != nil && !money.InCents(*p.OriginalPrice) {
		return apperror.Validation("originalPrice must have at most 2 decimal places")
	}
	if p.OriginalPrice != nil && p.OriginalPrice.LessThan(p.Price) {
		return apperror.Validation("originalPrice must be greater than or equal to price")
	}
	if p.StockCount < 0 {
		return apperror.Validation("stockCount must not be negative")
	}
	if p.Rating < 0 || p.Rating > maxRating {
		return apperror.Validation("rating must be between 0 and 5")
	}
	if p.Reviews < 0 {
		return apperror.Validation("reviews must not be negative")
	}
	return nil
}

// Normalize trims text fields and recomputes InStock.
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.InStock = p.StockCount > 0
}

// CreateInput is the body accepted when an administrator adds a product.
type CreateInput struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Category      string           `json:"category"`
	StockCount    int              `json:"stockCount"`
	Rating        float64          `json:"rating"`
	Reviews       int              `json:"reviews"`
	Image         string           `json:"image,omitempty"`
}

// Build turns the input into a validated product without an identifier.
func (in CreateInput) Build(now time.Time) (*Product, error) {
	if in.Price == nil {
		return nil, apperror.Validation("price is required")
	}
	p := &Product{
		Name:          in.Name,
		Description:   in.Description,
		Price:         *in.Price,
		OriginalPrice: in.OriginalPrice,
		Category:      in.Category,
		StockCount:    in.StockCount,
		Rating:        in.Rating,
		Reviews:       in.Reviews,
		Image:         in.Image,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Category      *string          `json:"category,omitempty"`
	StockCount    *int             `json:"stockCount,omitempty"`
	Rating        *float64         `json:"rating,omitempty"`
	Reviews       *int             `json:"reviews,omitempty"`
	Image         *string          `json:"image,omitempty"`
}

// Apply writes the set fields of the patch onto p and recomputes InStock.
func (patch Patch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.OriginalPrice != nil {
		op := *patch.OriginalPrice
		p.OriginalPrice = &op
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.StockCount != nil {
		p.StockCount = *patch.StockCount
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.Reviews != nil {
		p.Reviews = *patch.Reviews
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	p.Normalize()
}

// Filter narrows a catalog listing. Zero values match everything.
type Filter struct {
	Category    string
	Search      string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
}

// Matches reports whether p passes the filter.
func (f Filter) Matches(p *Product) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.InStockOnly && !p.InStock {
		return false
	}
	return true
}

// SortField is a sortable product attribute.
type SortField string

const (
	SortByName      SortField = "name"
	SortByPrice     SortField = "price"
	SortByCreatedAt SortField = "createdAt"
	SortByRating    SortField = "rating"
)

// Sort orders a catalog listing.
type Sort struct {
	Field SortField
	Desc  bool
}

// DefaultSort lists products by name.
var DefaultSort = Sort{Field: SortByName}

// ParseSort parses "field" or "-field". An empty string yields DefaultSort.
func ParseSort(raw string) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSort, nil
	}
	s := Sort{}
	if strings.HasPrefix(raw, "-") {
		s.Desc = true
		raw = raw[1:]
	}
	switch SortField(raw) {
	case SortByName, SortByPrice, SortByCreatedAt, SortByRating:
		s.Field = SortField(raw)
	default:
		return Sort{}, apperror.Validation("unsupported sort %q", raw)
	}
	return s, nil
}

// Apply sorts products in place. Ties are broken by ID so the order is stable
// across calls.
func (s Sort) Apply(products []*Product) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		var cmp int
		switch s.Field {
		case SortByPrice:
			cmp = a.Price.Cmp(b.Price)
		case SortByCreatedAt:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		case SortByRating:
			switch {
			case a.Rating < b.Rating:
				cmp = -1
			case a.Rating > b.Rating:
				cmp = 1
			}
		default:
			cmp = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		if cmp == 0 {
			return a.ID < b.ID
		}
		if s.Desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// Repository is the catalog store contract.
type Repository interface {
	FindAll(ctx context.Context, filter Filter, sort Sort) ([]*Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	Insert(ctx context.Context, p *Product) (*Product, error)
	UpdateByID(ctx context.Context, id string, patch Patch) (*Product, error)
	DeleteByID(ctx context.Context, id string) error
	// AdjustStock adds delta to the stock count in a single write and fails
	// with ErrInsufficientStock when the result would be negative.
	AdjustStock(ctx context.Context, id string, delta int) (*Product, error)
}
