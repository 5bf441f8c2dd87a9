package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/product"
)

var ErrInvalidProduct = apperror.New(apperror.KindValidation, "productId is required")

// Store persists carts by ID. Load returns (nil, nil) when no cart is stored.
type Store interface {
	Load(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
}

// Catalog is the product lookup the cart needs when adding a line.
type Catalog interface {
	FindByID(ctx context.Context, id string) (*product.Product, error)
}

type Service struct {
	store   Store
	catalog Catalog
	pricing Pricing
	now     func() time.Time
}

func NewService(store Store, catalog Catalog, pricing Pricing) *Service {
	return &Service{store: store, catalog: catalog, pricing: pricing, now: time.Now}
}

// Pricing returns the rules the service prices carts with.
func (s *Service) Pricing() Pricing {
	return s.pricing
}

// Get returns the cart stored under id, or an empty one.
func (s *Service) Get(ctx context.Context, id string) (*Cart, error) {
	c, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, apperror.Store("load cart", err)
	}
	if c == nil {
		return New(id, s.pricing), nil
	}
	c.ID = id
	c.pricing = s.pricing
	if c.Items == nil {
		c.Items = []Item{}
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, c); err != nil {
		return apperror.Store("save cart", err)
	}
	return nil
}

// AddItem snapshots the product from the catalog and merges it into the cart.
func (s *Service) AddItem(ctx context.Context, cartID, productID string, quantity int) (*Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, ErrInvalidProduct
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", productID, err)
	}
	if !p.InStock {
		return nil, apperror.Validation("product %s is out of stock", p.ID)
	}

	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := c.AddItem(p, quantity); err != nil {
		return nil, err
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) SetQuantity(ctx context.Context, cartID, productID string, quantity int) (*Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	c.SetQuantity(productID, quantity)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) RemoveItem(ctx context.Context, cartID, productID string) (*Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	c.RemoveItem(productID)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear deletes the stored cart.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	if err := s.store.Delete(ctx, cartID); err != nil {
		return apperror.Store("delete cart", err)
	}
	return nil
}

// Refresh re-snapshots every line from the catalog so the cart shows current
// names and prices. Lines whose product was deleted are dropped.
func (s *Service) Refresh(ctx context.Context, cartID string) (*Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	items := c.Items[:0]
	for _, item := range c.Items {
		p, err := s.catalog.FindByID(ctx, item.ProductID)
		if errors.Is(err, apperror.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find product %s: %w", item.ProductID, err)
		}
		item.Name = p.Name
		item.Price = p.Price
		item.Image = p.Image
		items = append(items, item)
	}
	c.Items = items
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
