package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/user"
)

// Inventory is the catalog access order placement needs.
type Inventory interface {
	FindByID(ctx context.Context, id string) (*product.Product, error)
	AdjustStock(ctx context.Context, id string, delta int) (*product.Product, error)
}

// Users resolves purchasers.
type Users interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// PlaceInput is everything needed to place an order.
type PlaceInput struct {
	UserID          string          `json:"userId"`
	Items           []Line          `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
}

type Service struct {
	repo      Repository
	inventory Inventory
	users     Users
	publisher Publisher
	pricing   cart.Pricing
	policy    TransitionPolicy
	now       func() time.Time
}

// NewService returns a service with the permissive transition policy.
func NewService(repo Repository, inventory Inventory, users Users, publisher Publisher, pricing cart.Pricing) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Service{
		repo:      repo,
		inventory: inventory,
		users:     users,
		publisher: publisher,
		pricing:   pricing,
		policy:    Permissive,
		now:       time.Now,
	}
}

// WithPolicy replaces the transition policy.
func (s *Service) WithPolicy(policy TransitionPolicy) *Service {
	s.policy = policy
	return s
}

func validateLines(lines []Line) error {
	if len(lines) == 0 {
		return ErrEmptyOrder
	}
	seen := make(map[string]bool, len(lines))
	for i, line := range lines {
		id := strings.TrimSpace(line.ProductID)
		if id == "" {
			return apperror.Validation("items[%d].productId is required", i)
		}
		if line.Quantity < cart.MinQuantity || line.Quantity > cart.MaxQuantity {
			return apperror.Validation("items[%d].quantity must be between %d and %d", i, cart.MinQuantity, cart.MaxQuantity)
		}
		if seen[id] {
			return apperror.Validation("product %s appears more than once", id)
		}
		seen[id] = true
	}
	return nil
}

// Place validates the request against the catalog, decrements stock, and
// persists a pending order whose totals are frozen from catalog prices.
// Lines carrying a QuotedPrice must still match the catalog.
func (s *Service) Place(ctx context.Context, in PlaceInput) (*Order, error) {
	if err := validateLines(in.Items); err != nil {
		return nil, err
	}
	if err := in.ShippingAddress.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, apperror.Validation("userId is required")
	}

	purchaser, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Validation("user %s does not exist", in.UserID)
		}
		return nil, fmt.Errorf("find purchaser: %w", err)
	}

	items := make([]Item, 0, len(in.Items))
	subtotal := decimal.Zero
	for _, line := range in.Items {
		p, err := s.inventory.FindByID(ctx, strings.TrimSpace(line.ProductID))
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.Validation("product %s does not exist", line.ProductID)
			}
			return nil, fmt.Errorf("find product: %w", err)
		}
		if line.QuotedPrice != nil && !line.QuotedPrice.Equal(p.Price) {
			return nil, apperror.Conflict(fmt.Sprintf("price of %s changed from %s to %s", p.Name, *line.QuotedPrice, p.Price))
		}
		if p.StockCount < line.Quantity {
			return nil, apperror.Validation("insufficient stock for %s", p.Name)
		}
		item := Item{ProductID: p.ID, Name: p.Name, Quantity: line.Quantity, Price: p.Price}
		items = append(items, item)
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	if err := s.reserve(ctx, items); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	o := &Order{
		ID:              uuid.New().String(),
		UserID:          purchaser.ID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		Totals:          s.pricing.Quote(subtotal),
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, o); err != nil {
		s.release(ctx, items)
		return nil, fmt.Errorf("insert order: %w", err)
	}

	log.Printf("[Orders] Order placed: %s by %s (%d items, total %s)", o.ID, o.UserID, o.ItemCount(), o.Total)
	s.publish(ctx, o.ID, placedEvent(o))

	o.User = toPurchaser(purchaser)
	if err := s.populateProducts(ctx, o); err != nil {
		log.Printf("[Orders] Failed to populate products for order %s: %v", o.ID, err)
	}
	return o, nil
}

// reserve decrements stock line by line. If a line fails, the lines already
// decremented are restored before returning.
func (s *Service) reserve(ctx context.Context, items []Item) error {
	for i, item := range items {
		if _, err := s.inventory.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
			s.release(ctx, items[:i])
			if errors.Is(err, product.ErrInsufficientStock) {
				return apperror.Validation("insufficient stock for %s", item.Name)
			}
			return fmt.Errorf("decrement stock for %s: %w", item.ProductID, err)
		}
	}
	return nil
}

func (s *Service) release(ctx context.Context, items []Item) {
	for _, item := range items {
		if _, err := s.inventory.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("[Orders] Failed to restore %d units of %s: %v", item.Quantity, item.ProductID, err)
		}
	}
}

func (s *Service) publish(ctx context.Context, key string, event Event) {
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		log.Printf("[Orders] Failed to publish %s for order %s: %v", event.Type, key, err)
	}
}

// UpdateStatus sets the status of an order if the transition policy allows it.
func (s *Service) UpdateStatus(ctx context.Context, id, rawStatus string) (*Order, error) {
	next, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy(current.Status, next); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, next, s.now().UTC())
	if err != nil {
		return nil, err
	}

	log.Printf("[Orders] Order %s status changed: %s -> %s", id, current.Status, next)
	s.publish(ctx, id, Event{
		Type:           EventOrderStatusChanged,
		OrderID:        id,
		UserID:         updated.UserID,
		Status:         next,
		PreviousStatus: current.Status,
		Totals:         updated.Totals,
		OccurredAt:     updated.UpdatedAt,
	})

	if err := s.populate(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Get returns the order with its purchaser and products resolved.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// List returns matching orders newest first, populated.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Order, error) {
	orders, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	purchasers := make(map[string]*Purchaser)
	for _, o := range orders {
		p, ok := purchasers[o.UserID]
		if !ok {
			p, err = s.lookupPurchaser(ctx, o.UserID)
			if err != nil {
				return nil, err
			}
			purchasers[o.UserID] = p
		}
		o.User = p
		if err := s.populateProducts(ctx, o); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// Delete removes an order permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	log.Printf("[Orders] Order deleted: %s", id)
	s.publish(ctx, id, Event{
		Type:       EventOrderDeleted,
		OrderID:    id,
		UserID:     o.UserID,
		Status:     o.Status,
		Totals:     o.Totals,
		OccurredAt: s.now().UTC(),
	})
	return nil
}

func (s *Service) populate(ctx context.Context, o *Order) error {
	p, err := s.lookupPurchaser(ctx, o.UserID)
	if err != nil {
		return err
	}
	o.User = p
	return s.populateProducts(ctx, o)
}

// lookupPurchaser returns nil for a purchaser that no longer exists.
func (s *Service) lookupPurchaser(ctx context.Context, userID string) (*Purchaser, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find purchaser: %w", err)
	}
	return toPurchaser(u), nil
}

// populateProducts attaches the current catalog record to each line. Products
// deleted since the order was placed stay nil.
func (s *Service) populateProducts(ctx context.Context, o *Order) error {
	for i := range o.Items {
		p, err := s.inventory.FindByID(ctx, o.Items[i].ProductID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				o.Items[i].Product = nil
				continue
			}
			return fmt.Errorf("find product: %w", err)
		}
		o.Items[i].Product = p
	}
	return nil
}

func toPurchaser(u *user.User) *Purchaser {
	return &Purchaser{ID: u.ID, Username: u.Username, Email: u.Email}
}
