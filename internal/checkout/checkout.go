// Package checkout turns a server-held cart into an order.
package checkout

import (
	"context"
	"errors"
	"log"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
)

type Service struct {
	carts  *cart.Service
	orders *order.Service
}

func NewService(carts *cart.Service, orders *order.Service) *Service {
	return &Service{carts: carts, orders: orders}
}

// Checkout places an order for userID from the cart stored under cartID and
// clears the cart once the order is persisted. Each line is placed at the
// price the cart quoted; if the catalog price moved since, no order is placed
// and the cart is re-priced so the shopper can review the new total.
func (s *Service) Checkout(ctx context.Context, cartID, userID string, address order.ShippingAddress) (*order.Order, error) {
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, order.ErrEmptyOrder
	}

	lines := make([]order.Line, len(c.Items))
	for i, item := range c.Items {
		quoted := item.Price
		lines[i] = order.Line{ProductID: item.ProductID, Quantity: item.Quantity, QuotedPrice: &quoted}
	}

	o, err := s.orders.Place(ctx, order.PlaceInput{
		UserID:          userID,
		Items:           lines,
		ShippingAddress: address,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			if _, refreshErr := s.carts.Refresh(ctx, cartID); refreshErr != nil {
				log.Printf("[Checkout] Failed to re-price cart %s: %v", cartID, refreshErr)
			}
		}
		return nil, err
	}

	if err := s.carts.Clear(ctx, cartID); err != nil {
		log.Printf("[Checkout] Order %s placed but cart %s was not cleared: %v", o.ID, cartID, err)
	}
	return o, nil
}
