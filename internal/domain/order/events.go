package order

import (
	"context"
	"time"

	"github.com/example/storefront/internal/domain/cart"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderDeleted       = "OrderDeleted"
)

// Event is the message published for every order change.
type Event struct {
	Type           string `json:"type"`
	OrderID        string `json:"orderId"`
	UserID         string `json:"userId"`
	Status         Status `json:"status,omitempty"`
	PreviousStatus Status `json:"previousStatus,omitempty"`
	Items          []Item `json:"items,omitempty"`
	cart.Totals
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher delivers events keyed by order ID.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func placedEvent(o *Order) Event {
	items := make([]Item, len(o.Items))
	for i, item := range o.Items {
		item.Product = nil
		items[i] = item
	}
	return Event{
		Type:       EventOrderPlaced,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Items:      items,
		Totals:     o.Totals,
		OccurredAt: o.CreatedAt,
	}
}
