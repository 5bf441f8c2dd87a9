package notification

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/email"
)

// Mailer sends the customer-facing order emails
type Mailer interface {
	SendOrderConfirmation(to string, summary email.OrderSummary) error
	SendStatusChanged(to, orderID, previous, status string) error
	SendOrderDeleted(to, orderID string) error
}

// Users resolves the recipient of an order event
type Users interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// Handler processes order events for sending notifications
type Handler struct {
	mailer Mailer
	users  Users
}

// NewHandler creates a new notification handler
func NewHandler(mailer Mailer, users Users) *Handler {
	return &Handler{mailer: mailer, users: users}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event order.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch event.Type {
	case order.EventOrderPlaced:
		return h.handleOrderPlaced(ctx, event)
	case order.EventOrderStatusChanged:
		return h.handleStatusChanged(ctx, event)
	case order.EventOrderDeleted:
		return h.handleOrderDeleted(ctx, event)
	}
	return nil
}

// recipient returns "" when the purchaser no longer exists.
func (h *Handler) recipient(ctx context.Context, userID string) (string, error) {
	u, err := h.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			log.Printf("[Notifier] User not found: %s", userID)
			return "", nil
		}
		return "", err
	}
	return u.Email, nil
}

func (h *Handler) handleOrderPlaced(ctx context.Context, e order.Event) error {
	log.Printf("[Notifier] Processing OrderPlaced event for order %s, user %s", e.OrderID, e.UserID)

	to, err := h.recipient(ctx, e.UserID)
	if err != nil || to == "" {
		return err
	}

	summary := email.OrderSummary{
		OrderID:     e.OrderID,
		Items:       make([]email.OrderItem, len(e.Items)),
		Subtotal:    e.Subtotal,
		ShippingFee: e.ShippingFee,
		Tax:         e.Tax,
		Total:       e.Total,
		Currency:    e.Currency,
	}
	for i, item := range e.Items {
		summary.Items[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	if err := h.mailer.SendOrderConfirmation(to, summary); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", to, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", to, e.OrderID)
	return nil
}

func (h *Handler) handleStatusChanged(ctx context.Context, e order.Event) error {
	to, err := h.recipient(ctx, e.UserID)
	if err != nil || to == "" {
		return err
	}

	if err := h.mailer.SendStatusChanged(to, e.OrderID, string(e.PreviousStatus), string(e.Status)); err != nil {
		log.Printf("[Notifier] Failed to send status email to %s: %v", to, err)
		return err
	}

	log.Printf("[Notifier] Status email sent to %s for order %s (%s)", to, e.OrderID, e.Status)
	return nil
}

func (h *Handler) handleOrderDeleted(ctx context.Context, e order.Event) error {
	to, err := h.recipient(ctx, e.UserID)
	if err != nil || to == "" {
		return err
	}

	if err := h.mailer.SendOrderDeleted(to, e.OrderID); err != nil {
		log.Printf("[Notifier] Failed to send deletion email to %s: %v", to, err)
		return err
	}

	log.Printf("[Notifier] Deletion email sent to %s for order %s", to, e.OrderID)
	return nil
}
