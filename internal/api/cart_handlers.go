package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
)

// CartIDHeader carries the cart of an anonymous shopper.
const CartIDHeader = "X-Cart-ID"

const guestCartPrefix = "guest-"

// resolveCartID picks the cart for the request: the signed-in user's cart,
// else the guest cart named by X-Cart-ID. A fresh guest ID is issued and
// echoed back when neither is present. Anonymous callers can only address
// guest carts.
func resolveCartID(w http.ResponseWriter, r *http.Request) (string, error) {
	if userID := middleware.GetUserID(r.Context()); userID != "" {
		return cart.CartIDForUser(userID), nil
	}
	id := strings.TrimSpace(r.Header.Get(CartIDHeader))
	if id == "" {
		id = guestCartPrefix + uuid.New().String()
		w.Header().Set(CartIDHeader, id)
		return id, nil
	}
	if !isGuestCartID(id) {
		return "", apperror.Validation("%s is invalid", CartIDHeader)
	}
	return id, nil
}

// isGuestCartID accepts only IDs of the form issued by resolveCartID.
func isGuestCartID(id string) bool {
	raw, ok := strings.CutPrefix(id, guestCartPrefix)
	if !ok {
		return false
	}
	parsed, err := uuid.Parse(raw)
	return err == nil && parsed.String() == raw
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID, err := resolveCartID(w, r)
	if err != nil {
		respondJSONError(w, err)
		return
	}

	c, err := h.carts.Get(r.Context(), cartID)
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.Summary())
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	cartID, err := resolveCartID(w, r)
	if err != nil {
		respondJSONError(w, err)
		return
	}

	var req struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, err)
		return
	}
	quantity := cart.MinQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	c, err := h.carts.AddItem(r.Context(), cartID, req.ProductID, quantity)
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.Summary())
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	cartID, err := resolveCartID(w, r)
	if err != nil {
		respondJSONError(w, err)
		return
	}

	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, err)
		return
	}
	if req.Quantity == nil {
		respondJSONError(w, apperror.Validation("quantity is required"))
		return
	}

	c, err := h.carts.SetQuantity(r.Context(), cartID, r.PathValue("productId"), *req.Quantity)
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.Summary())
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cartID, err := resolveCartID(w, r)
	if err != nil {
		respondJSONError(w, err)
		return
	}

	c, err := h.carts.RemoveItem(r.Context(), cartID, r.PathValue("productId"))
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.Summary())
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	cartID, err := resolveCartID(w, r)
	if err != nil {
		respondJSONError(w, err)
		return
	}

	if err := h.carts.Clear(r.Context(), cartID); err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart.New(cartID, h.carts.Pricing()).Summary())
}

// Checkout places an order from the signed-in user's cart.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, err)
		return
	}

	o, err := h.checkout.Checkout(r.Context(), cart.CartIDForUser(userID), userID, req.ShippingAddress)
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}
