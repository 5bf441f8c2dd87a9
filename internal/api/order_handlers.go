package api

import (
	"net/http"
	"strings"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/order"
)

// Order Handlers

// PlaceOrder creates an order from a client-submitted line list. A signed-in
// customer always orders for themselves. Without a token the purchaser comes
// from the body, and an admin may order on behalf of any user.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var in order.PlaceInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondJSONError(w, err)
		return
	}

	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		if !claims.IsAdmin() || strings.TrimSpace(in.UserID) == "" {
			in.UserID = claims.UserID
		}
	}

	o, err := h.orders.Place(r.Context(), in)
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

// GetOrders lists orders newest first. Admins see every order and may filter
// by userId; everyone else sees only their own.
func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := order.Filter{}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := order.ParseStatus(raw)
		if err != nil {
			respondJSONError(w, err)
			return
		}
		filter.Status = status
	}
	if middleware.IsAdmin(r.Context()) {
		filter.UserID = strings.TrimSpace(q.Get("userId"))
	} else {
		filter.UserID = middleware.GetUserID(r.Context())
	}

	orders, err := h.orders.List(r.Context(), filter)
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondJSONError(w, err)
		return
	}

	// Authorization check: user can only access their own orders (admins can access all)
	if o.UserID != middleware.GetUserID(r.Context()) && !middleware.IsAdmin(r.Context()) {
		respondJSONError(w, apperror.Forbidden("forbidden"))
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondJSONError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Order deleted")
}
