package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/money"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	products *product.Service
	orders   *order.Service
	carts    *cart.Service
	checkout *checkout.Service
}

func NewHandlers(products *product.Service, orders *order.Service, carts *cart.Service, checkout *checkout.Service) *Handlers {
	return &Handlers{
		products: products,
		orders:   orders,
		carts:    carts,
		checkout: checkout,
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	filter, sort, err := parseProductQuery(r)
	if err != nil {
		respondJSONError(w, err)
		return
	}

	products, err := h.products.List(r.Context(), filter, sort)
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func parseProductQuery(r *http.Request) (product.Filter, product.Sort, error) {
	q := r.URL.Query()
	filter := product.Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	for _, bound := range []struct {
		key string
		dst **decimal.Decimal
	}{
		{"minPrice", &filter.MinPrice},
		{"maxPrice", &filter.MaxPrice},
	} {
		raw := strings.TrimSpace(q.Get(bound.key))
		if raw == "" {
			continue
		}
		d, err := money.Parse(raw)
		if err != nil {
			return product.Filter{}, product.Sort{}, apperror.Validation("%s must be a decimal amount", bound.key)
		}
		*bound.dst = &d
	}
	if raw := strings.TrimSpace(q.Get("inStock")); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			return product.Filter{}, product.Sort{}, apperror.Validation("inStock must be true or false")
		}
		filter.InStockOnly = inStock
	}

	sort, err := product.ParseSort(q.Get("sort"))
	if err != nil {
		return product.Filter{}, product.Sort{}, err
	}
	return filter, sort, nil
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondJSONError(w, err)
		return
	}

	p, err := h.products.Create(r.Context(), in)
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch product.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondJSONError(w, err)
		return
	}

	p, err := h.products.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondJSONError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Product deleted")
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondJSONError renders err as {"error": message}. Store failures are
// logged with their cause and shown to the client as a generic message.
func respondJSONError(w http.ResponseWriter, err error) {
	status := apperror.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] Internal error: %v", err)
	}
	respondJSON(w, status, map[string]string{"error": apperror.PublicMessage(err)})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperror.Validation("request body is required")
		case errors.As(err, &maxErr):
			return apperror.Validation("request body is too large")
		default:
			return apperror.Validation("invalid request body")
		}
	}
	return nil
}
