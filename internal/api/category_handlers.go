package api

import (
	"net/http"
)

// GetCategories lists the categories present in the catalog with product
// counts, for the storefront navigation.
func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.Categories(r.Context())
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
