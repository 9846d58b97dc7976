package handler

import (
	"net/http"

	"github.com/kalakriti/storefront-api/internal/domain/checkout"
)

type orderResponse struct {
	Order    *checkout.Order   `json:"order"`
	Products []productResponse `json:"products"`
}

// PlaceOrder places an order for the posted cart, committing coupon usage and
// persisting the priced snapshot.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.checkout.PlaceOrder(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	products := make([]productResponse, len(result.Products))
	for i, p := range result.Products {
		products[i] = h.toProductResponse(p)
	}

	writeJSON(w, r, http.StatusCreated, orderResponse{
		Order:    result.Order,
		Products: products,
	})
}
