package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kalakriti/storefront-api/internal/domain/cart"
	"github.com/kalakriti/storefront-api/internal/domain/checkout"
	"github.com/kalakriti/storefront-api/internal/domain/coupon"
)

type validateCouponRequest struct {
	Code       string          `json:"code"`
	OrderTotal decimal.Decimal `json:"orderTotal"`
}

// ValidateCoupon checks a typed-in code against the active coupon list and an
// order total. Failures come back as 200 with valid=false; the endpoint is a
// form helper, not an enforcement point.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if !decodeBody(w, r, &req) {
		return
	}

	coupons, err := h.coupons.ListActive(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := coupon.ValidateCode(req.Code, req.OrderTotal, coupons, time.Now())
	writeJSON(w, r, http.StatusOK, res)
}

type recommendRequest struct {
	Items []checkout.LineItem `json:"items"`
}

type recommendedCoupon struct {
	Code             string `json:"code"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	AdminRecommended bool   `json:"adminRecommended,omitempty"`
}

// RecommendCoupons prices the posted cart and returns the coupons worth
// showing, best first. Hidden coupons stay out of the response even when
// they would apply.
func (h *Handler) RecommendCoupons(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if !decodeBody(w, r, &req) {
		return
	}

	quote, err := h.checkout.QuoteCart(r.Context(), checkout.Request{Items: req.Items})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	coupons, err := h.coupons.ListActive(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	ranked := coupon.Recommend(quote.Items, coupons, quote.Subtotal, cart.TotalQuantity(quote.Items))

	out := make([]recommendedCoupon, 0, len(ranked))
	for _, c := range ranked {
		if !c.IsVisible {
			continue
		}
		out = append(out, recommendedCoupon{
			Code:             c.Code,
			Title:            c.Title,
			Description:      c.Description,
			AdminRecommended: c.AdminRecommended,
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

// QuoteCart prices a cart with an optional coupon without placing an order or
// consuming coupon usage.
func (h *Handler) QuoteCart(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if !decodeBody(w, r, &req) {
		return
	}

	quote, err := h.checkout.QuoteCart(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, quote)
}
