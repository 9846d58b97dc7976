package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/kalakriti/storefront-api/internal/domain/checkout"
	"github.com/kalakriti/storefront-api/internal/domain/coupon"
)

// apiError is the uniform error body for every non-2xx response.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, apiError{Code: status, Message: message})
}

// writeDomainError maps checkout and coupon domain errors onto HTTP statuses.
// Unknown errors become an opaque 500 and are logged with their cause.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyItems):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, coupon.ErrInvalidCoupon):
		writeError(w, r, http.StatusUnprocessableEntity, "invalid coupon code")
		return
	case errors.Is(err, coupon.ErrCouponExpired):
		writeError(w, r, http.StatusUnprocessableEntity, "coupon has expired")
		return
	case errors.Is(err, coupon.ErrUsageLimitReached):
		writeError(w, r, http.StatusUnprocessableEntity, "coupon usage limit reached")
		return
	case errors.Is(err, coupon.ErrMinAmountNotMet):
		writeError(w, r, http.StatusUnprocessableEntity, "order total below coupon minimum")
		return
	}

	var iqErr *checkout.InvalidQuantityError
	if errors.As(err, &iqErr) {
		writeError(w, r, http.StatusUnprocessableEntity, iqErr.Error())
		return
	}

	var pnfErr *checkout.ProductNotFoundError
	if errors.As(err, &pnfErr) {
		writeError(w, r, http.StatusUnprocessableEntity, pnfErr.Error())
		return
	}

	var oosErr *checkout.OutOfStockError
	if errors.As(err, &oosErr) {
		writeError(w, r, http.StatusUnprocessableEntity, oosErr.Error())
		return
	}

	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "internal error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
