package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/kalakriti/storefront-api/internal/domain/coupon"
)

// ListCoupons returns every coupon, active or not.
func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, coupons)
}

// CreateCoupon inserts a new coupon. A missing ID is generated.
func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var c coupon.Coupon
	if !decodeBody(w, r, &c) {
		return
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	if err := h.coupons.Create(r.Context(), &c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, c)
}

// UpdateCoupon replaces an existing coupon. The path ID wins over any ID in
// the body.
func (h *Handler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var c coupon.Coupon
	if !decodeBody(w, r, &c) {
		return
	}
	c.ID = r.PathValue("id")

	if err := h.coupons.Update(r.Context(), &c); err != nil {
		if errors.Is(err, coupon.ErrInvalidCoupon) {
			writeError(w, r, http.StatusNotFound, "coupon not found")
			return
		}
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

// DeleteCoupon removes a coupon by ID.
func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, coupon.ErrInvalidCoupon) {
			writeError(w, r, http.StatusNotFound, "coupon not found")
			return
		}
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportCoupons bulk-imports a JSON array of coupons as exported from the
// admin panel's raw editor. Decoding is lenient: malformed fields are skipped
// with warnings rather than failing the whole import. Entries with an ID that
// already exists are updated in place. An entry the store rejects does not
// abort the rest; it is reported in the warnings alongside the counts so the
// caller knows exactly which entries landed.
func (h *Handler) ImportCoupons(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4<<20))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "read request body")
		return
	}

	report, err := coupon.ParseList(data)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	imported, failed := 0, 0
	warnings := report.Warnings
	for i := range report.Coupons {
		c := &report.Coupons[i]
		if c.ID == "" {
			c.ID = uuid.New().String()
		}

		err := h.coupons.Update(ctx, c)
		if errors.Is(err, coupon.ErrInvalidCoupon) {
			err = h.coupons.Create(ctx, c)
		}
		if err != nil {
			failed++
			warnings = append(warnings, fmt.Sprintf("coupon %q: not stored: %v", c.ID, err))
			continue
		}
		imported++
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"imported": imported,
		"failed":   failed,
		"warnings": warnings,
	})
}
