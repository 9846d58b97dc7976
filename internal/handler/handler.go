// Package handler exposes the storefront HTTP API. Handlers decode requests,
// delegate to domain services, and map domain errors to HTTP status codes.
package handler

import (
	"net/http"

	"github.com/kalakriti/storefront-api/internal/domain/checkout"
	"github.com/kalakriti/storefront-api/internal/domain/coupon"
	"github.com/kalakriti/storefront-api/internal/domain/product"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string
}

// Handler serves the storefront API, delegating business logic to the
// injected domain services and repositories.
type Handler struct {
	products     product.Repository
	coupons      coupon.Store
	checkout     *checkout.Service
	imageBaseURL string
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products product.Repository,
	coupons coupon.Store,
	checkoutSvc *checkout.Service,
) *Handler {
	return &Handler{
		products:     products,
		coupons:      coupons,
		checkout:     checkoutSvc,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes registers all API routes on a fresh mux. Order placement and the
// admin surface are wrapped with the caller-provided security middlewares,
// one per permission scope.
func (h *Handler) Routes(orders, admin func(http.Handler) http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("POST /api/cart/quote", h.QuoteCart)
	mux.HandleFunc("POST /api/coupons/recommend", h.RecommendCoupons)
	mux.HandleFunc("POST /api/coupons/validate", h.ValidateCoupon)

	mux.Handle("POST /api/order", orders(http.HandlerFunc(h.PlaceOrder)))

	mux.Handle("GET /api/admin/coupons", admin(http.HandlerFunc(h.ListCoupons)))
	mux.Handle("POST /api/admin/coupons", admin(http.HandlerFunc(h.CreateCoupon)))
	mux.Handle("PUT /api/admin/coupons/{id}", admin(http.HandlerFunc(h.UpdateCoupon)))
	mux.Handle("DELETE /api/admin/coupons/{id}", admin(http.HandlerFunc(h.DeleteCoupon)))
	mux.Handle("POST /api/admin/coupons/import", admin(http.HandlerFunc(h.ImportCoupons)))

	return mux
}
