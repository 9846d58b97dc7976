// Package checkout prices carts and places orders. It is the only place that
// joins the catalog, the coupon engine, and order persistence.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kalakriti/storefront-api/internal/domain/cart"
	"github.com/kalakriti/storefront-api/internal/domain/coupon"
	"github.com/kalakriti/storefront-api/internal/domain/product"
)

// Sentinel errors for request validation.
var (
	ErrEmptyItems = errors.New("items required")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// OutOfStockError indicates the requested size has insufficient stock.
type OutOfStockError struct {
	ProductID string
	Size      string
}

func (e *OutOfStockError) Error() string {
	if e.Size == "" {
		return fmt.Sprintf("product %s is out of stock", e.ProductID)
	}
	return fmt.Sprintf("product %s size %s is out of stock", e.ProductID, e.Size)
}

// LineItem is one requested cart line.
type LineItem struct {
	ProductID string `json:"productId"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Request holds the input for quoting a cart or placing an order.
type Request struct {
	Items      []LineItem `json:"items"`
	CouponCode string     `json:"couponCode,omitempty"`
}

// Quote is a priced cart snapshot. Quoting never consumes coupon usage.
type Quote struct {
	Items          []cart.Item     `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discountAmount"`
	EffectiveTotal decimal.Decimal `json:"effectiveTotal"`
	TotalSavings   decimal.Decimal `json:"totalSavings"`
	Breakdown      string          `json:"breakdownText,omitempty"`
	CouponCode     string          `json:"couponCode,omitempty"`
}

// Order is a completed customer order with its pricing captured at placement.
type Order struct {
	ID           string          `json:"id"`
	Items        []cart.Item     `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discountAmount"`
	Total        decimal.Decimal `json:"total"`
	TotalSavings decimal.Decimal `json:"totalSavings"`
	CouponCode   string          `json:"couponCode,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Result holds the output of a successfully placed order.
type Result struct {
	Order    *Order
	Products []product.Product
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
}

// Service encapsulates cart pricing and order placement.
type Service struct {
	products product.Repository
	coupons  coupon.Validator
	orders   Repository

	tracer       trace.Tracer
	ordersPlaced metric.Int64Counter
}

// NewService creates a checkout Service with the required domain dependencies.
func NewService(
	products product.Repository,
	coupons coupon.Validator,
	orders Repository,
	tracer trace.Tracer,
	meter metric.Meter,
) (*Service, error) {
	ordersPlaced, err := meter.Int64Counter("storefront.orders.placed")
	if err != nil {
		return nil, errors.Wrap(err, "register orders counter")
	}
	return &Service{
		products:     products,
		coupons:      coupons,
		orders:       orders,
		tracer:       tracer,
		ordersPlaced: ordersPlaced,
	}, nil
}

// QuoteCart validates items, fetches products in a single batch, and applies
// the coupon in preview mode so repeated quoting never burns usage.
func (s *Service) QuoteCart(ctx context.Context, req Request) (*Quote, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.QuoteCart")
	defer span.End()

	items, _, err := s.buildCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	return s.price(ctx, items, req.CouponCode, s.coupons.Preview)
}

// PlaceOrder is QuoteCart with a committed coupon use and a persisted order.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.PlaceOrder")
	defer span.End()

	items, products, err := s.buildCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	q, err := s.price(ctx, items, req.CouponCode, s.coupons.Validate)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:           uuid.New().String(),
		Items:        q.Items,
		Subtotal:     q.Subtotal,
		Discount:     q.Discount,
		Total:        q.EffectiveTotal,
		TotalSavings: q.TotalSavings,
		CouponCode:   req.CouponCode,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	s.ordersPlaced.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("coupon", req.CouponCode != ""),
	))

	return &Result{
		Order:    o,
		Products: products,
	}, nil
}

type applyFunc func(ctx context.Context, code string, items []cart.Item) (*coupon.Result, error)

// price applies the coupon (if any) to the built cart and assembles a Quote.
func (s *Service) price(ctx context.Context, items []cart.Item, code string, apply applyFunc) (*Quote, error) {
	subtotal := cart.Subtotal(items)

	q := &Quote{
		Items:          items,
		Subtotal:       subtotal,
		Discount:       decimal.Zero,
		EffectiveTotal: subtotal,
		TotalSavings:   decimal.Zero,
		CouponCode:     code,
	}
	if code == "" {
		return q, nil
	}

	res, err := apply(ctx, code, items)
	if err != nil {
		return nil, errors.Wrap(err, "apply coupon")
	}

	for _, gift := range res.FreeItems {
		items = cart.AppendGift(items, gift)
	}

	q.Items = items
	q.Discount = res.Amount
	q.EffectiveTotal = res.EffectiveTotal
	q.TotalSavings = res.TotalSavings
	q.Breakdown = res.Breakdown
	return q, nil
}

// buildCart validates quantities, merges duplicate request lines, batch
// fetches all products in one query, checks per-size stock, and builds cart
// lines with display data captured.
func (s *Service) buildCart(ctx context.Context, lines []LineItem) ([]cart.Item, []product.Product, error) {
	if len(lines) == 0 {
		return nil, nil, ErrEmptyItems
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, nil, &InvalidQuantityError{ProductID: line.ProductID}
		}
	}
	lines = mergeLines(lines)

	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, errors.Wrap(err, "get products")
	}
	catalog := product.NewCatalog(fetched)

	items := make([]cart.Item, len(lines))
	products := make([]product.Product, len(lines))
	for i, line := range lines {
		p, ok := catalog.Lookup(line.ProductID)
		if !ok {
			return nil, nil, &ProductNotFoundError{ProductID: line.ProductID}
		}
		if !p.InStock(line.Size, line.Quantity) {
			return nil, nil, &OutOfStockError{ProductID: line.ProductID, Size: line.Size}
		}

		products[i] = p
		items[i] = cart.Item{
			ProductID: p.ID,
			Name:      p.Name,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Price:     p.Price,
			Image:     p.Image.Thumbnail,
		}
	}

	return items, products, nil
}

// mergeLines folds request lines naming the same (productID, size) into one,
// summing quantities, so the cart holds at most one item per pair. First
// occurrence keeps its position.
func mergeLines(lines []LineItem) []LineItem {
	type lineKey struct {
		productID string
		size      string
	}

	merged := make([]LineItem, 0, len(lines))
	index := make(map[lineKey]int, len(lines))
	for _, line := range lines {
		key := lineKey{productID: line.ProductID, size: line.Size}
		if i, ok := index[key]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[key] = len(merged)
		merged = append(merged, line)
	}
	return merged
}
