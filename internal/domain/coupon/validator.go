package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/kalakriti/storefront-api/internal/domain/cart"
	"github.com/kalakriti/storefront-api/internal/domain/product"
)

// Validation is the outcome of checking a typed-in coupon code against an
// order total. Failure is data, not an error: promotional pricing is advisory.
type Validation struct {
	Valid    bool            `json:"valid"`
	Discount decimal.Decimal `json:"discount"`
	Message  string          `json:"message"`
}

// ValidateCode looks up a coupon by exact code match among active coupons and
// runs the eligibility checks in order, short-circuiting on the first failure:
// existence, expiry, minimum amount, usage limit. On success it computes the
// percentage/fixed discount shape only; special and gift complexity is the
// engine's job, not this entry point's.
func ValidateCode(code string, orderTotal decimal.Decimal, coupons []Coupon, now time.Time) Validation {
	var found *Coupon
	for i := range coupons {
		if coupons[i].Active && coupons[i].Code == code {
			found = &coupons[i]
			break
		}
	}
	if found == nil {
		return Validation{Message: "Invalid coupon code"}
	}

	c := found.normalized()

	if c.Expired(now) {
		return Validation{Message: "Coupon has expired"}
	}

	if c.MinAmount.IsPositive() && orderTotal.LessThan(c.MinAmount) {
		shortfall := c.MinAmount.Sub(orderTotal)
		return Validation{Message: fmt.Sprintf("Add %s more to use this coupon", rupees(shortfall))}
	}

	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return Validation{Message: "Coupon usage limit reached"}
	}

	var amount decimal.Decimal
	switch c.Kind {
	case KindPercentage:
		amount, _ = percentageDiscount(c, orderTotal)
	case KindFixed:
		amount = c.Value
	}
	amount = floorAtZero(amount).Round(0)

	return Validation{
		Valid:    true,
		Discount: amount,
		Message:  fmt.Sprintf("Coupon applied: %s", c.Title),
	}
}

// Validator validates a coupon code against a cart snapshot and returns the
// full computed discount.
type Validator interface {
	// Preview computes the discount without consuming a use.
	Preview(ctx context.Context, code string, items []cart.Item) (*Result, error)
	// Validate computes the discount and increments the coupon's usage counter.
	Validate(ctx context.Context, code string, items []cart.Item) (*Result, error)
}

// RepoValidator implements Validator by looking up coupons from a Repository
// and computing discounts via Compute. Gift products are resolved through the
// product repository so a gift outside the cart still prices correctly.
type RepoValidator struct {
	repo     Repository
	products product.Repository
	now      func() time.Time
}

var _ Validator = (*RepoValidator)(nil)

// NewRepoValidator creates a RepoValidator backed by the given repositories.
func NewRepoValidator(repo Repository, products product.Repository) *RepoValidator {
	return &RepoValidator{repo: repo, products: products, now: time.Now}
}

// Preview looks up the coupon for the given code, checks expiry, usage limit,
// and minimum amount, then computes the discount against the cart. Quantity
// thresholds are not errors; they surface as a zero discount with an
// explanatory breakdown inside the Result.
func (v *RepoValidator) Preview(ctx context.Context, code string, items []cart.Item) (*Result, error) {
	c, err := v.lookup(ctx, code, items)
	if err != nil {
		return nil, err
	}

	res := Compute(*c, items, v.giftCatalog(ctx, *c), cart.Subtotal(items))
	return &res, nil
}

// Validate is Preview plus a usage counter increment.
func (v *RepoValidator) Validate(ctx context.Context, code string, items []cart.Item) (*Result, error) {
	c, err := v.lookup(ctx, code, items)
	if err != nil {
		return nil, err
	}

	res := Compute(*c, items, v.giftCatalog(ctx, *c), cart.Subtotal(items))

	if err := v.repo.IncrementUses(ctx, c.ID); err != nil {
		return nil, errors.Wrap(err, "increment coupon uses")
	}
	return &res, nil
}

// giftCatalog fetches the coupon's gift product, if it names one. A missing
// or unfetchable product yields an empty catalog and the engine degrades the
// gift instead of failing the whole validation.
func (v *RepoValidator) giftCatalog(ctx context.Context, c Coupon) product.Catalog {
	if c.Kind != KindGift || c.GiftProductID == "" || v.products == nil {
		return nil
	}
	fetched, err := v.products.GetByIDs(ctx, []string{c.GiftProductID})
	if err != nil {
		return nil
	}
	return product.NewCatalog(fetched)
}

func (v *RepoValidator) lookup(ctx context.Context, code string, items []cart.Item) (*Coupon, error) {
	c, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCoupon) {
			return nil, ErrInvalidCoupon
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	if c.Expired(v.now()) {
		return nil, ErrCouponExpired
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return nil, ErrUsageLimitReached
	}
	if c.MinAmount.IsPositive() && cart.Subtotal(items).LessThan(c.MinAmount) {
		return nil, ErrMinAmountNotMet
	}
	return c, nil
}
