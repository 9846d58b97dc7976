// Package coupon implements the storefront discount engine: coupon rules,
// cart discount computation, coupon recommendation, and code validation.
//
// Coupons are hand-edited as raw JSON in the admin panel, so every entry
// point in this package tolerates malformed or partial coupon data. Missing
// numeric fields default to zero and missing optional fields disable their
// associated effect; nothing here panics on bad input.
package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind discriminates the discount shape of a coupon.
type Kind string

const (
	// KindPercentage discounts a percentage of the subtotal, optionally capped.
	KindPercentage Kind = "percentage"
	// KindFixed discounts a flat rupee amount, taken verbatim.
	KindFixed Kind = "fixed"
	// KindSpecial covers promotional patterns: buy-X-get-Y and bundles.
	KindSpecial Kind = "special"
	// KindGift can both discount the order and add a free item to the cart.
	KindGift Kind = "gift"
)

// SpecialKind selects the promotional pattern of a KindSpecial coupon.
type SpecialKind string

const (
	// SpecialBuyXGetY makes the cheapest units free once a quantity threshold is met.
	SpecialBuyXGetY SpecialKind = "buyXgetY"
	// SpecialBundle discounts the whole order once a quantity threshold is met.
	SpecialBundle SpecialKind = "bundle"
)

// GiftKind selects the identity of a gift coupon's free item.
type GiftKind string

const (
	// GiftProduct references a catalog product by ID.
	GiftProduct GiftKind = "product"
	// GiftMystery is a generic surprise item.
	GiftMystery GiftKind = "mystery"
	// GiftCustom is a merchant-described item outside the catalog.
	GiftCustom GiftKind = "custom"
)

// Defaults applied by normalized() when optional gift fields are absent.
const (
	DefaultGiftName  = "Mystery Gift"
	DefaultGiftImage = "/images/gifts/mystery.png"
)

// Sentinel errors for coupon lookup and eligibility.
var (
	// ErrInvalidCoupon is returned when a coupon code is not found among
	// active coupons.
	ErrInvalidCoupon = errors.New("invalid coupon code")
	// ErrCouponExpired is returned when a coupon's valid-until date has passed.
	ErrCouponExpired = errors.New("coupon expired")
	// ErrUsageLimitReached is returned when a coupon has exhausted its allowed uses.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
	// ErrMinAmountNotMet is returned when the order subtotal is below the
	// coupon's minimum amount threshold.
	ErrMinAmountNotMet = errors.New("minimum order amount not met")
)

// Coupon is a named discount rule. Exactly one discount shape is active based
// on Kind (and SpecialKind / GiftKind); fields irrelevant to the active shape
// are ignored by the engine but still round-trip through storage and the
// admin editor.
type Coupon struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Kind        Kind            `json:"type"`
	Value       decimal.Decimal `json:"discount"`
	MaxDiscount decimal.Decimal `json:"maxDiscount,omitempty"`
	MinAmount   decimal.Decimal `json:"minAmount,omitempty"`
	MinQuantity int             `json:"minQuantity,omitempty"`
	ValidUntil  *time.Time      `json:"validUntil,omitempty"`

	Active           bool `json:"active"`
	UsageLimit       int  `json:"usageLimit,omitempty"`
	UsedCount        int  `json:"usedCount,omitempty"`
	IsVisible        bool `json:"isVisible"`
	AdminRecommended bool `json:"adminRecommended,omitempty"`

	// Special coupon fields (Kind == KindSpecial).
	SpecialKind SpecialKind `json:"specialType,omitempty"`
	BuyQuantity int         `json:"buyQuantity,omitempty"`
	GetQuantity int         `json:"getQuantity,omitempty"`

	// Gift coupon fields (Kind == KindGift).
	GiftKind        GiftKind        `json:"giftType,omitempty"`
	GiftProductID   string          `json:"giftProductId,omitempty"`
	GiftDescription string          `json:"giftDescription,omitempty"`
	GiftImage       string          `json:"giftImage,omitempty"`
	GiftValue       decimal.Decimal `json:"giftValue,omitempty"`
}

// Expired reports whether the coupon's valid-until date has passed.
// Coupons without a valid-until date never expire.
func (c Coupon) Expired(now time.Time) bool {
	return c.ValidUntil != nil && now.After(*c.ValidUntil)
}

// normalized returns a copy of the coupon with the engine's defaulting table
// applied. This is the single place documenting what missing or invalid
// fields degrade to:
//
//	negative Value/MaxDiscount/MinAmount/GiftValue  -> zero (no effect)
//	negative MinQuantity/BuyQuantity/GetQuantity    -> zero (no threshold)
//	empty GiftDescription                           -> DefaultGiftName
//	empty GiftImage                                 -> DefaultGiftImage
//
// The GiftValue fallback to the referenced product's price happens at gift
// synthesis time since it needs a catalog lookup.
func (c Coupon) normalized() Coupon {
	if c.Value.IsNegative() {
		c.Value = decimal.Zero
	}
	if c.MaxDiscount.IsNegative() {
		c.MaxDiscount = decimal.Zero
	}
	if c.MinAmount.IsNegative() {
		c.MinAmount = decimal.Zero
	}
	if c.GiftValue.IsNegative() {
		c.GiftValue = decimal.Zero
	}
	if c.MinQuantity < 0 {
		c.MinQuantity = 0
	}
	if c.BuyQuantity < 0 {
		c.BuyQuantity = 0
	}
	if c.GetQuantity < 0 {
		c.GetQuantity = 0
	}
	if c.GiftDescription == "" {
		c.GiftDescription = DefaultGiftName
	}
	if c.GiftImage == "" {
		c.GiftImage = DefaultGiftImage
	}
	return c
}

// Repository provides lookup of coupons from the coupon store.
type Repository interface {
	// FindByCode returns the active coupon with the given code, or
	// ErrInvalidCoupon when none exists.
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	// ListActive returns all active coupons.
	ListActive(ctx context.Context) ([]Coupon, error)
	// IncrementUses atomically bumps the usage counter for the coupon ID.
	IncrementUses(ctx context.Context, id string) error
}

// Store extends Repository with the admin CRUD surface.
type Store interface {
	Repository

	List(ctx context.Context) ([]Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id string) error
}
