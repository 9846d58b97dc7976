package coupon

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kalakriti/storefront-api/internal/domain/cart"
	"github.com/kalakriti/storefront-api/internal/domain/product"
)

var hundred = decimal.NewFromInt(100)

// Result holds the outcome of a discount computation. It is a derived,
// ephemeral value: recomputed whenever the cart or selected coupon changes,
// never persisted on its own.
type Result struct {
	// Amount is the monetary discount in whole rupees, never negative.
	Amount decimal.Decimal `json:"discountAmount"`
	// FreeItems are gift items the caller should add to the cart
	// (append-if-absent; see cart.AppendGift).
	FreeItems []cart.Item `json:"freeItems,omitempty"`
	// Breakdown explains how the discount was derived, shown to the shopper.
	Breakdown string `json:"breakdownText"`
	// EffectiveTotal is subtotal minus Amount, floored at zero.
	EffectiveTotal decimal.Decimal `json:"effectiveTotal"`
	// TotalSavings is Amount plus the gift value of all free items.
	TotalSavings decimal.Decimal `json:"totalSavings"`
	// GiftValue is the summed gift value of the free items.
	GiftValue decimal.Decimal `json:"giftValue"`
}

// Compute calculates the discount a coupon yields against a cart snapshot.
//
// The caller is responsible for prior eligibility checks (active flag, expiry,
// usage limit); Compute only determines magnitude. subtotal is the pre-discount
// sum of non-gift line totals, computed by the caller. Ineligibility against
// quantity thresholds is not an error: it yields a zero discount with an
// explanatory breakdown.
//
// Compute is pure: identical inputs yield identical results and no argument
// is mutated.
func Compute(c Coupon, items []cart.Item, catalog product.Catalog, subtotal decimal.Decimal) Result {
	c = c.normalized()

	var (
		amount    decimal.Decimal
		free      []cart.Item
		breakdown string
	)

	switch c.Kind {
	case KindPercentage:
		amount, breakdown = percentageDiscount(c, subtotal)
	case KindFixed:
		// Taken verbatim; may exceed the subtotal. The effective total is
		// floored at zero below, the discount amount itself is not clamped.
		amount = c.Value
		breakdown = fmt.Sprintf("%s off", rupees(c.Value))
	case KindSpecial:
		amount, breakdown = specialDiscount(c, items, subtotal)
	case KindGift:
		amount, free, breakdown = giftDiscount(c, catalog, subtotal)
	default:
		// Unknown kind: no effect.
	}

	amount = floorAtZero(amount).Round(0)

	effective := subtotal.Sub(amount)
	if effective.IsNegative() {
		effective = decimal.Zero
	}

	giftValue := cart.GiftValueTotal(free)

	return Result{
		Amount:         amount,
		FreeItems:      free,
		Breakdown:      breakdown,
		EffectiveTotal: effective,
		TotalSavings:   amount.Add(giftValue),
		GiftValue:      giftValue,
	}
}

// percentageDiscount applies Value percent of the subtotal, clamped to
// MaxDiscount when set. The cap is called out in the breakdown.
func percentageDiscount(c Coupon, subtotal decimal.Decimal) (decimal.Decimal, string) {
	raw := subtotal.Mul(c.Value).Div(hundred)
	if c.MaxDiscount.IsPositive() && raw.GreaterThan(c.MaxDiscount) {
		return c.MaxDiscount, fmt.Sprintf("%s%% off (capped at %s)", c.Value.String(), rupees(c.MaxDiscount))
	}
	return raw, fmt.Sprintf("%s%% off", c.Value.String())
}

// specialDiscount dispatches on the promotional pattern of a special coupon.
func specialDiscount(c Coupon, items []cart.Item, subtotal decimal.Decimal) (decimal.Decimal, string) {
	switch c.SpecialKind {
	case SpecialBuyXGetY:
		return buyXGetYDiscount(c, items)
	case SpecialBundle:
		return bundleDiscount(c, items, subtotal)
	default:
		return decimal.Zero, ""
	}
}

// buyXGetYDiscount makes the freeCount cheapest units free once the cart holds
// at least threshold units. The cheapest-units tie-break is the promotion
// policy: always discount the least valuable units.
func buyXGetYDiscount(c Coupon, items []cart.Item) (decimal.Decimal, string) {
	threshold, freeCount, ok := c.offerShape()
	if !ok || freeCount <= 0 {
		return decimal.Zero, ""
	}

	totalQty := cart.TotalQuantity(items)
	if totalQty < threshold {
		return decimal.Zero, fmt.Sprintf("Add %d more item(s) to unlock %s", threshold-totalQty, c.Title)
	}

	units := cart.UnitPrices(items)
	if freeCount > len(units) {
		freeCount = len(units)
	}

	amount := decimal.Zero
	for _, u := range units[:freeCount] {
		amount = amount.Add(u)
	}
	return amount, fmt.Sprintf("%s: %d item(s) free (%s off)", c.Title, freeCount, rupees(amount))
}

// bundleDiscount discounts the whole order once the cart holds MinQuantity
// units. Value < 100 reads as a percentage, >= 100 as a flat rupee amount.
// That is intentional coupon-authoring shorthand, not a bug.
func bundleDiscount(c Coupon, items []cart.Item, subtotal decimal.Decimal) (decimal.Decimal, string) {
	totalQty := cart.TotalQuantity(items)
	if c.MinQuantity > 0 && totalQty < c.MinQuantity {
		return decimal.Zero, fmt.Sprintf("Add %d more item(s) to unlock this bundle offer", c.MinQuantity-totalQty)
	}
	return splitValue(c.Value, subtotal)
}

// giftDiscount combines an optional monetary discount (same magnitude
// shorthand as bundles) with an optional free item gated on MinAmount.
func giftDiscount(c Coupon, catalog product.Catalog, subtotal decimal.Decimal) (decimal.Decimal, []cart.Item, string) {
	var (
		amount = decimal.Zero
		free   []cart.Item
		parts  []string
	)

	if c.Value.IsPositive() {
		var clause string
		amount, clause = splitValue(c.Value, subtotal)
		if clause != "" {
			parts = append(parts, clause)
		}
	}

	if c.MinAmount.IsZero() || subtotal.GreaterThanOrEqual(c.MinAmount) {
		item := c.giftItem(catalog)
		free = append(free, item)
		parts = append(parts, fmt.Sprintf("Free gift: %s", item.Name))
	}

	return amount, free, strings.Join(parts, " + ")
}

// giftItem synthesizes the free cart item for a gift coupon. A product gift
// whose ID misses the catalog degrades to a generic mystery gift rather than
// failing.
func (c Coupon) giftItem(catalog product.Catalog) cart.Item {
	if c.GiftKind == GiftProduct && c.GiftProductID != "" {
		if p, ok := catalog.Lookup(c.GiftProductID); ok {
			value := c.GiftValue
			if !value.IsPositive() {
				value = p.Price
			}
			return cart.Item{
				ProductID:  p.ID,
				Name:       p.Name,
				Quantity:   1,
				Price:      decimal.Zero,
				Image:      p.Image.Thumbnail,
				IsFreeGift: true,
				GiftValue:  value,
			}
		}
		return cart.Item{
			ProductID:  "gift:" + c.ID,
			Name:       DefaultGiftName,
			Quantity:   1,
			Price:      decimal.Zero,
			Image:      DefaultGiftImage,
			IsFreeGift: true,
			GiftValue:  c.GiftValue,
		}
	}

	// Mystery, custom, or unset gift kind.
	return cart.Item{
		ProductID:  "gift:" + c.ID,
		Name:       c.GiftDescription,
		Quantity:   1,
		Price:      decimal.Zero,
		Image:      c.GiftImage,
		IsFreeGift: true,
		GiftValue:  c.GiftValue,
	}
}

// splitValue interprets a coupon value by magnitude: below 100 it is a
// percentage of the subtotal, at or above 100 a flat rupee amount.
func splitValue(value, subtotal decimal.Decimal) (decimal.Decimal, string) {
	if !value.IsPositive() {
		return decimal.Zero, ""
	}
	if value.LessThan(hundred) {
		return subtotal.Mul(value).Div(hundred), fmt.Sprintf("%s%% off", value.String())
	}
	return value, fmt.Sprintf("%s off", rupees(value))
}

// rupees formats a decimal as a whole-rupee amount with the currency glyph.
func rupees(d decimal.Decimal) string {
	return "₹" + d.Round(0).String()
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
