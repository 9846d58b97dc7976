package coupon

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kalakriti/storefront-api/internal/domain/cart"
)

// Recommend filters the coupon list down to offers worth showing for the
// current cart and ranks them. Only active coupons are considered; a coupon
// whose eligibility predicate fails is dropped unless it is admin-recommended
// (editorial override). Admin-recommended coupons sort first, the rest by
// estimated savings descending; ties keep their original order.
//
// Estimated savings is a cheap ranking approximation of Compute, never the
// charged amount. Inputs are not mutated.
func Recommend(items []cart.Item, coupons []Coupon, subtotal decimal.Decimal, totalItems int) []Coupon {
	type ranked struct {
		c       Coupon
		savings decimal.Decimal
	}

	eligible := make([]ranked, 0, len(coupons))
	for _, c := range coupons {
		if !c.Active {
			continue
		}
		if !c.AdminRecommended && !eligibleNow(c, subtotal, totalItems) {
			continue
		}
		eligible = append(eligible, ranked{c: c, savings: estimateSavings(c, items, subtotal)})
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].c.AdminRecommended != eligible[j].c.AdminRecommended {
			return eligible[i].c.AdminRecommended
		}
		return eligible[i].savings.GreaterThan(eligible[j].savings)
	})

	out := make([]Coupon, len(eligible))
	for i, r := range eligible {
		out[i] = r.c
	}
	return out
}

// eligibleNow checks the kind-specific eligibility predicate against the
// current cart state.
func eligibleNow(c Coupon, subtotal decimal.Decimal, totalItems int) bool {
	switch c.Kind {
	case KindPercentage, KindFixed, KindGift:
		return c.MinAmount.IsZero() || subtotal.GreaterThanOrEqual(c.MinAmount)
	case KindSpecial:
		threshold := c.MinQuantity
		if threshold == 0 && c.SpecialKind == SpecialBuyXGetY {
			if t, _, ok := c.offerShape(); ok {
				threshold = t
			}
		}
		return totalItems >= threshold
	default:
		return false
	}
}

// estimateSavings approximates what the coupon would save on the current cart.
// Used for ranking only.
func estimateSavings(c Coupon, items []cart.Item, subtotal decimal.Decimal) decimal.Decimal {
	c = c.normalized()

	switch c.Kind {
	case KindPercentage:
		raw := subtotal.Mul(c.Value).Div(hundred)
		if c.MaxDiscount.IsPositive() && raw.GreaterThan(c.MaxDiscount) {
			return c.MaxDiscount
		}
		return raw
	case KindFixed:
		return decimal.Min(c.Value, subtotal)
	case KindSpecial:
		if c.SpecialKind == SpecialBuyXGetY {
			_, freeCount, ok := c.offerShape()
			if !ok {
				return decimal.Zero
			}
			units := cart.UnitPrices(items)
			if freeCount > len(units) {
				freeCount = len(units)
			}
			sum := decimal.Zero
			for _, u := range units[:freeCount] {
				sum = sum.Add(u)
			}
			return sum
		}
		amount, _ := splitValue(c.Value, subtotal)
		return amount
	case KindGift:
		amount, _ := splitValue(c.Value, subtotal)
		return amount.Add(c.GiftValue)
	default:
		return decimal.Zero
	}
}
