package coupon

import (
	"regexp"
	"strconv"
)

// Legacy coupon import shim. Old coupons encoded their buy-X-get-Y shape only
// in the title ("Buy 2 Get 3"); newer coupons carry explicit BuyQuantity /
// GetQuantity fields. The core engine never parses prose; everything textual
// is contained here.

var buyXGetYTitle = regexp.MustCompile(`(?i)buy\s*(\d+)\s*get\s*(\d+)`)

// offerShape resolves the effective quantity threshold and free unit count of
// a buy-X-get-Y coupon.
//
// Explicit fields win. When GetQuantity exceeds BuyQuantity the pair reads as
// "pay for GetQuantity, the difference is free" (so Buy 5 Get 7 means a
// threshold of 7 with 2 free units); otherwise the fields keep their literal
// meaning: BuyQuantity is the threshold and GetQuantity the free unit count.
// When both fields are absent, the title is parsed as a last resort.
func (c Coupon) offerShape() (threshold, freeCount int, ok bool) {
	if c.BuyQuantity > 0 && c.GetQuantity > 0 {
		if c.GetQuantity > c.BuyQuantity {
			return c.GetQuantity, c.GetQuantity - c.BuyQuantity, true
		}
		return c.BuyQuantity, c.GetQuantity, true
	}
	return parseOfferTitle(c.Title)
}

// parseOfferTitle extracts "Buy <m> Get <n>" from a coupon title. The larger
// of the two numbers is the purchase threshold and their difference is the
// free unit count: "Buy 2 Get 3" means a threshold of 3 with 1 free unit.
// This mirrors how legacy coupons were authored, not the plain-English
// reading of the phrase.
func parseOfferTitle(title string) (threshold, freeCount int, ok bool) {
	m := buyXGetYTitle.FindStringSubmatch(title)
	if m == nil {
		return 0, 0, false
	}

	buy, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	get, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}

	threshold = buy
	if get > threshold {
		threshold = get
	}
	freeCount = buy - get
	if freeCount < 0 {
		freeCount = -freeCount
	}
	if threshold == 0 || freeCount == 0 {
		return 0, 0, false
	}
	return threshold, freeCount, true
}
