// Package cart holds the cart line item model and the pure helpers the
// pricing code shares. Regular items and free gift items live in separate
// lists; gifts are merged in only for display and order persistence.
package cart

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Item is a single cart line. Price is the unit price captured when the item
// was added. For free gift items Price is zero and GiftValue carries the
// displayable worth of the gift.
type Item struct {
	ProductID  string          `json:"productId"`
	Name       string          `json:"name,omitempty"`
	Size       string          `json:"size,omitempty"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Image      string          `json:"image,omitempty"`
	IsFreeGift bool            `json:"isFreeGift,omitempty"`
	GiftValue  decimal.Decimal `json:"giftValue,omitempty"`
}

// Subtotal returns the sum of price * quantity across non-gift items.
func Subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if it.IsFreeGift {
			continue
		}
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// TotalQuantity returns the sum of quantities across non-gift items.
func TotalQuantity(items []Item) int {
	total := 0
	for _, it := range items {
		if it.IsFreeGift {
			continue
		}
		total += it.Quantity
	}
	return total
}

// UnitPrices expands non-gift items into one price per unit, sorted ascending.
// A line with quantity 3 contributes its unit price three times. The input is
// not modified.
func UnitPrices(items []Item) []decimal.Decimal {
	var units []decimal.Decimal
	for _, it := range items {
		if it.IsFreeGift {
			continue
		}
		for i := 0; i < it.Quantity; i++ {
			units = append(units, it.Price)
		}
	}
	sort.Slice(units, func(i, j int) bool {
		return units[i].LessThan(units[j])
	})
	return units
}

// AppendGift adds a free gift item to the list unless an equivalent gift
// (same product ID and size) is already present. Pricing is recomputed on
// every cart change, so this must not re-append on repeated calls.
func AppendGift(items []Item, gift Item) []Item {
	for _, it := range items {
		if it.IsFreeGift && it.ProductID == gift.ProductID && it.Size == gift.Size {
			return items
		}
	}
	out := make([]Item, len(items), len(items)+1)
	copy(out, items)
	return append(out, gift)
}

// GiftValueTotal sums the gift values of all free gift items.
func GiftValueTotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if it.IsFreeGift {
			sum = sum.Add(it.GiftValue)
		}
	}
	return sum
}
