package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalakriti/storefront-api/internal/domain/cart"
	"github.com/kalakriti/storefront-api/internal/domain/product"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func testCatalog() product.Catalog {
	return product.NewCatalog([]product.Product{
		{ID: "p1", Name: "Cotton Kurta", Price: d("800")},
		{ID: "p2", Name: "Silk Scarf", Price: d("450")},
		{ID: "keychain", Name: "Brass Keychain", Price: d("150")},
	})
}

func TestCompute_Percentage(t *testing.T) {
	tests := []struct {
		name          string
		coupon        Coupon
		subtotal      decimal.Decimal
		wantAmount    decimal.Decimal
		wantBreakdown string
	}{
		{
			name:          "10% of 1000",
			coupon:        Coupon{Kind: KindPercentage, Value: d("10")},
			subtotal:      d("1000"),
			wantAmount:    d("100"),
			wantBreakdown: "10% off",
		},
		{
			name:          "capped at max discount",
			coupon:        Coupon{Kind: KindPercentage, Value: d("50"), MaxDiscount: d("200")},
			subtotal:      d("1000"),
			wantAmount:    d("200"),
			wantBreakdown: "50% off (capped at ₹200)",
		},
		{
			name:          "under the cap reports plain percentage",
			coupon:        Coupon{Kind: KindPercentage, Value: d("10"), MaxDiscount: d("200")},
			subtotal:      d("1000"),
			wantAmount:    d("100"),
			wantBreakdown: "10% off",
		},
		{
			name:       "rounds to whole rupees",
			coupon:     Coupon{Kind: KindPercentage, Value: d("15")},
			subtotal:   d("999"),
			wantAmount: d("150"), // 149.85 rounds to 150
		},
		{
			name:       "negative value degrades to zero",
			coupon:     Coupon{Kind: KindPercentage, Value: d("-20")},
			subtotal:   d("1000"),
			wantAmount: d("0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.coupon, nil, testCatalog(), tt.subtotal)

			assert.True(t, tt.wantAmount.Equal(got.Amount),
				"expected amount %s, got %s", tt.wantAmount, got.Amount)
			if tt.wantBreakdown != "" {
				assert.Equal(t, tt.wantBreakdown, got.Breakdown)
			}
			assert.Empty(t, got.FreeItems)
		})
	}
}

func TestCompute_Fixed(t *testing.T) {
	c := Coupon{Kind: KindFixed, Value: d("250")}

	// The fixed amount is verbatim regardless of subtotal.
	for _, subtotal := range []decimal.Decimal{d("1000"), d("250"), d("100")} {
		got := Compute(c, nil, nil, subtotal)
		assert.True(t, d("250").Equal(got.Amount), "subtotal %s", subtotal)

		wantEffective := decimal.Max(decimal.Zero, subtotal.Sub(d("250")))
		assert.True(t, wantEffective.Equal(got.EffectiveTotal),
			"subtotal %s: expected effective %s, got %s", subtotal, wantEffective, got.EffectiveTotal)
	}
}

func TestCompute_FixedExceedsSubtotal(t *testing.T) {
	got := Compute(Coupon{Kind: KindFixed, Value: d("500")}, nil, nil, d("300"))

	// The discount is not clamped; the effective total is floored at zero.
	assert.True(t, d("500").Equal(got.Amount))
	assert.True(t, got.EffectiveTotal.IsZero())
}

func TestCompute_BuyXGetY(t *testing.T) {
	items := []cart.Item{
		{ProductID: "a", Price: d("100"), Quantity: 1},
		{ProductID: "b", Price: d("200"), Quantity: 1},
		{ProductID: "c", Price: d("300"), Quantity: 1},
	}

	t.Run("title fallback discounts the single cheapest unit", func(t *testing.T) {
		// "Buy 2 Get 3" parses as threshold 3, one unit free.
		c := Coupon{Kind: KindSpecial, SpecialKind: SpecialBuyXGetY, Title: "Buy 2 Get 3"}

		got := Compute(c, items, nil, d("600"))

		assert.True(t, d("100").Equal(got.Amount), "got %s", got.Amount)
		assert.Empty(t, got.FreeItems, "buy-x-get-y is a discount, not a gift")
	})

	t.Run("explicit fields with get > buy reinterpret the pair", func(t *testing.T) {
		c := Coupon{Kind: KindSpecial, SpecialKind: SpecialBuyXGetY, BuyQuantity: 2, GetQuantity: 3}

		got := Compute(c, items, nil, d("600"))

		assert.True(t, d("100").Equal(got.Amount), "got %s", got.Amount)
	})

	t.Run("literal fields when buy >= get", func(t *testing.T) {
		// Buy 3, get 2 free: quantity 3 meets the threshold, the two
		// cheapest units (100 + 200) are free.
		c := Coupon{Kind: KindSpecial, SpecialKind: SpecialBuyXGetY, BuyQuantity: 3, GetQuantity: 2}

		got := Compute(c, items, nil, d("600"))

		assert.True(t, d("300").Equal(got.Amount), "got %s", got.Amount)
	})

	t.Run("below threshold yields zero with a nudge message", func(t *testing.T) {
		c := Coupon{
			Kind: KindSpecial, SpecialKind: SpecialBuyXGetY,
			Title: "Festive Buy 3 Get 5", BuyQuantity: 3, GetQuantity: 5,
		}

		got := Compute(c, items, nil, d("600"))

		assert.True(t, got.Amount.IsZero())
		assert.Contains(t, got.Breakdown, "Add 2 more item(s)")
	})

	t.Run("quantities expand into per-unit pricing", func(t *testing.T) {
		multi := []cart.Item{
			{ProductID: "a", Price: d("100"), Quantity: 3},
			{ProductID: "b", Price: d("400"), Quantity: 1},
		}
		c := Coupon{Kind: KindSpecial, SpecialKind: SpecialBuyXGetY, BuyQuantity: 2, GetQuantity: 4}

		// Threshold 4 with 2 free: the two cheapest of [100 100 100 400].
		got := Compute(c, multi, nil, d("700"))

		assert.True(t, d("200").Equal(got.Amount), "got %s", got.Amount)
	})

	t.Run("no shape resolvable yields zero", func(t *testing.T) {
		c := Coupon{Kind: KindSpecial, SpecialKind: SpecialBuyXGetY, Title: "Mega Sale"}

		got := Compute(c, items, nil, d("600"))

		assert.True(t, got.Amount.IsZero())
	})
}

func TestCompute_Bundle(t *testing.T) {
	items := []cart.Item{
		{ProductID: "a", Price: d("400"), Quantity: 2},
		{ProductID: "b", Price: d("200"), Quantity: 1},
	}

	tests := []struct {
		name       string
		coupon     Coupon
		wantAmount decimal.Decimal
	}{
		{
			name:       "value below 100 reads as percentage",
			coupon:     Coupon{Kind: KindSpecial, SpecialKind: SpecialBundle, MinQuantity: 3, Value: d("10")},
			wantAmount: d("100"),
		},
		{
			name:       "value at or above 100 reads as flat amount",
			coupon:     Coupon{Kind: KindSpecial, SpecialKind: SpecialBundle, MinQuantity: 3, Value: d("150")},
			wantAmount: d("150"),
		},
		{
			name:       "quantity below threshold yields zero",
			coupon:     Coupon{Kind: KindSpecial, SpecialKind: SpecialBundle, MinQuantity: 5, Value: d("10")},
			wantAmount: d("0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.coupon, items, nil, d("1000"))

			assert.True(t, tt.wantAmount.Equal(got.Amount),
				"expected %s, got %s", tt.wantAmount, got.Amount)
			if tt.wantAmount.IsZero() {
				assert.Contains(t, got.Breakdown, "Add 2 more item(s)")
			}
		})
	}
}

func TestCompute_Gift(t *testing.T) {
	t.Run("product gift with explicit gift value", func(t *testing.T) {
		c := Coupon{
			ID: "g1", Kind: KindGift, GiftKind: GiftProduct,
			GiftProductID: "keychain", GiftValue: d("99"),
		}

		got := Compute(c, nil, testCatalog(), d("1000"))

		require.Len(t, got.FreeItems, 1)
		gift := got.FreeItems[0]
		assert.Equal(t, "keychain", gift.ProductID)
		assert.Equal(t, "Brass Keychain", gift.Name)
		assert.True(t, gift.IsFreeGift)
		assert.True(t, gift.Price.IsZero())
		assert.True(t, d("99").Equal(gift.GiftValue))
		assert.True(t, d("99").Equal(got.TotalSavings))
	})

	t.Run("gift value falls back to the product price", func(t *testing.T) {
		c := Coupon{ID: "g2", Kind: KindGift, GiftKind: GiftProduct, GiftProductID: "keychain"}

		got := Compute(c, nil, testCatalog(), d("1000"))

		require.Len(t, got.FreeItems, 1)
		assert.True(t, d("150").Equal(got.FreeItems[0].GiftValue))
	})

	t.Run("missing product degrades to a mystery gift", func(t *testing.T) {
		c := Coupon{ID: "g3", Kind: KindGift, GiftKind: GiftProduct, GiftProductID: "deleted-product"}

		got := Compute(c, nil, testCatalog(), d("1000"))

		require.Len(t, got.FreeItems, 1)
		assert.Equal(t, DefaultGiftName, got.FreeItems[0].Name)
		assert.True(t, got.FreeItems[0].IsFreeGift)
	})

	t.Run("gift gated on minimum amount", func(t *testing.T) {
		c := Coupon{ID: "g4", Kind: KindGift, GiftKind: GiftMystery, MinAmount: d("500")}

		below := Compute(c, nil, nil, d("400"))
		assert.Empty(t, below.FreeItems)

		above := Compute(c, nil, nil, d("600"))
		assert.Len(t, above.FreeItems, 1)
	})

	t.Run("monetary discount and gift clause join with a plus", func(t *testing.T) {
		c := Coupon{
			ID: "g5", Kind: KindGift, GiftKind: GiftCustom,
			GiftDescription: "Tote Bag", Value: d("10"),
		}

		got := Compute(c, nil, nil, d("1000"))

		assert.True(t, d("100").Equal(got.Amount))
		require.Len(t, got.FreeItems, 1)
		assert.Equal(t, "10% off + Free gift: Tote Bag", got.Breakdown)
	})

	t.Run("gift value above 100 reads as flat discount", func(t *testing.T) {
		c := Coupon{ID: "g6", Kind: KindGift, GiftKind: GiftMystery, Value: d("200")}

		got := Compute(c, nil, nil, d("1000"))

		assert.True(t, d("200").Equal(got.Amount))
	})
}

func TestCompute_UnknownKindHasNoEffect(t *testing.T) {
	got := Compute(Coupon{Kind: Kind("bogus"), Value: d("50")}, nil, nil, d("1000"))

	assert.True(t, got.Amount.IsZero())
	assert.Empty(t, got.FreeItems)
	assert.True(t, d("1000").Equal(got.EffectiveTotal))
}

func TestCompute_Idempotent(t *testing.T) {
	items := []cart.Item{
		{ProductID: "a", Price: d("100"), Quantity: 2},
		{ProductID: "b", Price: d("300"), Quantity: 1},
	}
	c := Coupon{
		ID: "g7", Kind: KindGift, GiftKind: GiftProduct,
		GiftProductID: "keychain", Value: d("10"), MinAmount: d("200"),
	}
	catalog := testCatalog()

	first := Compute(c, items, catalog, d("500"))
	second := Compute(c, items, catalog, d("500"))

	assert.Equal(t, first, second)

	// Inputs are not mutated: the cart still has no gift rows.
	for _, it := range items {
		assert.False(t, it.IsFreeGift)
	}
	assert.Len(t, items, 2)
}
