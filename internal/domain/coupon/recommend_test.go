package coupon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalakriti/storefront-api/internal/domain/cart"
)

func TestRecommend(t *testing.T) {
	items := []cart.Item{
		{ProductID: "a", Price: d("300"), Quantity: 2},
	}

	t.Run("drops inactive coupons even when admin-recommended", func(t *testing.T) {
		coupons := []Coupon{
			{ID: "c1", Kind: KindPercentage, Value: d("10"), Active: false, AdminRecommended: true},
		}

		got := Recommend(items, coupons, d("600"), 2)

		assert.Empty(t, got)
	})

	t.Run("admin override skips the eligibility predicate", func(t *testing.T) {
		coupons := []Coupon{
			// Min amount 1000 against a 600 subtotal: ineligible.
			{ID: "c1", Kind: KindFixed, Value: d("50"), MinAmount: d("1000"), Active: true},
			{ID: "c2", Kind: KindFixed, Value: d("50"), MinAmount: d("1000"), Active: true, AdminRecommended: true},
		}

		got := Recommend(items, coupons, d("600"), 2)

		require.Len(t, got, 1)
		assert.Equal(t, "c2", got[0].ID)
	})

	t.Run("sorts admin first then by estimated savings descending", func(t *testing.T) {
		coupons := []Coupon{
			{ID: "small", Kind: KindFixed, Value: d("50"), Active: true},
			{ID: "big", Kind: KindPercentage, Value: d("25"), Active: true},    // 150 off 600
			{ID: "editorial", Kind: KindFixed, Value: d("10"), Active: true, AdminRecommended: true},
		}

		got := Recommend(items, coupons, d("600"), 2)

		require.Len(t, got, 3)
		assert.Equal(t, "editorial", got[0].ID)
		assert.Equal(t, "big", got[1].ID)
		assert.Equal(t, "small", got[2].ID)
	})

	t.Run("ties keep their input order", func(t *testing.T) {
		coupons := []Coupon{
			{ID: "first", Kind: KindFixed, Value: d("50"), Active: true},
			{ID: "second", Kind: KindFixed, Value: d("50"), Active: true},
		}

		got := Recommend(items, coupons, d("600"), 2)

		require.Len(t, got, 2)
		assert.Equal(t, "first", got[0].ID)
		assert.Equal(t, "second", got[1].ID)
	})

	t.Run("special offers gate on quantity", func(t *testing.T) {
		coupons := []Coupon{
			{ID: "bundle", Kind: KindSpecial, SpecialKind: SpecialBundle, MinQuantity: 5, Value: d("10"), Active: true},
			{ID: "bogo", Kind: KindSpecial, SpecialKind: SpecialBuyXGetY, Title: "Buy 2 Get 1", Active: true},
		}

		got := Recommend(items, coupons, d("600"), 2)

		// The bundle needs 5 items; the buy-2-get-1 threshold is met.
		require.Len(t, got, 1)
		assert.Equal(t, "bogo", got[0].ID)
	})

	t.Run("percentage estimate respects the cap", func(t *testing.T) {
		coupons := []Coupon{
			{ID: "capped", Kind: KindPercentage, Value: d("50"), MaxDiscount: d("60"), Active: true},
			{ID: "flat", Kind: KindFixed, Value: d("100"), Active: true},
		}

		got := Recommend(items, coupons, d("600"), 2)

		require.Len(t, got, 2)
		assert.Equal(t, "flat", got[0].ID, "capped 60 ranks below flat 100")
	})

	t.Run("does not mutate the input slice", func(t *testing.T) {
		coupons := []Coupon{
			{ID: "z", Kind: KindFixed, Value: d("10"), Active: true},
			{ID: "a", Kind: KindFixed, Value: d("90"), Active: true},
		}

		_ = Recommend(items, coupons, d("600"), 2)

		assert.Equal(t, "z", coupons[0].ID)
		assert.Equal(t, "a", coupons[1].ID)
	})
}
