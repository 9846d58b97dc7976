package coupon

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// The admin panel edits the coupon list as raw JSON with no schema
// enforcement, so imports arrive with missing fields, wrong types, and
// duplicate IDs. ParseList decodes as much as it can: a field with an
// unexpected type is skipped with a warning and its zero value stands in,
// matching the engine's defaulting policy. Only structurally broken JSON
// (not an array, truncated input) is an error.

// ImportReport holds the coupons recovered from a lenient bulk import along
// with any warnings produced on the way.
type ImportReport struct {
	Coupons  []Coupon `json:"coupons"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *ImportReport) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ParseList decodes a JSON array of coupon objects tolerantly.
func ParseList(data []byte) (*ImportReport, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Array {
		return nil, errors.New("coupon import must be a JSON array of objects")
	}

	report := &ImportReport{}
	seen := make(map[string]bool)
	idx := -1

	err := d.Arr(func(d *jx.Decoder) error {
		idx++
		if d.Next() != jx.Object {
			report.warnf("entry %d: not an object, skipped", idx)
			return d.Skip()
		}

		c, err := decodeCoupon(d, idx, report)
		if err != nil {
			return err
		}

		if c.ID != "" {
			if seen[c.ID] {
				report.warnf("entry %d: duplicate coupon id %q", idx, c.ID)
			}
			seen[c.ID] = true
		}

		report.Coupons = append(report.Coupons, c)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse coupon list")
	}

	return report, nil
}

// decodeCoupon reads one coupon object, skipping unknown keys and values of
// unexpected types.
func decodeCoupon(d *jx.Decoder, idx int, report *ImportReport) (Coupon, error) {
	var c Coupon
	warn := func(key string) {
		report.warnf("entry %d: field %q has unexpected type, ignored", idx, key)
	}

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			return readString(d, key, &c.ID, warn)
		case "code":
			return readString(d, key, &c.Code, warn)
		case "title":
			return readString(d, key, &c.Title, warn)
		case "description":
			return readString(d, key, &c.Description, warn)
		case "type":
			var s string
			if err := readString(d, key, &s, warn); err != nil {
				return err
			}
			c.Kind = Kind(s)
			return nil
		case "discount":
			return readDecimal(d, key, &c.Value, warn)
		case "maxDiscount":
			return readDecimal(d, key, &c.MaxDiscount, warn)
		case "minAmount":
			return readDecimal(d, key, &c.MinAmount, warn)
		case "minQuantity":
			return readInt(d, key, &c.MinQuantity, warn)
		case "validUntil":
			return readTime(d, key, &c.ValidUntil, warn)
		case "active":
			return readBool(d, key, &c.Active, warn)
		case "usageLimit":
			return readInt(d, key, &c.UsageLimit, warn)
		case "usedCount":
			return readInt(d, key, &c.UsedCount, warn)
		case "isVisible":
			return readBool(d, key, &c.IsVisible, warn)
		case "adminRecommended":
			return readBool(d, key, &c.AdminRecommended, warn)
		case "specialType":
			var s string
			if err := readString(d, key, &s, warn); err != nil {
				return err
			}
			c.SpecialKind = SpecialKind(s)
			return nil
		case "buyQuantity":
			return readInt(d, key, &c.BuyQuantity, warn)
		case "getQuantity":
			return readInt(d, key, &c.GetQuantity, warn)
		case "giftType":
			var s string
			if err := readString(d, key, &s, warn); err != nil {
				return err
			}
			c.GiftKind = GiftKind(s)
			return nil
		case "giftProductId":
			return readString(d, key, &c.GiftProductID, warn)
		case "giftDescription":
			return readString(d, key, &c.GiftDescription, warn)
		case "giftImage":
			return readString(d, key, &c.GiftImage, warn)
		case "giftValue":
			return readDecimal(d, key, &c.GiftValue, warn)
		default:
			return d.Skip()
		}
	})
	return c, err
}

func readString(d *jx.Decoder, key string, dst *string, warn func(string)) error {
	if d.Next() != jx.String {
		warn(key)
		return d.Skip()
	}
	s, err := d.Str()
	if err != nil {
		return err
	}
	*dst = s
	return nil
}

func readBool(d *jx.Decoder, key string, dst *bool, warn func(string)) error {
	if d.Next() != jx.Bool {
		warn(key)
		return d.Skip()
	}
	b, err := d.Bool()
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

// readInt tolerates fractional numbers in integer fields the same way
// readDecimal tolerates unparseable strings: warn and keep the zero value.
func readInt(d *jx.Decoder, key string, dst *int, warn func(string)) error {
	if d.Next() != jx.Number {
		warn(key)
		return d.Skip()
	}
	n, err := d.Num()
	if err != nil {
		return err
	}
	v, err := n.Int64()
	if err != nil {
		warn(key)
		return nil
	}
	*dst = int(v)
	return nil
}

// readDecimal accepts both JSON numbers and numeric strings, since
// hand-edited coupon files contain both.
func readDecimal(d *jx.Decoder, key string, dst *decimal.Decimal, warn func(string)) error {
	var raw string
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return err
		}
		raw = string(n)
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		raw = s
	default:
		warn(key)
		return d.Skip()
	}

	v, err := decimal.NewFromString(raw)
	if err != nil {
		warn(key)
		return nil
	}
	*dst = v
	return nil
}

var timeLayouts = []string{time.RFC3339, "2006-01-02"}

func readTime(d *jx.Decoder, key string, dst **time.Time, warn func(string)) error {
	if d.Next() != jx.String {
		warn(key)
		return d.Skip()
	}
	s, err := d.Str()
	if err != nil {
		return err
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*dst = &t
			return nil
		}
	}
	warn(key)
	return nil
}
