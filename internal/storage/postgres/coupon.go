package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kalakriti/storefront-api/internal/domain/coupon"
)

const couponColumns = `id, code, title, description, type, discount, max_discount,
	min_amount, min_quantity, valid_until, active, usage_limit, used_count,
	is_visible, admin_recommended, special_type, buy_quantity, get_quantity,
	gift_type, gift_product_id, gift_description, gift_image, gift_value`

const (
	findCouponByCodeSQL = `SELECT ` + couponColumns + `
		FROM coupons WHERE UPPER(code) = UPPER($1) AND active = TRUE`

	listActiveCouponsSQL = `SELECT ` + couponColumns + `
		FROM coupons WHERE active = TRUE ORDER BY id`

	listCouponsSQL = `SELECT ` + couponColumns + ` FROM coupons ORDER BY id`

	insertCouponSQL = `INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`

	updateCouponSQL = `UPDATE coupons SET
		code = $2, title = $3, description = $4, type = $5, discount = $6,
		max_discount = $7, min_amount = $8, min_quantity = $9, valid_until = $10,
		active = $11, usage_limit = $12, used_count = $13, is_visible = $14,
		admin_recommended = $15, special_type = $16, buy_quantity = $17,
		get_quantity = $18, gift_type = $19, gift_product_id = $20,
		gift_description = $21, gift_image = $22, gift_value = $23
		WHERE id = $1`

	deleteCouponSQL = `DELETE FROM coupons WHERE id = $1`

	incrementCouponUsesSQL = `UPDATE coupons SET used_count = used_count + 1 WHERE id = $1`
)

var _ coupon.Store = (*CouponRepository)(nil)

// CouponRepository implements coupon.Store backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up an active coupon by its code (case-insensitive).
// Returns coupon.ErrInvalidCoupon when no matching active coupon exists.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, findCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrInvalidCoupon
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &c, nil
}

// ListActive returns all active coupons ordered by ID.
func (r *CouponRepository) ListActive(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listActiveCouponsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing active coupons: %w", err)
	}
	return pgx.CollectRows(rows, scanCoupon)
}

// List returns every coupon, active or not, for the admin surface.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	return pgx.CollectRows(rows, scanCoupon)
}

// Create inserts a new coupon.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	if _, err := r.pool.Exec(ctx, insertCouponSQL, couponArgs(c)...); err != nil {
		return fmt.Errorf("creating coupon %q: %w", c.ID, err)
	}
	return nil
}

// Update replaces all fields of an existing coupon.
// Returns coupon.ErrInvalidCoupon when the ID does not exist.
func (r *CouponRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	tag, err := r.pool.Exec(ctx, updateCouponSQL, couponArgs(c)...)
	if err != nil {
		return fmt.Errorf("updating coupon %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrInvalidCoupon
	}
	return nil
}

// Delete removes a coupon by ID.
// Returns coupon.ErrInvalidCoupon when the ID does not exist.
func (r *CouponRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteCouponSQL, id)
	if err != nil {
		return fmt.Errorf("deleting coupon %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrInvalidCoupon
	}
	return nil
}

// IncrementUses atomically increments the usage counter for the given coupon ID.
func (r *CouponRepository) IncrementUses(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, incrementCouponUsesSQL, id); err != nil {
		return fmt.Errorf("incrementing uses for coupon %q: %w", id, err)
	}
	return nil
}

func couponArgs(c *coupon.Coupon) []any {
	validUntil := c.ValidUntil
	if validUntil != nil && validUntil.IsZero() {
		validUntil = nil
	}
	return []any{
		c.ID, c.Code, c.Title, c.Description, string(c.Kind), c.Value, c.MaxDiscount,
		c.MinAmount, c.MinQuantity, validUntil, c.Active, c.UsageLimit, c.UsedCount,
		c.IsVisible, c.AdminRecommended, string(c.SpecialKind), c.BuyQuantity, c.GetQuantity,
		string(c.GiftKind), c.GiftProductID, c.GiftDescription, c.GiftImage, c.GiftValue,
	}
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c           coupon.Coupon
		kind        string
		specialKind string
		giftKind    string
		validUntil  *time.Time
	)
	err := row.Scan(
		&c.ID, &c.Code, &c.Title, &c.Description, &kind, &c.Value, &c.MaxDiscount,
		&c.MinAmount, &c.MinQuantity, &validUntil, &c.Active, &c.UsageLimit, &c.UsedCount,
		&c.IsVisible, &c.AdminRecommended, &specialKind, &c.BuyQuantity, &c.GetQuantity,
		&giftKind, &c.GiftProductID, &c.GiftDescription, &c.GiftImage, &c.GiftValue,
	)
	c.Kind = coupon.Kind(kind)
	c.SpecialKind = coupon.SpecialKind(specialKind)
	c.GiftKind = coupon.GiftKind(giftKind)
	c.ValidUntil = validUntil
	return c, err
}
