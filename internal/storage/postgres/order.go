package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kalakriti/storefront-api/internal/domain/checkout"
)

const insertOrderSQL = `INSERT INTO orders
	(id, items, subtotal, discount, total, total_savings, coupon_code, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

var _ checkout.Repository = (*OrderRepository)(nil)

// OrderRepository implements checkout.Repository backed by PostgreSQL.
// Line items, free gifts included, are stored as a JSONB snapshot so the
// order preserves the exact pricing shown at placement.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a placed order.
func (r *OrderRepository) Create(ctx context.Context, o *checkout.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encoding order %q items: %w", o.ID, err)
	}

	_, err = r.pool.Exec(ctx, insertOrderSQL,
		o.ID, items, o.Subtotal, o.Discount, o.Total, o.TotalSavings,
		o.CouponCode, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}
