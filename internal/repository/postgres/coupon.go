package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/repository"
)

type couponRepository struct {
	db *sql.DB
}

func NewCouponRepository(db *sql.DB) repository.CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	c := &domain.Coupon{}
	var minOrder, maxDiscount sql.Null[domain.Money]
	query := `SELECT id, code, discount_type, discount_value, min_order_amount, max_discount, usage_limit, usage_count, valid_from, valid_to, is_active, created_on
	          FROM coupons WHERE code = $1`
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue,
		&minOrder, &maxDiscount, &c.UsageLimit, &c.UsageCount,
		&c.ValidFrom, &c.ValidTo, &c.IsActive, &c.CreatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("coupon %q: %w", code, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if minOrder.Valid {
		c.MinOrderAmount = &minOrder.V
	}
	if maxDiscount.Valid {
		c.MaxDiscount = &maxDiscount.V
	}
	return c, nil
}

func (r *couponRepository) IncrementUsage(ctx context.Context, id int32) error {
	query := `UPDATE coupons SET usage_count = usage_count + 1
	          WHERE id = $1 AND (usage_limit = 0 OR usage_count < usage_limit)`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("coupon %d usage limit reached: %w", id, domain.ErrCouponInvalid)
	}
	return nil
}
