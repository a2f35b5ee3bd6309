package domain

import "time"

type DiscountType string

const (
	DiscountTypePercent DiscountType = "PERCENT"
	DiscountTypeFixed   DiscountType = "FIXED"
)

// Coupon is a discount code. For PERCENT coupons DiscountValue is the
// percentage (10 means 10%); for FIXED coupons it is the flat amount.
// UsageLimit of 0 means unlimited.
type Coupon struct {
	ID             int32        `json:"id"`
	Code           string       `json:"code"`
	DiscountType   DiscountType `json:"discount_type"`
	DiscountValue  Money        `json:"discount_value"`
	MinOrderAmount *Money       `json:"min_order_amount,omitempty"`
	MaxDiscount    *Money       `json:"max_discount,omitempty"`
	UsageLimit     int32        `json:"usage_limit"`
	UsageCount     int32        `json:"usage_count"`
	ValidFrom      time.Time    `json:"valid_from"`
	ValidTo        time.Time    `json:"valid_to"`
	IsActive       bool         `json:"is_active"`
	CreatedOn      time.Time    `json:"created_on"`
}

// Usable reports whether the coupon can currently be redeemed, ignoring
// order-amount rules which depend on the checkout subtotal.
func (c *Coupon) Usable(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidTo) {
		return false
	}
	if c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit {
		return false
	}
	return true
}
