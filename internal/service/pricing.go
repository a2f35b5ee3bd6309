package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"
)

type pricingService struct {
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	settings    Settings
}

func NewPricingService(productRepo repository.ProductRepository, couponRepo repository.CouponRepository, settings Settings) PricingService {
	return &pricingService{
		productRepo: productRepo,
		couponRepo:  couponRepo,
		settings:    settings,
	}
}

// RentalDays is the billable duration of [start, end): elapsed time rounded
// up to whole days, minimum one day.
func RentalDays(start, end time.Time) (int32, error) {
	if err := validateRange(start, end); err != nil {
		return 0, err
	}
	days := ceilDays(end.Sub(start))
	if days < 1 {
		days = 1
	}
	return days, nil
}

func ceilDays(d time.Duration) int32 {
	days := int32(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// LateFeeFor computes the penalty for returning after endDate: full or
// partial days of delay times the per-day rate, zero when on time.
func LateFeeFor(endDate, now time.Time, perDay domain.Money) (int32, domain.Money) {
	if !now.After(endDate) {
		return 0, domain.ZeroMoney()
	}
	delayDays := ceilDays(now.Sub(endDate))
	return delayDays, perDay.MulInt(delayDays)
}

// ComputeCheckout prices the requested items: per-line totals, subtotal, tax
// and coupon discount. Deterministic for identical inputs.
func (s *pricingService) ComputeCheckout(ctx context.Context, items []CheckoutItem, couponCode string) (*Quote, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("at least one item is required: %w", domain.ErrInvalidRange)
	}

	quote := &Quote{Subtotal: domain.ZeroMoney()}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive for product %d: %w", item.ProductID, domain.ErrInvalidRange)
		}
		days, err := RentalDays(item.StartDate, item.EndDate)
		if err != nil {
			return nil, err
		}

		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, fmt.Errorf("product %d is not active: %w", item.ProductID, domain.ErrNotFound)
		}

		unitPrice := product.BasePrice.MulInt(days)
		lineTotal := unitPrice.MulInt(item.Quantity)
		quote.Lines = append(quote.Lines, QuoteLine{
			CheckoutItem: item,
			DurationDays: days,
			UnitPrice:    unitPrice,
			LineTotal:    lineTotal,
		})
		quote.Subtotal = quote.Subtotal.Add(lineTotal)
	}

	quote.Tax = quote.Subtotal.MulRate(s.settings.TaxRate(ctx))

	quote.Discount = domain.ZeroMoney()
	if couponCode != "" {
		discount, coupon, err := s.evaluateCoupon(ctx, couponCode, quote.Subtotal)
		if err != nil {
			return nil, err
		}
		quote.Discount = discount
		quote.Coupon = coupon
	}

	quote.Total = quote.Subtotal.Add(quote.Tax).Sub(quote.Discount)
	if quote.Total.IsNegative() {
		// Fixed-amount discounts are deliberately not capped at the subtotal;
		// a misconfigured coupon can drive the total negative.
		logger.Warn("Checkout total is negative",
			"coupon", couponCode, "subtotal", quote.Subtotal.String(), "discount", quote.Discount.String())
	}
	return quote, nil
}

func (s *pricingService) evaluateCoupon(ctx context.Context, code string, subtotal domain.Money) (domain.Money, *domain.Coupon, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Money{}, nil, fmt.Errorf("coupon %q not found: %w", code, domain.ErrCouponInvalid)
		}
		return domain.Money{}, nil, err
	}

	if !coupon.Usable(time.Now()) {
		return domain.Money{}, nil, fmt.Errorf("coupon %q is inactive, expired or exhausted: %w", code, domain.ErrCouponInvalid)
	}
	if coupon.MinOrderAmount != nil && subtotal.Cmp(*coupon.MinOrderAmount) < 0 {
		return domain.Money{}, nil, fmt.Errorf("coupon %q requires a minimum order of %s: %w",
			code, coupon.MinOrderAmount.String(), domain.ErrCouponInvalid)
	}

	switch coupon.DiscountType {
	case domain.DiscountTypePercent:
		discount := subtotal.Percent(coupon.DiscountValue.Decimal())
		if coupon.MaxDiscount != nil && discount.Cmp(*coupon.MaxDiscount) > 0 {
			discount = *coupon.MaxDiscount
		}
		return discount, coupon, nil
	case domain.DiscountTypeFixed:
		return coupon.DiscountValue, coupon, nil
	default:
		return domain.Money{}, nil, fmt.Errorf("coupon %q has unknown discount type %q: %w",
			code, coupon.DiscountType, domain.ErrCouponInvalid)
	}
}
