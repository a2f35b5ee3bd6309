package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"
	"rentmarket-backend/internal/security"
)

type orderService struct {
	orderRepo       repository.OrderRepository
	reservationRepo repository.ReservationRepository
	pickupRepo      repository.PickupRepository
	returnRepo      repository.ReturnRepository
	invoiceRepo     repository.InvoiceRepository
	productRepo     repository.ProductRepository
	couponRepo      repository.CouponRepository
	pricing         PricingService
	availability    AvailabilityService
	settings        Settings
	notifier        Notifier
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	reservationRepo repository.ReservationRepository,
	pickupRepo repository.PickupRepository,
	returnRepo repository.ReturnRepository,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	pricing PricingService,
	availability AvailabilityService,
	settings Settings,
	notifier Notifier,
) OrderService {
	return &orderService{
		orderRepo:       orderRepo,
		reservationRepo: reservationRepo,
		pickupRepo:      pickupRepo,
		returnRepo:      returnRepo,
		invoiceRepo:     invoiceRepo,
		productRepo:     productRepo,
		couponRepo:      couponRepo,
		pricing:         pricing,
		availability:    availability,
		settings:        settings,
		notifier:        notifier,
	}
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("RO-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

// CreateQuotation drafts a vendor-side estimate. Quotations hold no stock.
func (s *orderService) CreateQuotation(ctx context.Context, caller security.Caller, in CheckoutInput) (*domain.RentalOrder, error) {
	if caller.Role != security.RoleVendor && !caller.IsAdmin() {
		return nil, fmt.Errorf("quotations are vendor-drafted: %w", domain.ErrForbidden)
	}
	return s.createOrder(ctx, caller, in, domain.OrderStatusQuotation)
}

// Checkout creates a customer cart order. The availability check here is
// advisory: stock is only held once the vendor confirms.
func (s *orderService) Checkout(ctx context.Context, caller security.Caller, in CheckoutInput) (*domain.RentalOrder, error) {
	return s.createOrder(ctx, caller, in, domain.OrderStatusRentalOrder)
}

func (s *orderService) createOrder(ctx context.Context, caller security.Caller, in CheckoutInput, status domain.OrderStatus) (*domain.RentalOrder, error) {
	quote, err := s.pricing.ComputeCheckout(ctx, in.Items, in.CouponCode)
	if err != nil {
		return nil, err
	}

	vendorID, err := s.resolveVendor(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	customerID := caller.UserID
	if in.CustomerID != 0 && in.CustomerID != caller.UserID {
		if caller.Role != security.RoleVendor && !caller.IsAdmin() {
			return nil, fmt.Errorf("customers order for themselves: %w", domain.ErrForbidden)
		}
		customerID = in.CustomerID
	}
	if err := authorize(caller, ActionCreate, Resource{VendorID: vendorID, CustomerID: customerID}); err != nil {
		return nil, err
	}

	for _, item := range in.Items {
		avail, err := s.availability.CheckAvailability(ctx, item.ProductID, item.StartDate, item.EndDate)
		if err != nil {
			return nil, err
		}
		if avail.Available < item.Quantity {
			return nil, fmt.Errorf("product %d has %d available, %d requested: %w",
				item.ProductID, avail.Available, item.Quantity, domain.ErrInsufficientStock)
		}
	}

	if in.Deposit.IsNegative() {
		return nil, fmt.Errorf("deposit must not be negative: %w", domain.ErrInvalidRange)
	}

	order := &domain.RentalOrder{
		OrderNumber:     newOrderNumber(),
		CustomerID:      customerID,
		VendorID:        vendorID,
		Status:          status,
		Subtotal:        quote.Subtotal,
		Tax:             quote.Tax,
		Discount:        quote.Discount,
		Deposit:         in.Deposit,
		Total:           quote.Total.Add(in.Deposit),
		CouponCode:      in.CouponCode,
		DeliveryAddress: in.DeliveryAddress,
		Notes:           in.Notes,
	}
	for _, line := range quote.Lines {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			StartDate: line.StartDate,
			EndDate:   line.EndDate,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	if quote.Coupon != nil {
		// Usage was checked during evaluation; a failure here means the last
		// redemption raced past us, which we accept for already-created orders.
		if err := s.couponRepo.IncrementUsage(ctx, quote.Coupon.ID); err != nil {
			logger.Warn("Coupon usage increment failed after order creation",
				"coupon", quote.Coupon.Code, "order", order.OrderNumber, "error", err)
		}
	}

	logger.Info("Order created", "order", order.OrderNumber, "status", order.Status, "total", order.Total.String())
	return order, nil
}

// resolveVendor validates that all items belong to a single vendor and
// returns it. Multi-vendor carts are split by the caller into separate orders.
func (s *orderService) resolveVendor(ctx context.Context, items []CheckoutItem) (int32, error) {
	var vendorID int32
	for i, item := range items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			vendorID = product.VendorID
			continue
		}
		if product.VendorID != vendorID {
			return 0, fmt.Errorf("items span multiple vendors: %w", domain.ErrInvalidRange)
		}
	}
	return vendorID, nil
}

// Confirm moves a quotation or rental order to CONFIRMED, creating one
// active reservation per item. The capacity check and reservation inserts run
// in a single storage transaction holding the product row locks, so two
// overlapping confirmations cannot both oversubscribe stock.
func (s *orderService) Confirm(ctx context.Context, caller security.Caller, orderID int32) (*domain.RentalOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, ActionTransition, orderResource(order)); err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusQuotation && order.Status != domain.OrderStatusRentalOrder {
		return nil, fmt.Errorf("order %s is %s: %w", order.OrderNumber, order.Status, domain.ErrStateConflict)
	}

	if err := s.reservationRepo.ConfirmOrder(ctx, order); err != nil {
		return nil, err
	}

	order, err = s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Best-effort: the confirmation is committed regardless of whether the
	// customer hears about it.
	if err := s.notifier.SendPickupConfirmation(ctx, order); err != nil {
		logger.Error("Pickup confirmation notification failed", "order", order.OrderNumber, "error", err)
	}

	logger.Info("Order confirmed", "order", order.OrderNumber)
	return order, nil
}

// RecordPickup hands the items over. The status flip and the pickup row are
// committed in a single repository transaction, so a mid-transition failure
// cannot strand the order in PICKED_UP without its pickup record.
func (s *orderService) RecordPickup(ctx context.Context, caller security.Caller, orderID int32, notes string) (*domain.RentalOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, ActionTransition, orderResource(order)); err != nil {
		return nil, err
	}
	if _, err := s.pickupRepo.GetByOrder(ctx, orderID); err == nil {
		return nil, fmt.Errorf("order %s already picked up: %w", order.OrderNumber, domain.ErrIllegalTransition)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if order.Status != domain.OrderStatusConfirmed {
		return nil, fmt.Errorf("order %s is %s, pickup requires CONFIRMED: %w",
			order.OrderNumber, order.Status, domain.ErrStateConflict)
	}

	pickup := &domain.Pickup{
		OrderID:    orderID,
		PickedUpAt: time.Now(),
		Notes:      notes,
	}
	if err := s.pickupRepo.RecordPickup(ctx, pickup); err != nil {
		return nil, err
	}

	logger.Info("Order picked up", "order", order.OrderNumber)
	return s.orderRepo.GetByID(ctx, orderID)
}

// RecordReturn closes out the rental: assesses the late fee against the
// order's earliest item end date, then creates the Return record, releases
// every reservation and flips the status in a single repository transaction.
// When an invoice already exists, the late and damage fees are folded into it
// afterwards.
func (s *orderService) RecordReturn(ctx context.Context, caller security.Caller, orderID int32, damageFee domain.Money, notes string) (*domain.RentalOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, ActionTransition, orderResource(order)); err != nil {
		return nil, err
	}
	if _, err := s.pickupRepo.GetByOrder(ctx, orderID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("order %s has no recorded pickup: %w", order.OrderNumber, domain.ErrIllegalTransition)
		}
		return nil, err
	}
	if _, err := s.returnRepo.GetByOrder(ctx, orderID); err == nil {
		return nil, fmt.Errorf("order %s already returned: %w", order.OrderNumber, domain.ErrIllegalTransition)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if order.Status != domain.OrderStatusPickedUp {
		return nil, fmt.Errorf("order %s is %s, return requires PICKED_UP: %w",
			order.OrderNumber, order.Status, domain.ErrStateConflict)
	}
	if damageFee.IsNegative() {
		return nil, fmt.Errorf("damage fee must not be negative: %w", domain.ErrInvalidRange)
	}

	now := time.Now()
	delayDays, lateFee := LateFeeFor(order.EarliestEndDate(), now, s.settings.LateFeePerDay(ctx))

	ret := &domain.Return{
		OrderID:    orderID,
		ReturnedAt: now,
		LateFee:    lateFee,
		DamageFee:  damageFee,
		Notes:      notes,
	}
	if err := s.returnRepo.RecordReturn(ctx, ret); err != nil {
		return nil, err
	}

	if !lateFee.IsZero() || !damageFee.IsZero() {
		invoice, err := s.invoiceRepo.GetByOrder(ctx, orderID)
		switch {
		case err == nil:
			if err := s.invoiceRepo.AddFees(ctx, invoice.ID, lateFee, damageFee); err != nil {
				return nil, err
			}
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}

	logger.Info("Order returned", "order", order.OrderNumber,
		"delay_days", delayDays, "late_fee", lateFee.String(), "damage_fee", damageFee.String())
	return s.orderRepo.GetByID(ctx, orderID)
}

// Cancel terminates a not-yet-picked-up order. Customers cancel their own
// orders; vendors and admins cancel vendor-side. The status flip and the
// reservation release commit together; reservations are released, never
// deleted.
func (s *orderService) Cancel(ctx context.Context, caller security.Caller, orderID int32, reason string) (*domain.RentalOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, ActionCancel, orderResource(order)); err != nil {
		return nil, err
	}
	if !order.Status.Cancellable() {
		return nil, fmt.Errorf("order %s is %s and cannot be cancelled: %w",
			order.OrderNumber, order.Status, domain.ErrIllegalTransition)
	}

	if err := s.reservationRepo.CancelOrder(ctx, orderID); err != nil {
		return nil, err
	}

	logger.Info("Order cancelled", "order", order.OrderNumber, "reason", reason)
	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *orderService) GetOrder(ctx context.Context, caller security.Caller, orderID int32) (*domain.RentalOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, ActionView, orderResource(order)); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListMyOrders(ctx context.Context, caller security.Caller, status string, page, pageSize int32) ([]domain.RentalOrder, int32, error) {
	return s.orderRepo.ListByCustomer(ctx, caller.UserID, status, page, pageSize)
}

// ListVendorOrders lists a vendor's order book. Vendors default to their own
// vendor id; admins name the vendor explicitly.
func (s *orderService) ListVendorOrders(ctx context.Context, caller security.Caller, vendorID int32, status string, page, pageSize int32) ([]domain.RentalOrder, int32, error) {
	if vendorID == 0 {
		if caller.VendorID == nil {
			return nil, 0, fmt.Errorf("vendor listing requires a vendor id: %w", domain.ErrInvalidRange)
		}
		vendorID = *caller.VendorID
	}
	if err := authorize(caller, ActionView, Resource{VendorID: vendorID}); err != nil {
		return nil, 0, err
	}
	return s.orderRepo.ListByVendor(ctx, vendorID, status, page, pageSize)
}
