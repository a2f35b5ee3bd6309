package repository

import (
	"context"
	"time"

	"rentmarket-backend/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int32) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	ListByVendor(ctx context.Context, vendorID int32, page, pageSize int32) ([]domain.Product, int32, error)
}

type OrderRepository interface {
	// Create persists the order and its items atomically and assigns IDs.
	Create(ctx context.Context, order *domain.RentalOrder) error
	GetByID(ctx context.Context, id int32) (*domain.RentalOrder, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.RentalOrder, error)
	ListByCustomer(ctx context.Context, customerID int32, status string, page, pageSize int32) ([]domain.RentalOrder, int32, error)
	ListByVendor(ctx context.Context, vendorID int32, status string, page, pageSize int32) ([]domain.RentalOrder, int32, error)
}

type ReservationRepository interface {
	// SumActiveOverlapping returns the booked quantity for a product over the
	// half-open interval [start, end): the sum of quantities of ACTIVE
	// reservations with res.start < end AND res.end > start.
	SumActiveOverlapping(ctx context.Context, productID int32, start, end time.Time) (int32, error)
	// ConfirmOrder runs the serialized confirm-and-reserve transaction: lock
	// the order and its product rows, recompute booked quantities under the
	// lock, insert one ACTIVE reservation per item and move the order to
	// CONFIRMED. Returns domain.ErrStateConflict or domain.ErrInsufficientStock.
	ConfirmOrder(ctx context.Context, order *domain.RentalOrder) error
	// CancelOrder moves a cancellable order to CANCELLED and releases its
	// active reservations in a single transaction, so a cancelled order can
	// never keep holding stock. Returns domain.ErrIllegalTransition when the
	// order is past cancellation.
	CancelOrder(ctx context.Context, orderID int32) error
	ListByOrder(ctx context.Context, orderID int32) ([]domain.Reservation, error)
}

type PickupRepository interface {
	// RecordPickup moves the order from CONFIRMED to PICKED_UP and inserts the
	// pickup row in a single transaction: the order cannot end up PICKED_UP
	// without its pickup record. Returns domain.ErrStateConflict when the
	// order is not CONFIRMED, domain.ErrIllegalTransition when a pickup
	// already exists (unique constraint on order_id).
	RecordPickup(ctx context.Context, p *domain.Pickup) error
	GetByOrder(ctx context.Context, orderID int32) (*domain.Pickup, error)
}

type ReturnRepository interface {
	// RecordReturn moves the order from PICKED_UP to RETURNED, inserts the
	// return row and releases the order's active reservations in a single
	// transaction. Returns domain.ErrStateConflict when the order is not
	// PICKED_UP, domain.ErrIllegalTransition when a return already exists.
	RecordReturn(ctx context.Context, r *domain.Return) error
	GetByOrder(ctx context.Context, orderID int32) (*domain.Return, error)
}

type InvoiceRepository interface {
	// Create returns domain.ErrDuplicateInvoice when the order already has an
	// invoice (unique constraint on order_id).
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id int32) (*domain.Invoice, error)
	GetByOrder(ctx context.Context, orderID int32) (*domain.Invoice, error)
	// Post moves a DRAFT invoice to POSTED with a posted-on timestamp.
	// Returns domain.ErrStateConflict when the invoice is not DRAFT.
	Post(ctx context.Context, id int32, postedOn time.Time) error
	// RecordPayment appends the payment and recomputes amount_paid and status
	// in a single transaction holding a row lock on the invoice, so concurrent
	// payments against the same invoice cannot lose updates.
	RecordPayment(ctx context.Context, invoiceID int32, p *domain.Payment) (*domain.Invoice, error)
	// AddFees folds late/damage fees into the invoice total under the same
	// row lock.
	AddFees(ctx context.Context, invoiceID int32, lateFee, damageFee domain.Money) error
	ListPayments(ctx context.Context, invoiceID int32) ([]domain.Payment, error)
}

type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	// IncrementUsage bumps the usage count, guarded by the usage limit.
	// Returns domain.ErrCouponInvalid when the limit is exhausted.
	IncrementUsage(ctx context.Context, id int32) error
}

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// DirectoryRepository resolves user IDs to notification contacts. Account
// management itself lives outside the engine.
type DirectoryRepository interface {
	GetContact(ctx context.Context, userID int32) (*domain.Contact, error)
}
