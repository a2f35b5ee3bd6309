package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/security"
)

type ProductService interface {
	GetProduct(ctx context.Context, productID int32) (*domain.Product, error)
	// CreateProduct registers a vendor-owned product listing.
	CreateProduct(ctx context.Context, caller security.Caller, product *domain.Product) (*domain.Product, error)
	// UpdateProduct changes price, stock or active flag. Vendors may only
	// touch their own listings.
	UpdateProduct(ctx context.Context, caller security.Caller, product *domain.Product) (*domain.Product, error)
	ListVendorProducts(ctx context.Context, caller security.Caller, vendorID int32, page, pageSize int32) ([]domain.Product, int32, error)
}

type AvailabilityService interface {
	CheckAvailability(ctx context.Context, productID int32, start, end time.Time) (*domain.Availability, error)
}

// CheckoutItem is one requested product line at checkout time.
type CheckoutItem struct {
	ProductID int32      `json:"product_id"`
	VariantID *int32     `json:"variant_id,omitempty"`
	Quantity  int32      `json:"quantity"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
}

// QuoteLine is a priced checkout item.
type QuoteLine struct {
	CheckoutItem
	DurationDays int32        `json:"duration_days"`
	UnitPrice    domain.Money `json:"unit_price"`
	LineTotal    domain.Money `json:"line_total"`
}

// Quote is the priced result of a checkout computation. Total excludes
// deposit, which is added separately at order creation and never discounted.
type Quote struct {
	Lines    []QuoteLine    `json:"lines"`
	Subtotal domain.Money   `json:"subtotal"`
	Tax      domain.Money   `json:"tax"`
	Discount domain.Money   `json:"discount"`
	Total    domain.Money   `json:"total"`
	Coupon   *domain.Coupon `json:"-"`
}

type PricingService interface {
	ComputeCheckout(ctx context.Context, items []CheckoutItem, couponCode string) (*Quote, error)
}

// CheckoutInput is the request payload for creating a quotation or an order.
type CheckoutInput struct {
	Items      []CheckoutItem `json:"items"`
	CouponCode string         `json:"coupon_code,omitempty"`
	Deposit    domain.Money   `json:"deposit"`
	// CustomerID names the customer a vendor- or admin-drafted order is for.
	// Customers always order for themselves.
	CustomerID      int32  `json:"customer_id,omitempty"`
	DeliveryAddress string `json:"delivery_address,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type OrderService interface {
	// CreateQuotation drafts a vendor/admin estimate in QUOTATION state. No
	// stock is held.
	CreateQuotation(ctx context.Context, caller security.Caller, in CheckoutInput) (*domain.RentalOrder, error)
	// Checkout creates a customer order in RENTAL_ORDER state. Availability
	// is checked but remains advisory until confirmation.
	Checkout(ctx context.Context, caller security.Caller, in CheckoutInput) (*domain.RentalOrder, error)
	// Confirm reserves stock for every item and moves the order to CONFIRMED.
	Confirm(ctx context.Context, caller security.Caller, orderID int32) (*domain.RentalOrder, error)
	// RecordPickup creates the single Pickup record and moves the order to
	// PICKED_UP.
	RecordPickup(ctx context.Context, caller security.Caller, orderID int32, notes string) (*domain.RentalOrder, error)
	// RecordReturn assesses late/damage fees, creates the single Return
	// record, releases the order's reservations and moves it to RETURNED.
	RecordReturn(ctx context.Context, caller security.Caller, orderID int32, damageFee domain.Money, notes string) (*domain.RentalOrder, error)
	// Cancel cancels a not-yet-picked-up order, releasing any reservations.
	Cancel(ctx context.Context, caller security.Caller, orderID int32, reason string) (*domain.RentalOrder, error)
	GetOrder(ctx context.Context, caller security.Caller, orderID int32) (*domain.RentalOrder, error)
	ListMyOrders(ctx context.Context, caller security.Caller, status string, page, pageSize int32) ([]domain.RentalOrder, int32, error)
	// ListVendorOrders lists a vendor's order book. A zero vendorID defaults
	// to the caller's own vendor; admins must name the vendor.
	ListVendorOrders(ctx context.Context, caller security.Caller, vendorID int32, status string, page, pageSize int32) ([]domain.RentalOrder, int32, error)
}

type InvoiceService interface {
	CreateInvoice(ctx context.Context, caller security.Caller, orderID int32) (*domain.Invoice, error)
	PostInvoice(ctx context.Context, caller security.Caller, invoiceID int32) (*domain.Invoice, error)
	RecordPayment(ctx context.Context, caller security.Caller, invoiceID int32, amount domain.Money, method domain.PaymentMethod, transactionID *string) (*domain.Invoice, error)
	// CreatePaymentIntent asks the payment gateway for a remote intent. The
	// gateway call is fallible and never rolls back committed state.
	CreatePaymentIntent(ctx context.Context, caller security.Caller, invoiceID int32) (*PaymentIntent, error)
	// ConfirmGatewayPayment verifies the confirmation payload signature
	// against the shared secret and records the payment. No Payment row is
	// written on a signature mismatch.
	ConfirmGatewayPayment(ctx context.Context, payload []byte, signature string) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, caller security.Caller, invoiceID int32) (*domain.Invoice, error)
	ListPayments(ctx context.Context, caller security.Caller, invoiceID int32) ([]domain.Payment, error)
}

// Notifier delivers customer-facing notifications. Calls are fire-and-forget
// from the engine's point of view: failures are logged by callers and never
// block or roll back a state change.
type Notifier interface {
	SendPickupConfirmation(ctx context.Context, order *domain.RentalOrder) error
	SendReturnReminder(ctx context.Context, order *domain.RentalOrder, endDate time.Time) error
	SendLateReturnAlert(ctx context.Context, order *domain.RentalOrder, daysLate int32, lateFee domain.Money) error
}

// Settings exposes typed engine settings backed by the settings store, with
// configured fallbacks when a key is absent.
type Settings interface {
	String(ctx context.Context, key, fallback string) string
	TaxRate(ctx context.Context) decimal.Decimal
	LateFeePerDay(ctx context.Context) domain.Money
	ReminderLookahead(ctx context.Context) time.Duration
}

// PaymentIntent is the remote payment handle returned by the gateway.
type PaymentIntent struct {
	IntentID  string       `json:"intent_id"`
	InvoiceID int32        `json:"invoice_id"`
	Amount    domain.Money `json:"amount"`
}

// PaymentGateway creates remote payment intents. Confirmations come back
// through the webhook as signed payloads verified locally.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, invoice *domain.Invoice) (*PaymentIntent, error)
}
