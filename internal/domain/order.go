package domain

import "time"

type OrderStatus string

const (
	OrderStatusQuotation   OrderStatus = "QUOTATION"
	OrderStatusRentalOrder OrderStatus = "RENTAL_ORDER"
	OrderStatusConfirmed   OrderStatus = "CONFIRMED"
	OrderStatusPickedUp    OrderStatus = "PICKED_UP"
	OrderStatusReturned    OrderStatus = "RETURNED"
	OrderStatusCancelled   OrderStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are legal from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusReturned || s == OrderStatusCancelled
}

// Cancellable reports whether an order in status s may still be cancelled.
// Picked-up orders must come back through the return flow.
func (s OrderStatus) Cancellable() bool {
	switch s {
	case OrderStatusQuotation, OrderStatusRentalOrder, OrderStatusConfirmed:
		return true
	}
	return false
}

// RentalOrder is the aggregate root of the rental lifecycle. Status is
// mutated only through the state machine; orders are never deleted, only
// cancelled.
type RentalOrder struct {
	ID              int32       `json:"id"`
	OrderNumber     string      `json:"order_number"`
	CustomerID      int32       `json:"customer_id"`
	VendorID        int32       `json:"vendor_id"`
	Status          OrderStatus `json:"status"`
	Subtotal        Money       `json:"subtotal"`
	Tax             Money       `json:"tax"`
	Discount        Money       `json:"discount"`
	Deposit         Money       `json:"deposit"`
	Total           Money       `json:"total"`
	CouponCode      string      `json:"coupon_code,omitempty"`
	DeliveryAddress string      `json:"delivery_address,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	Items           []OrderItem `json:"items,omitempty"`
	ReminderSentAt  *time.Time  `json:"reminder_sent_at,omitempty"`
	OverdueAlertAt  *time.Time  `json:"overdue_alert_at,omitempty"`
	CreatedOn       time.Time   `json:"created_on"`
	ConfirmedOn     *time.Time  `json:"confirmed_on,omitempty"`
}

// EarliestEndDate is the order-level return deadline: the earliest end date
// among the order's items. Lateness for the whole order keys off this date;
// items with staggered end dates are not tracked individually.
func (o *RentalOrder) EarliestEndDate() time.Time {
	var earliest time.Time
	for _, it := range o.Items {
		if earliest.IsZero() || it.EndDate.Before(earliest) {
			earliest = it.EndDate
		}
	}
	return earliest
}

// OrderItem is a single product line on an order. Immutable after order
// creation; LineTotal = UnitPrice × Quantity.
type OrderItem struct {
	ID        int32     `json:"id"`
	OrderID   int32     `json:"order_id"`
	ProductID int32     `json:"product_id"`
	VariantID *int32    `json:"variant_id,omitempty"`
	Quantity  int32     `json:"quantity"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	UnitPrice Money     `json:"unit_price"`
	LineTotal Money     `json:"line_total"`
}
