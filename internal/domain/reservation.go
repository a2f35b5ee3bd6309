package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusActive   ReservationStatus = "ACTIVE"
	ReservationStatusReleased ReservationStatus = "RELEASED"
)

// Reservation is a hold of Quantity units of a product for the half-open
// interval [StartDate, EndDate). The set of ACTIVE reservations for a product
// is the sole source of truth for availability. Reservations are released,
// never deleted.
type Reservation struct {
	ID        int32             `json:"id"`
	OrderID   int32             `json:"order_id"`
	ProductID int32             `json:"product_id"`
	VariantID *int32            `json:"variant_id,omitempty"`
	Quantity  int32             `json:"quantity"`
	StartDate time.Time         `json:"start_date"`
	EndDate   time.Time         `json:"end_date"`
	Status    ReservationStatus `json:"status"`
	CreatedOn time.Time         `json:"created_on"`
}

// Pickup records the hand-over of an order to the customer. At most one per
// order, enforced by a unique constraint on order_id.
type Pickup struct {
	ID         int32     `json:"id"`
	OrderID    int32     `json:"order_id"`
	PickedUpAt time.Time `json:"picked_up_at"`
	Notes      string    `json:"notes,omitempty"`
	CreatedOn  time.Time `json:"created_on"`
}

// Return records the items coming back, with any late and damage fees
// assessed at return time. At most one per order.
type Return struct {
	ID         int32     `json:"id"`
	OrderID    int32     `json:"order_id"`
	ReturnedAt time.Time `json:"returned_at"`
	LateFee    Money     `json:"late_fee"`
	DamageFee  Money     `json:"damage_fee"`
	Notes      string    `json:"notes,omitempty"`
	CreatedOn  time.Time `json:"created_on"`
}
