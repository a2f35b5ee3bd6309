package domain

import "time"

// Product is a rentable listing owned by a vendor. BasePrice is per rental
// day; StockQty is the total number of units the vendor owns.
type Product struct {
	ID         int32     `json:"id"`
	VendorID   int32     `json:"vendor_id"`
	Name       string    `json:"name"`
	BasePrice  Money     `json:"base_price"`
	HourlyRate *Money    `json:"hourly_rate,omitempty"`
	StockQty   int32     `json:"stock_qty"`
	IsActive   bool      `json:"is_active"`
	CreatedOn  time.Time `json:"created_on"`
}

// ProductVariant is an optional variation of a product (size, color). It
// shares the parent product's stock pool.
type ProductVariant struct {
	ID        int32  `json:"id"`
	ProductID int32  `json:"product_id"`
	Name      string `json:"name"`
}

// Availability is the result of an availability check for a product over a
// date interval.
type Availability struct {
	ProductID int32 `json:"product_id"`
	Available int32 `json:"available"`
	Booked    int32 `json:"booked"`
	Total     int32 `json:"total"`
}

// Contact is the minimal directory record the engine needs to address
// notifications. User accounts themselves are managed elsewhere.
type Contact struct {
	UserID int32  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}
