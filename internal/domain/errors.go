package domain

import "errors"

// Engine error kinds. Callers match with errors.Is; the HTTP layer maps each
// kind to a status code. Storage failures that are none of these surface as
// generic internal errors.
var (
	ErrInvalidRange              = errors.New("invalid date range")
	ErrNotFound                  = errors.New("not found")
	ErrForbidden                 = errors.New("forbidden")
	ErrStateConflict             = errors.New("order not in expected status")
	ErrIllegalTransition         = errors.New("illegal state transition")
	ErrInsufficientStock         = errors.New("insufficient stock")
	ErrCouponInvalid             = errors.New("coupon is not applicable")
	ErrDuplicateInvoice          = errors.New("invoice already exists for this order")
	ErrPaymentVerificationFailed = errors.New("payment confirmation signature mismatch")
	ErrConcurrencyConflict       = errors.New("concurrent modification, retry")
)
