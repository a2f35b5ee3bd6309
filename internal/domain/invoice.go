package domain

import "time"

type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusPosted        InvoiceStatus = "POSTED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
)

// Invoice is derived from an order, one per order. Amounts are copied from
// the order at creation; late and damage fees recorded on a Return are folded
// into the total. AmountPaid only ever grows.
type Invoice struct {
	ID         int32         `json:"id"`
	OrderID    int32         `json:"order_id"`
	VendorID   int32         `json:"vendor_id"`
	CustomerID int32         `json:"customer_id"`
	Status     InvoiceStatus `json:"status"`
	Subtotal   Money         `json:"subtotal"`
	Tax        Money         `json:"tax"`
	Discount   Money         `json:"discount"`
	Deposit    Money         `json:"deposit"`
	LateFee    Money         `json:"late_fee"`
	DamageFee  Money         `json:"damage_fee"`
	Total      Money         `json:"total"`
	AmountPaid Money         `json:"amount_paid"`
	PostedOn   *time.Time    `json:"posted_on,omitempty"`
	CreatedOn  time.Time     `json:"created_on"`
}

// Outstanding is the unpaid balance. Never negative, even when overpaid.
func (i *Invoice) Outstanding() Money {
	rest := i.Total.Sub(i.AmountPaid)
	if rest.IsNegative() {
		return ZeroMoney()
	}
	return rest
}

// ApplyPayment accumulates a payment into the invoice and re-derives its
// status: PAID once AmountPaid covers Total, PARTIALLY_PAID otherwise.
// Callers run this inside the per-invoice transaction that appends the
// Payment row, so concurrent payments cannot lose updates.
func (i *Invoice) ApplyPayment(amount Money) {
	i.AmountPaid = i.AmountPaid.Add(amount)
	if i.AmountPaid.Cmp(i.Total) >= 0 {
		i.Status = InvoiceStatusPaid
	} else {
		i.Status = InvoiceStatusPartiallyPaid
	}
}

// AddFees folds late/damage fees into the invoice total, used when a return
// is recorded after the invoice was created. Status is re-derived since a
// fully paid invoice may become partially paid again.
func (i *Invoice) AddFees(lateFee, damageFee Money) {
	i.LateFee = i.LateFee.Add(lateFee)
	i.DamageFee = i.DamageFee.Add(damageFee)
	i.Total = i.Total.Add(lateFee).Add(damageFee)
	if i.Status == InvoiceStatusPaid && i.AmountPaid.Cmp(i.Total) < 0 {
		i.Status = InvoiceStatusPartiallyPaid
	}
}

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodGateway  PaymentMethod = "GATEWAY"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// Payment is an append-only record of money received against an invoice.
type Payment struct {
	ID            int32         `json:"id"`
	InvoiceID     int32         `json:"invoice_id"`
	Amount        Money         `json:"amount"`
	Method        PaymentMethod `json:"method"`
	TransactionID *string       `json:"transaction_id,omitempty"`
	Status        PaymentStatus `json:"status"`
	PaidAt        time.Time     `json:"paid_at"`
	CreatedOn     time.Time     `json:"created_on"`
}
