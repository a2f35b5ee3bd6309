package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/repository"
)

type invoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) repository.InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, order_id, vendor_id, customer_id, status, subtotal, tax, discount, deposit,
	late_fee, damage_fee, total, amount_paid, posted_on, created_on`

func (r *invoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	query := `INSERT INTO invoices (order_id, vendor_id, customer_id, status, subtotal, tax, discount, deposit, late_fee, damage_fee, total, amount_paid, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		inv.OrderID, inv.VendorID, inv.CustomerID, inv.Status,
		inv.Subtotal, inv.Tax, inv.Discount, inv.Deposit,
		inv.LateFee, inv.DamageFee, inv.Total, inv.AmountPaid, now,
	).Scan(&inv.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("order %d: %w", inv.OrderID, domain.ErrDuplicateInvoice)
	}
	if err != nil {
		return err
	}
	inv.CreatedOn = now
	return nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id int32) (*domain.Invoice, error) {
	return r.getBy(ctx, r.db.QueryRowContext, "id = $1", id)
}

func (r *invoiceRepository) GetByOrder(ctx context.Context, orderID int32) (*domain.Invoice, error) {
	return r.getBy(ctx, r.db.QueryRowContext, "order_id = $1", orderID)
}

type rowQuerier func(ctx context.Context, query string, args ...any) *sql.Row

func (r *invoiceRepository) getBy(ctx context.Context, queryRow rowQuerier, where string, arg any) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + where
	err := queryRow(ctx, query, arg).Scan(
		&inv.ID, &inv.OrderID, &inv.VendorID, &inv.CustomerID, &inv.Status,
		&inv.Subtotal, &inv.Tax, &inv.Discount, &inv.Deposit,
		&inv.LateFee, &inv.DamageFee, &inv.Total, &inv.AmountPaid,
		&inv.PostedOn, &inv.CreatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) Post(ctx context.Context, id int32, postedOn time.Time) error {
	query := `UPDATE invoices SET status = 'POSTED', posted_on = $1 WHERE id = $2 AND status = 'DRAFT'`
	res, err := r.db.ExecContext(ctx, query, postedOn, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var current domain.InvoiceStatus
	err = r.db.QueryRowContext(ctx, `SELECT status FROM invoices WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("invoice %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("invoice %d is %s, posting requires DRAFT: %w", id, current, domain.ErrStateConflict)
}

// RecordPayment serializes per invoice: the invoice row is locked FOR UPDATE
// while the payment is appended and amount_paid/status are recomputed, so N
// concurrent payments always sum.
func (r *invoiceRepository) RecordPayment(ctx context.Context, invoiceID int32, p *domain.Payment) (*domain.Invoice, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	inv, err := r.getBy(ctx, tx.QueryRowContext, "id = $1 FOR UPDATE", invoiceID)
	if err != nil {
		return nil, err
	}

	insert := `INSERT INTO payments (invoice_id, amount, method, transaction_id, status, paid_at, created_on)
	           VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	p.InvoiceID = invoiceID
	if err := tx.QueryRowContext(ctx, insert, invoiceID, p.Amount, p.Method, p.TransactionID, p.Status, p.PaidAt, time.Now()).Scan(&p.ID); err != nil {
		return nil, err
	}

	inv.ApplyPayment(p.Amount)
	if _, err := tx.ExecContext(ctx,
		`UPDATE invoices SET amount_paid = $1, status = $2 WHERE id = $3`,
		inv.AmountPaid, inv.Status, invoiceID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) AddFees(ctx context.Context, invoiceID int32, lateFee, damageFee domain.Money) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	inv, err := r.getBy(ctx, tx.QueryRowContext, "id = $1 FOR UPDATE", invoiceID)
	if err != nil {
		return err
	}

	inv.AddFees(lateFee, damageFee)
	if _, err := tx.ExecContext(ctx,
		`UPDATE invoices SET late_fee = $1, damage_fee = $2, total = $3, status = $4 WHERE id = $5`,
		inv.LateFee, inv.DamageFee, inv.Total, inv.Status, invoiceID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *invoiceRepository) ListPayments(ctx context.Context, invoiceID int32) ([]domain.Payment, error) {
	query := `SELECT id, invoice_id, amount, method, transaction_id, status, paid_at, created_on
	          FROM payments WHERE invoice_id = $1 ORDER BY paid_at`
	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.TransactionID, &p.Status, &p.PaidAt, &p.CreatedOn); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
