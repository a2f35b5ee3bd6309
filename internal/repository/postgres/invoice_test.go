package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentmarket-backend/internal/domain"
)

func invoiceRows(total, amountPaid string, status domain.InvoiceStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "order_id", "vendor_id", "customer_id", "status", "subtotal", "tax", "discount", "deposit",
		"late_fee", "damage_fee", "total", "amount_paid", "posted_on", "created_on",
	}).AddRow(30, 20, 7, 55, string(status), "2000.00", "360.00", "0.00", "200.00",
		"0.00", "0.00", total, amountPaid, nil, time.Now())
}

func TestInvoiceRepository_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO invoices`).
		WillReturnError(&pq.Error{Code: "23505"})

	inv := &domain.Invoice{OrderID: 20, Status: domain.InvoiceStatusDraft}
	err = repo.Create(ctx, inv)
	assert.ErrorIs(t, err, domain.ErrDuplicateInvoice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_RecordPayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	t.Run("Partial Payment", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM invoices WHERE id = \$1 FOR UPDATE`).
			WithArgs(int32(30)).
			WillReturnRows(invoiceRows("2560.00", "0.00", domain.InvoiceStatusPosted))
		mock.ExpectQuery(`INSERT INTO payments`).
			WithArgs(int32(30), domain.MustMoney("1000.00"), "CASH", nil, "COMPLETED", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec(`UPDATE invoices SET amount_paid = \$1, status = \$2`).
			WithArgs(domain.MustMoney("1000.00"), "PARTIALLY_PAID", int32(30)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		payment := &domain.Payment{
			Amount: domain.MustMoney("1000.00"),
			Method: domain.PaymentMethodCash,
			Status: domain.PaymentStatusCompleted,
			PaidAt: time.Now(),
		}
		inv, err := repo.RecordPayment(ctx, 30, payment)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPartiallyPaid, inv.Status)
		assert.Equal(t, "1000.00", inv.AmountPaid.String())
		assert.Equal(t, int32(1), payment.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Final Payment Settles", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM invoices WHERE id = \$1 FOR UPDATE`).
			WithArgs(int32(30)).
			WillReturnRows(invoiceRows("2560.00", "1000.00", domain.InvoiceStatusPartiallyPaid))
		mock.ExpectQuery(`INSERT INTO payments`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
		mock.ExpectExec(`UPDATE invoices SET amount_paid = \$1, status = \$2`).
			WithArgs(domain.MustMoney("2560.00"), "PAID", int32(30)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		payment := &domain.Payment{
			Amount: domain.MustMoney("1560.00"),
			Method: domain.PaymentMethodCard,
			Status: domain.PaymentStatusCompleted,
			PaidAt: time.Now(),
		}
		inv, err := repo.RecordPayment(ctx, 30, payment)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, inv.Status)
		assert.Equal(t, "0.00", inv.Outstanding().String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Invoice Rolls Back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM invoices WHERE id = \$1 FOR UPDATE`).
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := repo.RecordPayment(ctx, 99, &domain.Payment{Amount: domain.MustMoney("1.00")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInvoiceRepository_Post(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvoiceRepository(db)
	ctx := context.Background()
	postedOn := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE invoices SET status = 'POSTED'`).
			WithArgs(postedOn, int32(30)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Post(ctx, 30, postedOn))
	})

	t.Run("Already Posted", func(t *testing.T) {
		mock.ExpectExec(`UPDATE invoices SET status = 'POSTED'`).
			WithArgs(postedOn, int32(30)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM invoices WHERE id = \$1`).
			WithArgs(int32(30)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("POSTED"))

		err := repo.Post(ctx, 30, postedOn)
		assert.ErrorIs(t, err, domain.ErrStateConflict)
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE invoices SET status = 'POSTED'`).
			WithArgs(postedOn, int32(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM invoices WHERE id = \$1`).
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}))

		err := repo.Post(ctx, 99, postedOn)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInvoiceRepository_AddFees(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	// Fully paid invoice reopens when fees land.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM invoices WHERE id = \$1 FOR UPDATE`).
		WithArgs(int32(30)).
		WillReturnRows(invoiceRows("2560.00", "2560.00", domain.InvoiceStatusPaid))
	mock.ExpectExec(`UPDATE invoices SET late_fee = \$1, damage_fee = \$2`).
		WithArgs(domain.MustMoney("300.00"), domain.MustMoney("50.00"), domain.MustMoney("2910.00"), "PARTIALLY_PAID", int32(30)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.AddFees(ctx, 30, domain.MustMoney("300.00"), domain.MustMoney("50.00"))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
