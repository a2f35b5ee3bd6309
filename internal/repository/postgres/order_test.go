package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentmarket-backend/internal/domain"
)

func TestOrderRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepository(db)
	ctx := context.Background()

	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)

	order := &domain.RentalOrder{
		OrderNumber: "ORD-20250201-0001",
		CustomerID:  55,
		VendorID:    7,
		Status:      domain.OrderStatusQuotation,
		Subtotal:    domain.MustMoney("2000.00"),
		Tax:         domain.MustMoney("360.00"),
		Discount:    domain.MustMoney("0.00"),
		Deposit:     domain.MustMoney("200.00"),
		Total:       domain.MustMoney("2560.00"),
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, StartDate: start, EndDate: end,
				UnitPrice: domain.MustMoney("1000.00"), LineTotal: domain.MustMoney("2000.00")},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO rental_orders`).
		WithArgs("ORD-20250201-0001", int32(55), int32(7), "QUOTATION",
			domain.MustMoney("2000.00"), domain.MustMoney("360.00"), domain.MustMoney("0.00"),
			domain.MustMoney("200.00"), domain.MustMoney("2560.00"),
			"", "", "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(20))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WithArgs(int32(20), int32(1), nil, int32(2), start, end,
			domain.MustMoney("1000.00"), domain.MustMoney("2000.00")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(ctx, order))
	assert.Equal(t, int32(20), order.ID)
	assert.Equal(t, int32(20), order.Items[0].OrderID)
	assert.Equal(t, int32(100), order.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
