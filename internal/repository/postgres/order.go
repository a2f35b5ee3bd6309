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

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, customer_id, vendor_id, status, subtotal, tax, discount, deposit, total,
	coupon_code, delivery_address, notes, reminder_sent_at, overdue_alert_at, created_on, confirmed_on`

func (r *orderRepository) Create(ctx context.Context, order *domain.RentalOrder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO rental_orders (order_number, customer_id, vendor_id, status, subtotal, tax, discount, deposit, total, coupon_code, delivery_address, notes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	now := time.Now()
	err = tx.QueryRowContext(ctx, query,
		order.OrderNumber, order.CustomerID, order.VendorID, order.Status,
		order.Subtotal, order.Tax, order.Discount, order.Deposit, order.Total,
		order.CouponCode, order.DeliveryAddress, order.Notes, now,
	).Scan(&order.ID)
	if err != nil {
		return err
	}
	order.CreatedOn = now

	itemQuery := `INSERT INTO order_items (order_id, product_id, variant_id, quantity, start_date, end_date, unit_price, line_total)
	              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	for i := range order.Items {
		it := &order.Items[i]
		it.OrderID = order.ID
		err = tx.QueryRowContext(ctx, itemQuery,
			order.ID, it.ProductID, it.VariantID, it.Quantity,
			it.StartDate, it.EndDate, it.UnitPrice, it.LineTotal,
		).Scan(&it.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *orderRepository) GetByID(ctx context.Context, id int32) (*domain.RentalOrder, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *orderRepository) GetByNumber(ctx context.Context, orderNumber string) (*domain.RentalOrder, error) {
	return r.getBy(ctx, "order_number = $1", orderNumber)
}

func (r *orderRepository) getBy(ctx context.Context, where string, arg any) (*domain.RentalOrder, error) {
	order := &domain.RentalOrder{}
	query := `SELECT ` + orderColumns + ` FROM rental_orders WHERE ` + where
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&order.ID, &order.OrderNumber, &order.CustomerID, &order.VendorID, &order.Status,
		&order.Subtotal, &order.Tax, &order.Discount, &order.Deposit, &order.Total,
		&order.CouponCode, &order.DeliveryAddress, &order.Notes,
		&order.ReminderSentAt, &order.OverdueAlertAt, &order.CreatedOn, &order.ConfirmedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	items, err := r.itemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) itemsByOrder(ctx context.Context, orderID int32) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, variant_id, quantity, start_date, end_date, unit_price, line_total
	          FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VariantID, &it.Quantity, &it.StartDate, &it.EndDate, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID int32, status string, page, pageSize int32) ([]domain.RentalOrder, int32, error) {
	return r.list(ctx, "customer_id", customerID, status, page, pageSize)
}

func (r *orderRepository) ListByVendor(ctx context.Context, vendorID int32, status string, page, pageSize int32) ([]domain.RentalOrder, int32, error) {
	return r.list(ctx, "vendor_id", vendorID, status, page, pageSize)
}

func (r *orderRepository) list(ctx context.Context, ownerCol string, ownerID int32, status string, page, pageSize int32) ([]domain.RentalOrder, int32, error) {
	where := fmt.Sprintf("%s = $1", ownerCol)
	args := []any{ownerID}
	if status != "" {
		where += " AND status = $2"
		args = append(args, status)
	}

	var count int32
	countQuery := `SELECT count(*) FROM rental_orders WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT %s FROM rental_orders WHERE %s ORDER BY created_on DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.RentalOrder
	for rows.Next() {
		var o domain.RentalOrder
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.CustomerID, &o.VendorID, &o.Status,
			&o.Subtotal, &o.Tax, &o.Discount, &o.Deposit, &o.Total,
			&o.CouponCode, &o.DeliveryAddress, &o.Notes,
			&o.ReminderSentAt, &o.OverdueAlertAt, &o.CreatedOn, &o.ConfirmedOn,
		); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, count, rows.Err()
}
