package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/repository"
)

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

// Half-open overlap: a reservation [s, e) overlaps [start, end) iff
// s < end AND e > start. Back-to-back bookings do not overlap.
const overlapQuery = `SELECT COALESCE(SUM(quantity), 0) FROM reservations
	WHERE product_id = $1 AND status = 'ACTIVE' AND start_date < $2 AND end_date > $3`

func (r *reservationRepository) SumActiveOverlapping(ctx context.Context, productID int32, start, end time.Time) (int32, error) {
	var booked int32
	err := r.db.QueryRowContext(ctx, overlapQuery, productID, end, start).Scan(&booked)
	if err != nil {
		return 0, err
	}
	return booked, nil
}

// ConfirmOrder is the serialization point for confirm-and-reserve. Product
// rows are locked FOR UPDATE in ascending id order, then booked quantities
// are recomputed under the lock before each reservation insert, so two
// concurrent confirmations of overlapping intervals cannot both pass the
// capacity check.
func (r *reservationRepository) ConfirmOrder(ctx context.Context, order *domain.RentalOrder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current domain.OrderStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM rental_orders WHERE id = $1 FOR UPDATE`, order.ID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("order %d: %w", order.ID, domain.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if current != domain.OrderStatusQuotation && current != domain.OrderStatusRentalOrder {
		return fmt.Errorf("order %d is %s: %w", order.ID, current, domain.ErrStateConflict)
	}

	stock := make(map[int32]int32)
	for _, id := range sortedProductIDs(order.Items) {
		var qty int32
		err = tx.QueryRowContext(ctx, `SELECT stock_qty FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&qty)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return err
		}
		stock[id] = qty
	}

	insert := `INSERT INTO reservations (order_id, product_id, variant_id, quantity, start_date, end_date, status, created_on)
	           VALUES ($1, $2, $3, $4, $5, $6, 'ACTIVE', NOW())`
	for _, it := range order.Items {
		var booked int32
		// Earlier inserts in this transaction are visible here, so multiple
		// items on the same product accumulate correctly.
		if err := tx.QueryRowContext(ctx, overlapQuery, it.ProductID, it.EndDate, it.StartDate).Scan(&booked); err != nil {
			return err
		}
		if booked+it.Quantity > stock[it.ProductID] {
			return fmt.Errorf("product %d: %d booked of %d for requested interval: %w",
				it.ProductID, booked, stock[it.ProductID], domain.ErrInsufficientStock)
		}
		if _, err := tx.ExecContext(ctx, insert, order.ID, it.ProductID, it.VariantID, it.Quantity, it.StartDate, it.EndDate); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE rental_orders SET status = 'CONFIRMED', confirmed_on = NOW() WHERE id = $1 AND status = $2`,
		order.ID, current)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// The row is locked by this transaction; a miss here means the order
		// vanished underneath us.
		return fmt.Errorf("order %d: %w", order.ID, domain.ErrConcurrencyConflict)
	}

	return tx.Commit()
}

// CancelOrder terminates a cancellable order and releases its reservations in
// one transaction, so a storage error cannot leave a cancelled order still
// holding stock.
func (r *reservationRepository) CancelOrder(ctx context.Context, orderID int32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	current, err := lockOrderStatus(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if !current.Cancellable() {
		return fmt.Errorf("order %d is %s and cannot be cancelled: %w",
			orderID, current, domain.ErrIllegalTransition)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = 'RELEASED' WHERE order_id = $1 AND status = 'ACTIVE'`,
		orderID); err != nil {
		return err
	}

	if err := transitionLockedOrder(ctx, tx, orderID, current, domain.OrderStatusCancelled); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *reservationRepository) ListByOrder(ctx context.Context, orderID int32) ([]domain.Reservation, error) {
	query := `SELECT id, order_id, product_id, variant_id, quantity, start_date, end_date, status, created_on
	          FROM reservations WHERE order_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.OrderID, &res.ProductID, &res.VariantID, &res.Quantity, &res.StartDate, &res.EndDate, &res.Status, &res.CreatedOn); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

// sortedProductIDs returns the distinct product ids of the items in ascending
// order. Locking rows in a stable order avoids deadlocks between concurrent
// confirmations.
func sortedProductIDs(items []domain.OrderItem) []int32 {
	seen := make(map[int32]bool)
	var ids []int32
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
