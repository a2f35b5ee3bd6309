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

// lockOrderStatus locks the order row for the duration of the transaction and
// returns its current status.
func lockOrderStatus(ctx context.Context, tx *sql.Tx, orderID int32) (domain.OrderStatus, error) {
	var current domain.OrderStatus
	err := tx.QueryRowContext(ctx, `SELECT status FROM rental_orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return current, nil
}

// transitionLockedOrder flips the status of an order row this transaction
// already holds locked. A zero-row update means the row vanished underneath
// us.
func transitionLockedOrder(ctx context.Context, tx *sql.Tx, orderID int32, expected, next domain.OrderStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE rental_orders SET status = $1 WHERE id = $2 AND status = $3`,
		next, orderID, expected)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order %d: %w", orderID, domain.ErrConcurrencyConflict)
	}
	return nil
}

type pickupRepository struct {
	db *sql.DB
}

func NewPickupRepository(db *sql.DB) repository.PickupRepository {
	return &pickupRepository{db: db}
}

// RecordPickup runs the handover as one transaction: lock the order row,
// insert the pickup, flip CONFIRMED to PICKED_UP, commit. A failure at any
// step rolls the whole transition back, so the order is never PICKED_UP
// without its pickup record.
func (r *pickupRepository) RecordPickup(ctx context.Context, p *domain.Pickup) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	current, err := lockOrderStatus(ctx, tx, p.OrderID)
	if err != nil {
		return err
	}
	if current != domain.OrderStatusConfirmed {
		return fmt.Errorf("order %d is %s, pickup requires CONFIRMED: %w",
			p.OrderID, current, domain.ErrStateConflict)
	}

	query := `INSERT INTO pickups (order_id, picked_up_at, notes, created_on) VALUES ($1, $2, $3, $4) RETURNING id`
	err = tx.QueryRowContext(ctx, query, p.OrderID, p.PickedUpAt, p.Notes, time.Now()).Scan(&p.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("pickup already recorded for order %d: %w", p.OrderID, domain.ErrIllegalTransition)
	}
	if err != nil {
		return err
	}

	if err := transitionLockedOrder(ctx, tx, p.OrderID, current, domain.OrderStatusPickedUp); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *pickupRepository) GetByOrder(ctx context.Context, orderID int32) (*domain.Pickup, error) {
	p := &domain.Pickup{}
	query := `SELECT id, order_id, picked_up_at, notes, created_on FROM pickups WHERE order_id = $1`
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(&p.ID, &p.OrderID, &p.PickedUpAt, &p.Notes, &p.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pickup for order %d: %w", orderID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

type returnRepository struct {
	db *sql.DB
}

func NewReturnRepository(db *sql.DB) repository.ReturnRepository {
	return &returnRepository{db: db}
}

// RecordReturn closes out the rental in one transaction: lock the order row,
// insert the return, release the order's active reservations and flip
// PICKED_UP to RETURNED. The order cannot reach the terminal state while its
// reservations still hold stock.
func (r *returnRepository) RecordReturn(ctx context.Context, ret *domain.Return) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	current, err := lockOrderStatus(ctx, tx, ret.OrderID)
	if err != nil {
		return err
	}
	if current != domain.OrderStatusPickedUp {
		return fmt.Errorf("order %d is %s, return requires PICKED_UP: %w",
			ret.OrderID, current, domain.ErrStateConflict)
	}

	query := `INSERT INTO returns (order_id, returned_at, late_fee, damage_fee, notes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err = tx.QueryRowContext(ctx, query, ret.OrderID, ret.ReturnedAt, ret.LateFee, ret.DamageFee, ret.Notes, time.Now()).Scan(&ret.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("return already recorded for order %d: %w", ret.OrderID, domain.ErrIllegalTransition)
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = 'RELEASED' WHERE order_id = $1 AND status = 'ACTIVE'`,
		ret.OrderID); err != nil {
		return err
	}

	if err := transitionLockedOrder(ctx, tx, ret.OrderID, current, domain.OrderStatusReturned); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *returnRepository) GetByOrder(ctx context.Context, orderID int32) (*domain.Return, error) {
	ret := &domain.Return{}
	query := `SELECT id, order_id, returned_at, late_fee, damage_fee, notes, created_on FROM returns WHERE order_id = $1`
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(&ret.ID, &ret.OrderID, &ret.ReturnedAt, &ret.LateFee, &ret.DamageFee, &ret.Notes, &ret.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("return for order %d: %w", orderID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}
