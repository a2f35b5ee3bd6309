package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"rentmarket-backend/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.ProductRepository
	repository.OrderRepository
	repository.ReservationRepository
	repository.PickupRepository
	repository.ReturnRepository
	repository.InvoiceRepository
	repository.CouponRepository
	repository.SettingsRepository
	repository.DirectoryRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		ProductRepository:     NewProductRepository(db),
		OrderRepository:       NewOrderRepository(db),
		ReservationRepository: NewReservationRepository(db),
		PickupRepository:      NewPickupRepository(db),
		ReturnRepository:      NewReturnRepository(db),
		InvoiceRepository:     NewInvoiceRepository(db),
		CouponRepository:      NewCouponRepository(db),
		SettingsRepository:    NewSettingsRepository(db),
		DirectoryRepository:   NewDirectoryRepository(db),
	}
}

// uniqueViolation codes from the postgres error table.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
