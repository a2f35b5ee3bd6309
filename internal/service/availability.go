package service

import (
	"context"
	"fmt"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/repository"
)

type availabilityService struct {
	productRepo     repository.ProductRepository
	reservationRepo repository.ReservationRepository
}

func NewAvailabilityService(productRepo repository.ProductRepository, reservationRepo repository.ReservationRepository) AvailabilityService {
	return &availabilityService{
		productRepo:     productRepo,
		reservationRepo: reservationRepo,
	}
}

// CheckAvailability derives remaining stock for a product over [start, end)
// from its active reservations. The result is advisory for checkout; the
// binding capacity check happens again inside the confirm transaction.
func (s *availabilityService) CheckAvailability(ctx context.Context, productID int32, start, end time.Time) (*domain.Availability, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	booked, err := s.reservationRepo.SumActiveOverlapping(ctx, productID, start, end)
	if err != nil {
		return nil, err
	}

	available := product.StockQty - booked
	if available < 0 {
		available = 0
	}

	return &domain.Availability{
		ProductID: productID,
		Available: available,
		Booked:    booked,
		Total:     product.StockQty,
	}, nil
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("start and end are required: %w", domain.ErrInvalidRange)
	}
	if !start.Before(end) {
		return fmt.Errorf("end must be after start: %w", domain.ErrInvalidRange)
	}
	return nil
}
