package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"rentmarket-backend/internal/domain"
)

// MockProductRepo
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockProductRepo) GetByID(ctx context.Context, id int32) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
func (m *MockProductRepo) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockProductRepo) ListByVendor(ctx context.Context, vendorID, page, pageSize int32) ([]domain.Product, int32, error) {
	args := m.Called(ctx, vendorID, page, pageSize)
	return args.Get(0).([]domain.Product), args.Get(1).(int32), args.Error(2)
}

// MockOrderRepo
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, order *domain.RentalOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}
func (m *MockOrderRepo) GetByID(ctx context.Context, id int32) (*domain.RentalOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalOrder), args.Error(1)
}
func (m *MockOrderRepo) GetByNumber(ctx context.Context, orderNumber string) (*domain.RentalOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalOrder), args.Error(1)
}
func (m *MockOrderRepo) ListByCustomer(ctx context.Context, customerID int32, status string, page, pageSize int32) ([]domain.RentalOrder, int32, error) {
	args := m.Called(ctx, customerID, status, page, pageSize)
	return args.Get(0).([]domain.RentalOrder), args.Get(1).(int32), args.Error(2)
}
func (m *MockOrderRepo) ListByVendor(ctx context.Context, vendorID int32, status string, page, pageSize int32) ([]domain.RentalOrder, int32, error) {
	args := m.Called(ctx, vendorID, status, page, pageSize)
	return args.Get(0).([]domain.RentalOrder), args.Get(1).(int32), args.Error(2)
}

// MockReservationRepo
type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) SumActiveOverlapping(ctx context.Context, productID int32, start, end time.Time) (int32, error) {
	args := m.Called(ctx, productID, start, end)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockReservationRepo) ConfirmOrder(ctx context.Context, order *domain.RentalOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}
func (m *MockReservationRepo) CancelOrder(ctx context.Context, orderID int32) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
func (m *MockReservationRepo) ListByOrder(ctx context.Context, orderID int32) ([]domain.Reservation, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
// MockPickupRepo
type MockPickupRepo struct {
	mock.Mock
}

func (m *MockPickupRepo) RecordPickup(ctx context.Context, p *domain.Pickup) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPickupRepo) GetByOrder(ctx context.Context, orderID int32) (*domain.Pickup, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pickup), args.Error(1)
}

// MockReturnRepo
type MockReturnRepo struct {
	mock.Mock
}

func (m *MockReturnRepo) RecordReturn(ctx context.Context, r *domain.Return) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockReturnRepo) GetByOrder(ctx context.Context, orderID int32) (*domain.Return, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Return), args.Error(1)
}

// MockInvoiceRepo
type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}
func (m *MockInvoiceRepo) GetByID(ctx context.Context, id int32) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceRepo) GetByOrder(ctx context.Context, orderID int32) (*domain.Invoice, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceRepo) Post(ctx context.Context, id int32, postedOn time.Time) error {
	args := m.Called(ctx, id, postedOn)
	return args.Error(0)
}
func (m *MockInvoiceRepo) RecordPayment(ctx context.Context, invoiceID int32, p *domain.Payment) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceRepo) AddFees(ctx context.Context, invoiceID int32, lateFee, damageFee domain.Money) error {
	args := m.Called(ctx, invoiceID, lateFee, damageFee)
	return args.Error(0)
}
func (m *MockInvoiceRepo) ListPayments(ctx context.Context, invoiceID int32) ([]domain.Payment, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

// MockCouponRepo
type MockCouponRepo struct {
	mock.Mock
}

func (m *MockCouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}
func (m *MockCouponRepo) IncrementUsage(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendPickupConfirmation(ctx context.Context, order *domain.RentalOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}
func (m *MockNotifier) SendReturnReminder(ctx context.Context, order *domain.RentalOrder, endDate time.Time) error {
	args := m.Called(ctx, order, endDate)
	return args.Error(0)
}
func (m *MockNotifier) SendLateReturnAlert(ctx context.Context, order *domain.RentalOrder, daysLate int32, lateFee domain.Money) error {
	args := m.Called(ctx, order, daysLate, lateFee)
	return args.Error(0)
}

// MockGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, invoice *domain.Invoice) (*PaymentIntent, error) {
	args := m.Called(ctx, invoice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentIntent), args.Error(1)
}

// stubSettings serves fixed engine settings without a store.
type stubSettings struct {
	taxRate       string
	lateFeePerDay string
	lookahead     time.Duration
}

func (s stubSettings) String(_ context.Context, _, fallback string) string {
	return fallback
}
func (s stubSettings) TaxRate(_ context.Context) decimal.Decimal {
	return decimal.RequireFromString(s.taxRate)
}
func (s stubSettings) LateFeePerDay(_ context.Context) domain.Money {
	return domain.MustMoney(s.lateFeePerDay)
}
func (s stubSettings) ReminderLookahead(_ context.Context) time.Duration {
	return s.lookahead
}
