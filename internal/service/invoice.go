package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"
	"rentmarket-backend/internal/security"
)

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	orderRepo   repository.OrderRepository
	returnRepo  repository.ReturnRepository
	gateway     PaymentGateway
	verifier    *SignatureVerifier
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	returnRepo repository.ReturnRepository,
	gateway PaymentGateway,
	verifier *SignatureVerifier,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		returnRepo:  returnRepo,
		gateway:     gateway,
		verifier:    verifier,
	}
}

// invoiceableStatuses are the order statuses an invoice may be derived from.
func invoiceable(status domain.OrderStatus) bool {
	switch status {
	case domain.OrderStatusRentalOrder, domain.OrderStatusConfirmed,
		domain.OrderStatusPickedUp, domain.OrderStatusReturned:
		return true
	}
	return false
}

// CreateInvoice derives the single invoice for an order, copying its amounts
// and folding in any fees already recorded on a Return.
func (s *invoiceService) CreateInvoice(ctx context.Context, caller security.Caller, orderID int32) (*domain.Invoice, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, ActionInvoice, orderResource(order)); err != nil {
		return nil, err
	}
	if !invoiceable(order.Status) {
		return nil, fmt.Errorf("order %s is %s and cannot be invoiced: %w",
			order.OrderNumber, order.Status, domain.ErrStateConflict)
	}

	lateFee := domain.ZeroMoney()
	damageFee := domain.ZeroMoney()
	ret, err := s.returnRepo.GetByOrder(ctx, orderID)
	switch {
	case err == nil:
		lateFee = ret.LateFee
		damageFee = ret.DamageFee
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	invoice := &domain.Invoice{
		OrderID:    orderID,
		VendorID:   order.VendorID,
		CustomerID: order.CustomerID,
		Status:     domain.InvoiceStatusDraft,
		Subtotal:   order.Subtotal,
		Tax:        order.Tax,
		Discount:   order.Discount,
		Deposit:    order.Deposit,
		LateFee:    lateFee,
		DamageFee:  damageFee,
		Total:      order.Total.Add(lateFee).Add(damageFee),
		AmountPaid: domain.ZeroMoney(),
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	logger.Info("Invoice created", "invoice_id", invoice.ID, "order", order.OrderNumber, "total", invoice.Total.String())
	return invoice, nil
}

// PostInvoice finalizes a draft. Irreversible.
func (s *invoiceService) PostInvoice(ctx context.Context, caller security.Caller, invoiceID int32) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, ActionInvoice, invoiceResource(invoice)); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Post(ctx, invoiceID, time.Now()); err != nil {
		return nil, err
	}
	return s.invoiceRepo.GetByID(ctx, invoiceID)
}

// RecordPayment appends a manual (vendor-recorded) payment and re-derives the
// invoice status. The repository serializes per invoice, so concurrent
// payments always sum.
func (s *invoiceService) RecordPayment(ctx context.Context, caller security.Caller, invoiceID int32, amount domain.Money, method domain.PaymentMethod, transactionID *string) (*domain.Invoice, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive: %w", domain.ErrInvalidRange)
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, ActionInvoice, invoiceResource(invoice)); err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		Amount:        amount,
		Method:        method,
		TransactionID: transactionID,
		Status:        domain.PaymentStatusCompleted,
		PaidAt:        time.Now(),
	}
	updated, err := s.invoiceRepo.RecordPayment(ctx, invoiceID, payment)
	if err != nil {
		return nil, err
	}

	logger.Info("Payment recorded", "invoice_id", invoiceID,
		"amount", amount.String(), "method", method, "status", updated.Status)
	return updated, nil
}

func (s *invoiceService) CreatePaymentIntent(ctx context.Context, caller security.Caller, invoiceID int32) (*PaymentIntent, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, ActionView, invoiceResource(invoice)); err != nil {
		return nil, err
	}
	if invoice.Status == domain.InvoiceStatusPaid {
		return nil, fmt.Errorf("invoice %d is already paid: %w", invoiceID, domain.ErrStateConflict)
	}

	intent, err := s.gateway.CreateIntent(ctx, invoice)
	if err != nil {
		// The gateway is an external collaborator; its failure leaves our
		// state untouched and the caller free to retry.
		return nil, fmt.Errorf("payment gateway: %w", err)
	}
	return intent, nil
}

// GatewayConfirmation is the signed payload the gateway posts back after a
// successful charge.
type GatewayConfirmation struct {
	InvoiceID     int32        `json:"invoice_id"`
	Amount        domain.Money `json:"amount"`
	TransactionID string       `json:"transaction_id"`
}

func (s *invoiceService) ConfirmGatewayPayment(ctx context.Context, payload []byte, signature string) (*domain.Invoice, error) {
	if !s.verifier.Verify(payload, signature) {
		return nil, fmt.Errorf("gateway confirmation rejected: %w", domain.ErrPaymentVerificationFailed)
	}

	var conf GatewayConfirmation
	if err := json.Unmarshal(payload, &conf); err != nil {
		return nil, fmt.Errorf("malformed gateway confirmation: %w", domain.ErrPaymentVerificationFailed)
	}
	if !conf.Amount.IsPositive() {
		return nil, fmt.Errorf("gateway confirmation amount must be positive: %w", domain.ErrInvalidRange)
	}

	payment := &domain.Payment{
		Amount:        conf.Amount,
		Method:        domain.PaymentMethodGateway,
		TransactionID: &conf.TransactionID,
		Status:        domain.PaymentStatusCompleted,
		PaidAt:        time.Now(),
	}
	updated, err := s.invoiceRepo.RecordPayment(ctx, conf.InvoiceID, payment)
	if err != nil {
		return nil, err
	}

	logger.Info("Gateway payment recorded", "invoice_id", conf.InvoiceID,
		"amount", conf.Amount.String(), "transaction_id", conf.TransactionID, "status", updated.Status)
	return updated, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, caller security.Caller, invoiceID int32) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, ActionView, invoiceResource(invoice)); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) ListPayments(ctx context.Context, caller security.Caller, invoiceID int32) ([]domain.Payment, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, ActionView, invoiceResource(invoice)); err != nil {
		return nil, err
	}
	return s.invoiceRepo.ListPayments(ctx, invoiceID)
}
