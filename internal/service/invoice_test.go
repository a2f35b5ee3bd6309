package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentmarket-backend/internal/domain"
)

type invoiceFixture struct {
	invoiceRepo *MockInvoiceRepo
	orderRepo   *MockOrderRepo
	returnRepo  *MockReturnRepo
	gateway     *MockGateway
	verifier    *SignatureVerifier
	svc         InvoiceService
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		invoiceRepo: new(MockInvoiceRepo),
		orderRepo:   new(MockOrderRepo),
		returnRepo:  new(MockReturnRepo),
		gateway:     new(MockGateway),
		verifier:    NewSignatureVerifier("test-secret"),
	}
	f.svc = NewInvoiceService(f.invoiceRepo, f.orderRepo, f.returnRepo, f.gateway, f.verifier)
	return f
}

func TestInvoiceService_CreateInvoice(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	order := &domain.RentalOrder{
		ID: 20, OrderNumber: "RO-20250601-EEEE5555",
		CustomerID: 55, VendorID: 7, Status: domain.OrderStatusConfirmed,
		Subtotal: domain.MustMoney("2000.00"),
		Tax:      domain.MustMoney("360.00"),
		Deposit:  domain.MustMoney("200.00"),
		Total:    domain.MustMoney("2560.00"),
	}

	t.Run("Success", func(t *testing.T) {
		f.orderRepo.On("GetByID", ctx, int32(20)).Return(order, nil)
		f.returnRepo.On("GetByOrder", ctx, int32(20)).Return(nil, domain.ErrNotFound)
		f.invoiceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)

		invoice, err := f.svc.CreateInvoice(ctx, vendorCaller(7), 20)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
		assert.Equal(t, "2560.00", invoice.Total.String())
		assert.True(t, invoice.AmountPaid.IsZero())
	})

	t.Run("Return Fees Folded In", func(t *testing.T) {
		f.returnRepo.ExpectedCalls = nil
		f.invoiceRepo.ExpectedCalls = nil
		returnedOrder := *order
		returnedOrder.Status = domain.OrderStatusReturned
		f.orderRepo.ExpectedCalls = nil
		f.orderRepo.On("GetByID", ctx, int32(20)).Return(&returnedOrder, nil)
		f.returnRepo.On("GetByOrder", ctx, int32(20)).Return(&domain.Return{
			OrderID:   20,
			LateFee:   domain.MustMoney("300.00"),
			DamageFee: domain.MustMoney("50.00"),
		}, nil)
		f.invoiceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)

		invoice, err := f.svc.CreateInvoice(ctx, vendorCaller(7), 20)
		require.NoError(t, err)
		assert.Equal(t, "300.00", invoice.LateFee.String())
		assert.Equal(t, "50.00", invoice.DamageFee.String())
		assert.Equal(t, "2910.00", invoice.Total.String())
	})

	t.Run("Quotation Not Invoiceable", func(t *testing.T) {
		quotation := *order
		quotation.Status = domain.OrderStatusQuotation
		f.orderRepo.ExpectedCalls = nil
		f.orderRepo.On("GetByID", ctx, int32(20)).Return(&quotation, nil)

		_, err := f.svc.CreateInvoice(ctx, vendorCaller(7), 20)
		assert.ErrorIs(t, err, domain.ErrStateConflict)
	})

	t.Run("Duplicate Invoice", func(t *testing.T) {
		f.orderRepo.ExpectedCalls = nil
		f.returnRepo.ExpectedCalls = nil
		f.invoiceRepo.ExpectedCalls = nil
		f.orderRepo.On("GetByID", ctx, int32(20)).Return(order, nil)
		f.returnRepo.On("GetByOrder", ctx, int32(20)).Return(nil, domain.ErrNotFound)
		f.invoiceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Invoice")).Return(domain.ErrDuplicateInvoice)

		_, err := f.svc.CreateInvoice(ctx, vendorCaller(7), 20)
		assert.ErrorIs(t, err, domain.ErrDuplicateInvoice)
	})

	t.Run("Customer Cannot Invoice", func(t *testing.T) {
		f.orderRepo.ExpectedCalls = nil
		f.orderRepo.On("GetByID", ctx, int32(20)).Return(order, nil)

		_, err := f.svc.CreateInvoice(ctx, customerCaller(55), 20)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestInvoiceService_RecordPayment(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	invoice := &domain.Invoice{
		ID: 30, OrderID: 20, VendorID: 7, CustomerID: 55,
		Status: domain.InvoiceStatusPosted,
		Total:  domain.MustMoney("1000.00"),
	}

	t.Run("Success", func(t *testing.T) {
		paid := *invoice
		paid.AmountPaid = domain.MustMoney("400.00")
		paid.Status = domain.InvoiceStatusPartiallyPaid

		f.invoiceRepo.On("GetByID", ctx, int32(30)).Return(invoice, nil)
		f.invoiceRepo.On("RecordPayment", ctx, int32(30), mock.MatchedBy(func(p *domain.Payment) bool {
			return p.Amount.String() == "400.00" && p.Method == domain.PaymentMethodCash &&
				p.Status == domain.PaymentStatusCompleted
		})).Return(&paid, nil)

		updated, err := f.svc.RecordPayment(ctx, vendorCaller(7), 30, domain.MustMoney("400.00"), domain.PaymentMethodCash, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPartiallyPaid, updated.Status)
		assert.Equal(t, "600.00", updated.Outstanding().String())
	})

	t.Run("Zero Amount Rejected", func(t *testing.T) {
		_, err := f.svc.RecordPayment(ctx, vendorCaller(7), 30, domain.ZeroMoney(), domain.PaymentMethodCash, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
	})

	t.Run("Negative Amount Rejected", func(t *testing.T) {
		_, err := f.svc.RecordPayment(ctx, vendorCaller(7), 30, domain.MustMoney("-5.00"), domain.PaymentMethodCash, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
	})
}

func TestInvoiceService_ConfirmGatewayPayment(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	payload, err := json.Marshal(GatewayConfirmation{
		InvoiceID:     30,
		Amount:        domain.MustMoney("1000.00"),
		TransactionID: "txn_abc123",
	})
	require.NoError(t, err)

	t.Run("Valid Signature", func(t *testing.T) {
		paid := &domain.Invoice{ID: 30, Status: domain.InvoiceStatusPaid,
			Total: domain.MustMoney("1000.00"), AmountPaid: domain.MustMoney("1000.00")}
		f.invoiceRepo.On("RecordPayment", ctx, int32(30), mock.MatchedBy(func(p *domain.Payment) bool {
			return p.Method == domain.PaymentMethodGateway && *p.TransactionID == "txn_abc123"
		})).Return(paid, nil)

		updated, err := f.svc.ConfirmGatewayPayment(ctx, payload, f.verifier.Sign(payload))
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, updated.Status)
	})

	t.Run("Bad Signature Writes Nothing", func(t *testing.T) {
		f.invoiceRepo.ExpectedCalls = nil
		f.invoiceRepo.Calls = nil

		_, err := f.svc.ConfirmGatewayPayment(ctx, payload, "deadbeef")
		assert.ErrorIs(t, err, domain.ErrPaymentVerificationFailed)
		f.invoiceRepo.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Tampered Payload Rejected", func(t *testing.T) {
		signature := f.verifier.Sign(payload)
		tampered := append([]byte{}, payload...)
		tampered[len(tampered)-2] = 'X'

		_, err := f.svc.ConfirmGatewayPayment(ctx, tampered, signature)
		assert.ErrorIs(t, err, domain.ErrPaymentVerificationFailed)
	})
}

func TestInvoiceService_PostInvoice(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	draft := &domain.Invoice{ID: 31, VendorID: 7, CustomerID: 55, Status: domain.InvoiceStatusDraft}

	t.Run("Success", func(t *testing.T) {
		posted := *draft
		posted.Status = domain.InvoiceStatusPosted
		f.invoiceRepo.On("GetByID", ctx, int32(31)).Return(draft, nil).Once()
		f.invoiceRepo.On("Post", ctx, int32(31), mock.AnythingOfType("time.Time")).Return(nil)
		f.invoiceRepo.On("GetByID", ctx, int32(31)).Return(&posted, nil).Once()

		invoice, err := f.svc.PostInvoice(ctx, vendorCaller(7), 31)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPosted, invoice.Status)
	})

	t.Run("Already Posted", func(t *testing.T) {
		posted := *draft
		posted.Status = domain.InvoiceStatusPosted
		f.invoiceRepo.ExpectedCalls = nil
		f.invoiceRepo.On("GetByID", ctx, int32(31)).Return(&posted, nil)
		f.invoiceRepo.On("Post", ctx, int32(31), mock.AnythingOfType("time.Time")).Return(domain.ErrStateConflict)

		_, err := f.svc.PostInvoice(ctx, vendorCaller(7), 31)
		assert.ErrorIs(t, err, domain.ErrStateConflict)
	})
}

func TestInvoiceService_CreatePaymentIntent(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	invoice := &domain.Invoice{
		ID: 32, VendorID: 7, CustomerID: 55,
		Status: domain.InvoiceStatusPosted,
		Total:  domain.MustMoney("500.00"),
	}

	t.Run("Success", func(t *testing.T) {
		f.invoiceRepo.On("GetByID", ctx, int32(32)).Return(invoice, nil)
		f.gateway.On("CreateIntent", ctx, invoice).Return(&PaymentIntent{
			IntentID: "pi_test", InvoiceID: 32, Amount: domain.MustMoney("500.00"),
		}, nil)

		intent, err := f.svc.CreatePaymentIntent(ctx, customerCaller(55), 32)
		require.NoError(t, err)
		assert.Equal(t, "pi_test", intent.IntentID)
	})

	t.Run("Paid Invoice Rejected", func(t *testing.T) {
		paid := *invoice
		paid.Status = domain.InvoiceStatusPaid
		f.invoiceRepo.ExpectedCalls = nil
		f.invoiceRepo.On("GetByID", ctx, int32(32)).Return(&paid, nil)

		_, err := f.svc.CreatePaymentIntent(ctx, customerCaller(55), 32)
		assert.ErrorIs(t, err, domain.ErrStateConflict)
	})

	t.Run("Gateway Failure Propagates", func(t *testing.T) {
		f.invoiceRepo.ExpectedCalls = nil
		f.gateway.ExpectedCalls = nil
		f.invoiceRepo.On("GetByID", ctx, int32(32)).Return(invoice, nil)
		f.gateway.On("CreateIntent", ctx, invoice).Return(nil, assert.AnError)

		_, err := f.svc.CreatePaymentIntent(ctx, customerCaller(55), 32)
		assert.Error(t, err)
	})
}
