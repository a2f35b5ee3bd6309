package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"rentmarket-backend/internal/domain"
)

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid order id: %w", domain.ErrInvalidRange))
		return
	}

	invoice, err := s.invoices.CreateInvoice(r.Context(), callerFrom(r), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invoice)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid invoice id: %w", domain.ErrInvalidRange))
		return
	}

	invoice, err := s.invoices.GetInvoice(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (s *Server) handlePostInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid invoice id: %w", domain.ErrInvalidRange))
		return
	}

	invoice, err := s.invoices.PostInvoice(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

type paymentRequest struct {
	Amount        domain.Money         `json:"amount"`
	Method        domain.PaymentMethod `json:"method"`
	TransactionID *string              `json:"transaction_id,omitempty"`
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid invoice id: %w", domain.ErrInvalidRange))
		return
	}
	var req paymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", domain.ErrInvalidRange))
		return
	}

	invoice, err := s.invoices.RecordPayment(r.Context(), callerFrom(r), id, req.Amount, req.Method, req.TransactionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid invoice id: %w", domain.ErrInvalidRange))
		return
	}

	payments, err := s.invoices.ListPayments(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid invoice id: %w", domain.ErrInvalidRange))
		return
	}

	intent, err := s.invoices.CreatePaymentIntent(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, intent)
}

// handleGatewayWebhook receives signed payment confirmations. The signature
// travels in the X-Gateway-Signature header and is verified before anything
// is written.
func (s *Server) handleGatewayWebhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, fmt.Errorf("unreadable payload: %w", domain.ErrInvalidRange))
		return
	}

	invoice, err := s.invoices.ConfirmGatewayPayment(r.Context(), payload, r.Header.Get("X-Gateway-Signature"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}
