package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/service"
)

type priceRequest struct {
	Items      []service.CheckoutItem `json:"items"`
	CouponCode string                 `json:"coupon_code,omitempty"`
}

func (s *Server) handlePriceCheckout(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", domain.ErrInvalidRange))
		return
	}

	quote, err := s.pricing.ComputeCheckout(r.Context(), req.Items, req.CouponCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleCreateQuotation(w http.ResponseWriter, r *http.Request) {
	var in service.CheckoutInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", domain.ErrInvalidRange))
		return
	}

	order, err := s.orders.CreateQuotation(r.Context(), callerFrom(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var in service.CheckoutInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", domain.ErrInvalidRange))
		return
	}

	order, err := s.orders.Checkout(r.Context(), callerFrom(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid order id: %w", domain.ErrInvalidRange))
		return
	}

	order, err := s.orders.GetOrder(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type orderListResponse struct {
	Orders []domain.RentalOrder `json:"orders"`
	Total  int32                `json:"total"`
}

func (s *Server) handleListMyOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	orders, total, err := s.orders.ListMyOrders(r.Context(), callerFrom(r), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderListResponse{Orders: orders, Total: total})
}

func (s *Server) handleListVendorOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	var vendorID int32
	if raw := r.URL.Query().Get("vendor_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			writeError(w, fmt.Errorf("invalid vendor id: %w", domain.ErrInvalidRange))
			return
		}
		vendorID = int32(v)
	}
	orders, total, err := s.orders.ListVendorOrders(r.Context(), callerFrom(r), vendorID, r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderListResponse{Orders: orders, Total: total})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid order id: %w", domain.ErrInvalidRange))
		return
	}

	order, err := s.orders.Confirm(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type pickupRequest struct {
	Notes string `json:"notes,omitempty"`
}

func (s *Server) handlePickup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid order id: %w", domain.ErrInvalidRange))
		return
	}
	var req pickupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", domain.ErrInvalidRange))
		return
	}

	order, err := s.orders.RecordPickup(r.Context(), callerFrom(r), id, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type returnRequest struct {
	DamageFee domain.Money `json:"damage_fee"`
	Notes     string       `json:"notes,omitempty"`
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid order id: %w", domain.ErrInvalidRange))
		return
	}
	var req returnRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", domain.ErrInvalidRange))
		return
	}

	order, err := s.orders.RecordReturn(r.Context(), callerFrom(r), id, req.DamageFee, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type cancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid order id: %w", domain.ErrInvalidRange))
		return
	}
	var req cancelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", domain.ErrInvalidRange))
		return
	}

	order, err := s.orders.Cancel(r.Context(), callerFrom(r), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
