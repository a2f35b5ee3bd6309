package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"rentmarket-backend/internal/domain"
)

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := decodeBody(r, &product); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", domain.ErrInvalidRange))
		return
	}

	created, err := s.products.CreateProduct(r.Context(), callerFrom(r), &product)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid product id: %w", domain.ErrInvalidRange))
		return
	}

	product, err := s.products.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid product id: %w", domain.ErrInvalidRange))
		return
	}

	var product domain.Product
	if err := decodeBody(r, &product); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", domain.ErrInvalidRange))
		return
	}
	product.ID = id

	updated, err := s.products.UpdateProduct(r.Context(), callerFrom(r), &product)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleListVendorProducts(w http.ResponseWriter, r *http.Request) {
	vendorID, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid vendor id: %w", domain.ErrInvalidRange))
		return
	}

	page, pageSize := pageParams(r)
	products, total, err := s.products.ListVendorProducts(r.Context(), callerFrom(r), vendorID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productListResponse{Products: products, Total: total})
}

type productListResponse struct {
	Products []domain.Product `json:"products"`
	Total    int32            `json:"total"`
}

// parseDateParam accepts RFC3339 timestamps or bare dates.
func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid product id: %w", domain.ErrInvalidRange))
		return
	}

	start, err := parseDateParam(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, fmt.Errorf("invalid start date: %w", domain.ErrInvalidRange))
		return
	}
	end, err := parseDateParam(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, fmt.Errorf("invalid end date: %w", domain.ErrInvalidRange))
		return
	}

	availability, err := s.availability.CheckAvailability(r.Context(), id, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availability)
}
