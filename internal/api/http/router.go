package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rentmarket-backend/internal/security"
	"rentmarket-backend/internal/service"
)

// Server wires the service layer to JSON endpoints.
type Server struct {
	products     service.ProductService
	availability service.AvailabilityService
	pricing      service.PricingService
	orders       service.OrderService
	invoices     service.InvoiceService
	tokens       security.TokenManager
}

func NewServer(
	products service.ProductService,
	availability service.AvailabilityService,
	pricing service.PricingService,
	orders service.OrderService,
	invoices service.InvoiceService,
	tokens security.TokenManager,
) *Server {
	return &Server{
		products:     products,
		availability: availability,
		pricing:      pricing,
		orders:       orders,
		invoices:     invoices,
		tokens:       tokens,
	}
}

// Router builds the full route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// The gateway posts signed confirmations; it has no bearer token.
	r.HandleFunc("/api/v1/webhooks/payment", s.handleGatewayWebhook).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.authMiddleware)

	api.HandleFunc("/products", s.handleCreateProduct).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", s.handleGetProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", s.handleUpdateProduct).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}/availability", s.handleAvailability).Methods(http.MethodGet)
	api.HandleFunc("/vendors/{id}/products", s.handleListVendorProducts).Methods(http.MethodGet)

	api.HandleFunc("/checkout/price", s.handlePriceCheckout).Methods(http.MethodPost)
	api.HandleFunc("/quotations", s.handleCreateQuotation).Methods(http.MethodPost)

	api.HandleFunc("/orders", s.handleCheckout).Methods(http.MethodPost)
	api.HandleFunc("/orders", s.handleListMyOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", s.handleGetOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/confirm", s.handleConfirm).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/pickup", s.handlePickup).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/return", s.handleReturn).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/cancel", s.handleCancel).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/invoice", s.handleCreateInvoice).Methods(http.MethodPost)
	api.HandleFunc("/vendor/orders", s.handleListVendorOrders).Methods(http.MethodGet)

	api.HandleFunc("/invoices/{id}", s.handleGetInvoice).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}/post", s.handlePostInvoice).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id}/payments", s.handleRecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id}/payments", s.handleListPayments).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}/intent", s.handleCreateIntent).Methods(http.MethodPost)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (int32, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}

// pageParams parses page/page_size query parameters with defaults.
func pageParams(r *http.Request) (int32, int32) {
	page := int32(1)
	pageSize := int32(20)
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return page, pageSize
}
